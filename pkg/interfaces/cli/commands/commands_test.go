package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/fcrecon/pkg/infrastructure/config"
	fixtures "github.com/vsinha/fcrecon/pkg/infrastructure/testing"
)

// syncBuffer guards a buffer written by a running command
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testSettings(t *testing.T) *config.Config {
	t.Helper()
	scenario := fixtures.BuildWeeklyScenario(t)

	settings := config.Default()
	settings.Inputs.ForecastDir = scenario.ForecastDir
	settings.Inputs.ConsumptionFiles = []string{scenario.ConsumptionFile}
	settings.Store = config.StoreConfig{Driver: config.StoreSQLite, DSN: filepath.Join(scenario.Root, "fcrecon.db")}
	return settings
}

func TestReconcileAndHistoryCommands(t *testing.T) {
	settings := testSettings(t)
	var out bytes.Buffer

	err := NewReconcileCommand(Config{Settings: settings, Out: &out}).Execute(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Reconciliation Summary")
	assert.Contains(t, out.String(), "YMO")

	var history bytes.Buffer
	err = NewHistoryCommand(Config{Settings: settings, Limit: 5, Out: &history}).Execute(context.Background())
	require.NoError(t, err)
	assert.Contains(t, history.String(), "succeeded")
}

func TestReconcileCommand_RequiresConsumption(t *testing.T) {
	settings := testSettings(t)
	settings.Inputs.ConsumptionFiles = nil

	err := NewReconcileCommand(Config{Settings: settings}).Execute(context.Background())
	assert.ErrorContains(t, err, "consumption file")
}

func TestPredictCommand_RequiresPredictor(t *testing.T) {
	err := NewPredictCommand(Config{Settings: testSettings(t)}).Execute(context.Background())
	assert.ErrorContains(t, err, "model file")
}

func TestPredictCommand_LinearModel(t *testing.T) {
	settings := testSettings(t)
	model := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(model, []byte("intercept: 0\ncoefficients:\n  Total_MRP: 0.5\n"), 0o644))
	settings.Predictor.ModelFile = model

	var out bytes.Buffer
	err := NewPredictCommand(Config{Settings: settings, Out: &out}).Execute(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Consumption Outlook")
	assert.Contains(t, out.String(), "500")
}

func TestMappingCommand_RequiresFiles(t *testing.T) {
	err := NewMappingCommand(Config{Settings: config.Default()}).Execute(context.Background())
	assert.ErrorContains(t, err, "mapping files")
}

func TestScheduleCommand_StopsOnCancel(t *testing.T) {
	settings := testSettings(t)
	settings.Store = config.StoreConfig{Driver: config.StoreMemory}
	ctx, cancel := context.WithCancel(context.Background())

	out := &syncBuffer{}
	cmd := NewScheduleCommand(Config{Settings: settings, Out: out}, true)
	errCh := make(chan error, 1)
	go func() { errCh <- cmd.Execute(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Reconciliation Summary")
	}, 5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-errCh)
	assert.Contains(t, out.String(), "Reconciliation scheduled")
}
