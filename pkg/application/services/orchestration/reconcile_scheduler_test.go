package orchestration

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/fcrecon/pkg/application/services/reconciliation"
	"github.com/vsinha/fcrecon/pkg/domain/services"
	"github.com/vsinha/fcrecon/pkg/infrastructure/repositories/memory"
	fixtures "github.com/vsinha/fcrecon/pkg/infrastructure/testing"
	"github.com/vsinha/fcrecon/pkg/infrastructure/repositories/tabular"
)

func newRequest(t *testing.T) reconciliation.Request {
	t.Helper()
	scenario := fixtures.BuildWeeklyScenario(t)
	return reconciliation.Request{ForecastDir: scenario.ForecastDir, ConsumptionFiles: []string{scenario.ConsumptionFile}}
}

func TestReconcileScheduler_Schedule(t *testing.T) {
	svc := reconciliation.NewReconciliationService(tabular.NewLoader(), nil, nil, nil, nil, nil)
	scheduler := NewReconcileScheduler(svc, newRequest(t), nil)

	_, err := scheduler.Schedule("not a cron")
	assert.Error(t, err)

	next, err := scheduler.Schedule("0 6 * * MON")
	require.NoError(t, err)
	assert.True(t, next.After(time.Now()))
	assert.Equal(t, time.Monday, next.Weekday())
	assert.Equal(t, 6, next.Hour())
}

func TestReconcileScheduler_RunNowSerializesRuns(t *testing.T) {
	var active, maxActive int32
	predictor := services.PredictorFunc(func(_ context.Context, features [][]float64) ([]float64, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			m := atomic.LoadInt32(&maxActive)
			if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return make([]float64, len(features)), nil
	})
	prediction := services.NewPredictionService(predictor, services.NewRiskClassifier(services.DefaultRiskThresholds()))
	runs := memory.NewRunRepository()
	svc := reconciliation.NewReconciliationService(tabular.NewLoader(), nil, runs, nil, prediction, nil)
	scheduler := NewReconcileScheduler(svc, newRequest(t), nil)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := scheduler.RunNow(context.Background())
			assert.NoError(t, err)
			assert.Len(t, result.Merged, 5)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxActive))
	history, err := runs.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}
