package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, 50.0, cfg.Risk.LowGapPercent)
	assert.Equal(t, "MA11", cfg.Mapping.BusinessUnits["YMK"])
	assert.False(t, cfg.Predictor.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Predictor.Timeout)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fcrecon.yaml")
	content := `
inputs:
  forecast_dir: extracts/yppmpl
  consumption_files: [usage_2024.xlsx]
mapping:
  primary: oem.xlsx
  detail: oem_detail.xlsx
  business_units:
    YMX: MA99
risk:
  high_backlog: 20000
store:
  driver: sqlite
  dsn: var/fcrecon.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("FCRECON_OUTPUT_FORMAT", "json")
	t.Setenv("FCRECON_CONSUMPTION_FILES", "a.xlsx, b.csv")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "extracts/yppmpl", cfg.Inputs.ForecastDir)
	assert.Equal(t, []string{"a.xlsx", "b.csv"}, cfg.Inputs.ConsumptionFiles)
	assert.Equal(t, "MA99", cfg.Mapping.BusinessUnits["YMX"])
	assert.Equal(t, 20000.0, cfg.Risk.HighBacklog)
	assert.Equal(t, 500.0, cfg.Risk.LowInventory)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("FCRECON_STORE_DRIVER", "postgres")
	t.Setenv("FCRECON_OUTPUT_FORMAT", "html")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.dsn is required")
	assert.Contains(t, err.Error(), "unknown output format")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
