package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vsinha/fcrecon/pkg/domain/entities"
	"github.com/vsinha/fcrecon/pkg/domain/services"
	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds the reconciliation settings
type Config struct {
	Inputs    InputConfig             `yaml:"inputs"`
	Mapping   MappingConfig           `yaml:"mapping"`
	Risk      services.RiskThresholds `yaml:"risk"`
	Predictor PredictorConfig         `yaml:"predictor"`
	Store     StoreConfig             `yaml:"store"`
	Schedule  ScheduleConfig          `yaml:"schedule"`
	Output    OutputConfig            `yaml:"output"`
}

// InputConfig locates the forecast and consumption extracts
type InputConfig struct {
	ForecastDir      string   `yaml:"forecast_dir"`
	ConsumptionFiles []string `yaml:"consumption_files"`
}

// MappingConfig locates the two OEM/project mapping tables
type MappingConfig struct {
	Primary       string            `yaml:"primary"`
	Detail        string            `yaml:"detail"`
	BusinessUnits map[string]string `yaml:"business_units"`
}

// Units returns the configured plant to business-unit table
func (m MappingConfig) Units() entities.BusinessUnitMap {
	return entities.NewBusinessUnitMap(m.BusinessUnits)
}

// PredictorConfig selects the consumption model. ModelFile takes precedence
// over URL. Neither set disables predictions.
type PredictorConfig struct {
	ModelFile string        `yaml:"model_file"`
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Enabled reports whether a predictor is configured
func (p PredictorConfig) Enabled() bool {
	return p.ModelFile != "" || p.URL != ""
}

// StoreConfig selects where memoized datasets and run history live
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// ScheduleConfig drives the schedule command
type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Inputs: InputConfig{ForecastDir: "data/forecast"},
		Mapping: MappingConfig{
			BusinessUnits: entities.DefaultBusinessUnits().Entries(),
		},
		Risk:      services.DefaultRiskThresholds(),
		Predictor: PredictorConfig{Timeout: 30 * time.Second},
		Store:     StoreConfig{Driver: StoreMemory},
		Schedule:  ScheduleConfig{Cron: "0 6 * * MON"},
		Output:    OutputConfig{Format: "text"},
	}
}

// Load reads path over the defaults and applies FCRECON_* environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Inputs.ForecastDir = getEnv("FCRECON_FORECAST_DIR", c.Inputs.ForecastDir)
	if files := getEnv("FCRECON_CONSUMPTION_FILES", ""); files != "" {
		c.Inputs.ConsumptionFiles = splitList(files)
	}
	c.Mapping.Primary = getEnv("FCRECON_MAPPING_PRIMARY", c.Mapping.Primary)
	c.Mapping.Detail = getEnv("FCRECON_MAPPING_DETAIL", c.Mapping.Detail)
	c.Predictor.ModelFile = getEnv("FCRECON_MODEL_FILE", c.Predictor.ModelFile)
	c.Predictor.URL = getEnv("FCRECON_PREDICT_URL", c.Predictor.URL)
	c.Predictor.Timeout = time.Duration(getEnvAsInt("FCRECON_PREDICT_TIMEOUT_SECONDS", int(c.Predictor.Timeout/time.Second))) * time.Second
	c.Store.Driver = getEnv("FCRECON_STORE_DRIVER", c.Store.Driver)
	c.Store.DSN = getEnv("FCRECON_STORE_DSN", c.Store.DSN)
	c.Schedule.Cron = getEnv("FCRECON_SCHEDULE", c.Schedule.Cron)
	c.Output.Format = getEnv("FCRECON_OUTPUT_FORMAT", c.Output.Format)
	c.Output.Dir = getEnv("FCRECON_OUTPUT_DIR", c.Output.Dir)
}

// Validate checks the settings that cannot be defaulted
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite, StorePostgres:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for driver %q", c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}

	switch c.Output.Format {
	case "text", "json", "csv":
	default:
		errs = append(errs, fmt.Errorf("unknown output format %q", c.Output.Format))
	}

	if c.Risk.LowGapPercent < 0 || c.Risk.OverForecastRatio < 0 {
		errs = append(errs, errors.New("risk thresholds must not be negative"))
	}

	return errors.Join(errs...)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
