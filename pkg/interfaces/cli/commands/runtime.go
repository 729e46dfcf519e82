package commands

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/vsinha/fcrecon/pkg/domain/repositories"
	"github.com/vsinha/fcrecon/pkg/domain/services"
	"github.com/vsinha/fcrecon/pkg/infrastructure/config"
	"github.com/vsinha/fcrecon/pkg/infrastructure/events"
	"github.com/vsinha/fcrecon/pkg/infrastructure/predict"
	"github.com/vsinha/fcrecon/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/fcrecon/pkg/infrastructure/repositories/tabular"
	"github.com/vsinha/fcrecon/pkg/infrastructure/store/postgres"
	"github.com/vsinha/fcrecon/pkg/infrastructure/store/sqlite"
)

// Config holds configuration shared by every command
type Config struct {
	Settings *config.Config
	Filter   services.MergedFilter
	Material string
	Limit    int
	Verbose  bool
	Out      io.Writer
}

func (c Config) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// runtime wires the infrastructure selected by the settings
type runtime struct {
	extracts   repositories.ExtractRepository
	memo       repositories.MemoRepository
	runs       repositories.RunRepository
	eventStore *events.InMemoryEventStore
	prediction *services.PredictionService
	logger     *log.Logger
	close      func() error
}

func newRuntime(ctx context.Context, cfg Config) (*runtime, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}

	logger := log.New(io.Discard, "", 0)
	if cfg.Verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	rt := &runtime{
		extracts:   tabular.NewLoader(),
		eventStore: events.NewInMemoryEventStore(logger),
		logger:     logger,
		close:      func() error { return nil },
	}

	switch settings.Store.Driver {
	case config.StoreSQLite:
		store, err := sqlite.Open(settings.Store.DSN)
		if err != nil {
			return nil, err
		}
		rt.memo, rt.runs, rt.close = store, store, store.Close
	case config.StorePostgres:
		store, err := postgres.Open(ctx, settings.Store.DSN)
		if err != nil {
			return nil, err
		}
		rt.memo, rt.runs, rt.close = store, store, store.Close
	default:
		rt.memo, rt.runs = memory.NewMemoRepository(), memory.NewRunRepository()
	}

	predictor, err := newPredictor(settings.Predictor)
	if err != nil {
		rt.close()
		return nil, err
	}
	if predictor != nil {
		rt.prediction = services.NewPredictionService(predictor, services.NewRiskClassifier(settings.Risk))
	}

	if cfg.Verbose {
		rt.eventStore.Subscribe([]string{events.AllEvents}, events.HandlerFunc(progressPrinter(cfg.out())))
	}
	return rt, nil
}

func newPredictor(cfg config.PredictorConfig) (services.Predictor, error) {
	switch {
	case cfg.ModelFile != "":
		model, err := predict.LoadLinearModel(cfg.ModelFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load consumption model: %w", err)
		}
		return model, nil
	case cfg.URL != "":
		return predict.NewHTTPPredictor(cfg.URL, cfg.Timeout), nil
	default:
		return nil, nil
	}
}

// progressPrinter reports pipeline events in verbose mode
func progressPrinter(w io.Writer) func(events.Event) error {
	return func(e events.Event) error {
		switch data := e.Data().(type) {
		case events.RunStarted:
			fmt.Fprintf(w, "🚀 Run %s started\n", data.RunID)
		case events.ExtractNormalized:
			cached := ""
			if data.Cached {
				cached = " (cached)"
			}
			fmt.Fprintf(w, "📂 %s extract %s: %d rows%s\n", data.Kind, data.Identifier, data.Rows, cached)
		case events.ExtractSkipped:
			fmt.Fprintf(w, "⚠️  Skipped %s: %s\n", data.Issue.Extract, data.Issue.Message)
		case events.DatasetMerged:
			fmt.Fprintf(w, "🔄 Merged %d forecast and %d consumption rows into %d\n",
				data.ForecastRows, data.ConsumptionRows, data.MergedRows)
		case events.DatasetPredicted:
			fmt.Fprintf(w, "🔮 Predicted %d rows, %d at risk\n", data.Rows, data.HighRisk)
		case events.MappingResolved:
			fmt.Fprintf(w, "🏭 Resolved %d mapping rows\n", data.Rows)
		case events.RunCompleted:
			fmt.Fprintf(w, "✅ Run %s completed\n", data.Run.ID)
		case events.RunFailed:
			fmt.Fprintf(w, "❌ Run %s failed: %s\n", data.RunID, data.Error)
		}
		return nil
	}
}
