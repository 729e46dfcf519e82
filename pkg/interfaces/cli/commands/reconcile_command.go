package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/fcrecon/pkg/application/services/reconciliation"
	"github.com/vsinha/fcrecon/pkg/interfaces/cli/output"
)

// ReconcileCommand merges forecast extracts with consumption and reports the
// deviations
type ReconcileCommand struct {
	config Config
}

// NewReconcileCommand creates a new reconcile command with the given configuration
func NewReconcileCommand(config Config) *ReconcileCommand {
	return &ReconcileCommand{config: config}
}

// Execute runs the reconcile command
func (c *ReconcileCommand) Execute(ctx context.Context) error {
	settings := c.config.Settings
	if err := validateInputs(c.config); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if len(settings.Inputs.ConsumptionFiles) == 0 {
		return fmt.Errorf("validation error: at least one consumption file is required")
	}

	rt, err := newRuntime(ctx, c.config)
	if err != nil {
		return err
	}
	defer rt.close()

	svc := reconciliation.NewReconciliationService(rt.extracts, rt.memo, rt.runs, rt.eventStore, rt.prediction, rt.logger)

	startTime := time.Now()
	result, err := svc.Run(ctx, reconciliation.Request{
		ForecastDir:      settings.Inputs.ForecastDir,
		ConsumptionFiles: settings.Inputs.ConsumptionFiles,
		Filter:           c.config.Filter,
	})
	if err != nil {
		return fmt.Errorf("error running reconciliation: %w", err)
	}

	return output.Generate(result, c.outputConfig(time.Since(startTime)))
}

func (c *ReconcileCommand) outputConfig(elapsed time.Duration) output.Config {
	return output.Config{
		Format:    c.config.Settings.Output.Format,
		OutputDir: c.config.Settings.Output.Dir,
		Verbose:   c.config.Verbose,
		Elapsed:   elapsed,
		Out:       c.config.out(),
	}
}

// validateInputs checks the settings every forecast command needs
func validateInputs(config Config) error {
	if config.Settings == nil {
		return fmt.Errorf("no settings loaded")
	}
	if config.Settings.Inputs.ForecastDir == "" {
		return fmt.Errorf("a forecast directory is required")
	}
	return nil
}
