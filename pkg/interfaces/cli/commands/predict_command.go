package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/fcrecon/pkg/application/services/reconciliation"
	"github.com/vsinha/fcrecon/pkg/interfaces/cli/output"
)

// PredictCommand scores forecast rows with the configured consumption model
type PredictCommand struct {
	config Config
}

// NewPredictCommand creates a new predict command with the given configuration
func NewPredictCommand(config Config) *PredictCommand {
	return &PredictCommand{config: config}
}

// Execute runs the predict command
func (c *PredictCommand) Execute(ctx context.Context) error {
	if err := validateInputs(c.config); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !c.config.Settings.Predictor.Enabled() {
		return fmt.Errorf("validation error: set a model file or a prediction URL")
	}

	rt, err := newRuntime(ctx, c.config)
	if err != nil {
		return err
	}
	defer rt.close()

	svc := reconciliation.NewReconciliationService(rt.extracts, rt.memo, rt.runs, rt.eventStore, rt.prediction, rt.logger)

	startTime := time.Now()
	result, err := svc.Outlook(ctx, c.config.Settings.Inputs.ForecastDir)
	if err != nil {
		return fmt.Errorf("error predicting consumption: %w", err)
	}

	return output.GenerateOutlook(result, output.Config{
		Format:    c.config.Settings.Output.Format,
		OutputDir: c.config.Settings.Output.Dir,
		Verbose:   c.config.Verbose,
		Elapsed:   time.Since(startTime),
		Out:       c.config.out(),
	})
}
