package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/fcrecon/pkg/application/dto"
	"github.com/vsinha/fcrecon/pkg/application/services/orchestration"
	"github.com/vsinha/fcrecon/pkg/application/services/reconciliation"
	"github.com/vsinha/fcrecon/pkg/interfaces/cli/output"
)

// ScheduleCommand re-runs the reconciliation on a cron schedule until ctx is
// cancelled
type ScheduleCommand struct {
	config Config
	runNow bool
}

// NewScheduleCommand creates a new schedule command. With runNow set the
// first reconciliation runs immediately.
func NewScheduleCommand(config Config, runNow bool) *ScheduleCommand {
	return &ScheduleCommand{config: config, runNow: runNow}
}

// Execute runs the schedule command
func (c *ScheduleCommand) Execute(ctx context.Context) error {
	settings := c.config.Settings
	if err := validateInputs(c.config); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if settings.Schedule.Cron == "" {
		return fmt.Errorf("validation error: a cron expression is required")
	}

	rt, err := newRuntime(ctx, c.config)
	if err != nil {
		return err
	}
	defer rt.close()

	svc := reconciliation.NewReconciliationService(rt.extracts, rt.memo, rt.runs, rt.eventStore, rt.prediction, rt.logger)
	scheduler := orchestration.NewReconcileScheduler(svc, reconciliation.Request{
		ForecastDir:      settings.Inputs.ForecastDir,
		ConsumptionFiles: settings.Inputs.ConsumptionFiles,
		Filter:           c.config.Filter,
	}, rt.logger)

	report := func(result *dto.ReconciliationResult, err error) {
		if err != nil {
			fmt.Fprintf(c.config.out(), "❌ Scheduled reconciliation failed: %v\n", err)
			return
		}
		cfg := output.Config{
			Format:    settings.Output.Format,
			OutputDir: settings.Output.Dir,
			Verbose:   c.config.Verbose,
			Out:       c.config.out(),
		}
		if err := output.Generate(result, cfg); err != nil {
			fmt.Fprintf(c.config.out(), "❌ Failed to write results: %v\n", err)
		}
	}
	scheduler.OnResult(report)

	next, err := scheduler.Schedule(settings.Schedule.Cron)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.config.out(), "⏰ Reconciliation scheduled %q, next run %s\n", settings.Schedule.Cron, next.Format(time.RFC1123))

	if c.runNow {
		report(scheduler.RunNow(ctx))
	}

	scheduler.Start()
	<-ctx.Done()
	scheduler.Stop()
	return nil
}
