package commands

import (
	"context"
	"fmt"

	"github.com/vsinha/fcrecon/pkg/application/services/reconciliation"
	"github.com/vsinha/fcrecon/pkg/interfaces/cli/output"
)

// HistoryCommand lists past reconciliation runs from the configured store
type HistoryCommand struct {
	config Config
}

// NewHistoryCommand creates a new history command with the given configuration
func NewHistoryCommand(config Config) *HistoryCommand {
	return &HistoryCommand{config: config}
}

// Execute runs the history command
func (c *HistoryCommand) Execute(ctx context.Context) error {
	if c.config.Settings == nil {
		return fmt.Errorf("validation error: no settings loaded")
	}

	rt, err := newRuntime(ctx, c.config)
	if err != nil {
		return err
	}
	defer rt.close()

	svc := reconciliation.NewReconciliationService(rt.extracts, rt.memo, rt.runs, rt.eventStore, rt.prediction, rt.logger)
	runs, err := svc.History(ctx, c.config.Limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	return output.GenerateHistory(runs, output.Config{
		Format:    c.config.Settings.Output.Format,
		OutputDir: c.config.Settings.Output.Dir,
		Verbose:   c.config.Verbose,
		Out:       c.config.out(),
	})
}
