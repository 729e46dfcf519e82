package repositories

import (
	"context"

	"github.com/vsinha/fcrecon/pkg/domain/entities"
)

// RunRepository keeps the history of reconciliation runs.
type RunRepository interface {
	SaveRun(ctx context.Context, run *entities.RunRecord) error
	// ListRuns returns the most recent runs first. limit <= 0 returns all.
	ListRuns(ctx context.Context, limit int) ([]*entities.RunRecord, error)
}
