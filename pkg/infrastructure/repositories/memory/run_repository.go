package memory

import (
	"context"
	"sync"

	"github.com/vsinha/fcrecon/pkg/domain/entities"
	"github.com/vsinha/fcrecon/pkg/domain/repositories"
)

// RunRepository provides in-memory run history
type RunRepository struct {
	mu   sync.RWMutex
	runs []entities.RunRecord
}

// NewRunRepository creates a new in-memory run repository
func NewRunRepository() *RunRepository {
	return &RunRepository{}
}

// Verify interface compliance
var _ repositories.RunRepository = (*RunRepository)(nil)

// SaveRun appends a run, or replaces the run with the same ID
func (r *RunRepository) SaveRun(_ context.Context, run *entities.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.runs {
		if r.runs[i].ID == run.ID {
			r.runs[i] = *run
			return nil
		}
	}
	r.runs = append(r.runs, *run)
	return nil
}

// ListRuns returns the most recently saved runs first
func (r *RunRepository) ListRuns(_ context.Context, limit int) ([]*entities.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var runs []*entities.RunRecord
	for i := len(r.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(runs) == limit {
			break
		}
		run := r.runs[i]
		runs = append(runs, &run)
	}
	return runs, nil
}
