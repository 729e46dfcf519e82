package orchestration

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vsinha/fcrecon/pkg/application/dto"
	"github.com/vsinha/fcrecon/pkg/application/services/reconciliation"
)

// ResultHandler receives the outcome of every scheduled run
type ResultHandler func(result *dto.ReconciliationResult, err error)

// ReconcileScheduler re-runs a reconciliation request on a cron schedule.
// Runs never overlap: a run that is due while another is in progress waits
// for it, since both write the same derived datasets.
type ReconcileScheduler struct {
	service  *reconciliation.ReconciliationService
	request  reconciliation.Request
	cron     *cron.Cron
	entry    cron.EntryID
	mu       sync.Mutex
	onResult ResultHandler
	logger   *log.Logger
}

// NewReconcileScheduler creates a scheduler for req. A nil logger discards
// messages.
func NewReconcileScheduler(service *reconciliation.ReconciliationService, req reconciliation.Request, logger *log.Logger) *ReconcileScheduler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &ReconcileScheduler{
		service: service,
		request: req,
		cron:    cron.New(cron.WithLogger(cron.PrintfLogger(logger))),
		logger:  logger,
	}
}

// OnResult sets the handler called after each scheduled run
func (s *ReconcileScheduler) OnResult(handler ResultHandler) {
	s.onResult = handler
}

// Schedule registers spec, a standard five-field cron expression, and
// returns the first activation after now
func (s *ReconcileScheduler) Schedule(spec string) (time.Time, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	if s.entry != 0 {
		s.cron.Remove(s.entry)
	}
	s.entry = s.cron.Schedule(schedule, cron.FuncJob(s.runScheduled))
	return schedule.Next(time.Now()), nil
}

// Start starts the scheduler in its own goroutine
func (s *ReconcileScheduler) Start() {
	s.cron.Start()
	s.logger.Println("[schedule] reconciliation scheduler started")
}

// Stop stops scheduling and waits for a running reconciliation to finish
func (s *ReconcileScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Println("[schedule] reconciliation scheduler stopped")
}

// RunNow runs the request immediately, after any run in progress
func (s *ReconcileScheduler) RunNow(ctx context.Context) (*dto.ReconciliationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.service.Run(ctx, s.request)
}

func (s *ReconcileScheduler) runScheduled() {
	result, err := s.RunNow(context.Background())
	if err != nil {
		s.logger.Printf("[schedule] reconciliation failed: %v", err)
	}
	if s.onResult != nil {
		s.onResult(result, err)
	}
}
