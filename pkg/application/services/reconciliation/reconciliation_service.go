package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/vsinha/fcrecon/pkg/application/dto"
	"github.com/vsinha/fcrecon/pkg/application/services/shared"
	"github.com/vsinha/fcrecon/pkg/domain/entities"
	"github.com/vsinha/fcrecon/pkg/domain/repositories"
	"github.com/vsinha/fcrecon/pkg/domain/services"
	"github.com/vsinha/fcrecon/pkg/infrastructure/events"
)

// ErrPredictorNotConfigured is returned by Outlook when no model is set
var ErrPredictorNotConfigured = errors.New("no consumption predictor configured")

// Request selects the extracts of a run
type Request struct {
	ForecastDir      string
	ConsumptionFiles []string
	Filter           services.MergedFilter
}

// ReconciliationService runs the forecast/consumption pipeline over a batch of
// extracts. One bad extract is recorded as an issue and skipped.
type ReconciliationService struct {
	extracts   repositories.ExtractRepository
	runs       repositories.RunRepository
	eventStore events.EventStore
	prediction *services.PredictionService
	memo       *shared.DatasetMemo
	logger     *log.Logger

	forecasts   *services.ForecastNormalizer
	consumption *services.ConsumptionNormalizer
	merger      *services.Merger
	aggregator  *services.Aggregator
}

// NewReconciliationService creates a reconciliation service. memo, runs,
// eventStore, prediction and logger may be nil.
func NewReconciliationService(
	extracts repositories.ExtractRepository,
	memo repositories.MemoRepository,
	runs repositories.RunRepository,
	eventStore events.EventStore,
	prediction *services.PredictionService,
	logger *log.Logger,
) *ReconciliationService {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &ReconciliationService{
		extracts:    extracts,
		runs:        runs,
		eventStore:  eventStore,
		prediction:  prediction,
		memo:        shared.NewDatasetMemo(memo, logger),
		logger:      logger,
		forecasts:   services.NewForecastNormalizer(),
		consumption: services.NewConsumptionNormalizer(),
		merger:      services.NewMerger(),
		aggregator:  services.NewAggregator(),
	}
}

// Run normalizes every extract of req, merges forecast with consumption and
// computes the summaries. Only a failure to list the forecast directory or a
// failing predictor aborts the run.
func (s *ReconciliationService) Run(ctx context.Context, req Request) (*dto.ReconciliationResult, error) {
	run := &entities.RunRecord{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	s.publish(run.ID, events.RunStartedEvent, events.RunStarted{
		RunID:            run.ID,
		ForecastDir:      req.ForecastDir,
		ConsumptionFiles: req.ConsumptionFiles,
	})

	result, err := s.run(ctx, req, run)
	if err != nil {
		s.fail(ctx, run, err)
		return nil, err
	}

	run.Status = entities.RunSucceeded
	run.FinishedAt = time.Now().UTC()
	s.saveRun(ctx, run)
	s.publish(run.ID, events.RunCompletedEvent, events.RunCompleted{Run: *run})
	s.logger.Printf("[reconcile] run %s: %d forecast rows, %d merged rows, %d issues",
		run.ID, run.ForecastRows, run.MergedRows, len(run.Issues))

	return result, nil
}

func (s *ReconciliationService) run(ctx context.Context, req Request, run *entities.RunRecord) (*dto.ReconciliationResult, error) {
	forecastExtracts, forecastKeys, err := s.loadForecasts(ctx, run, req.ForecastDir)
	if err != nil {
		return nil, err
	}
	consumptionExtracts, consumptionKeys := s.loadConsumption(ctx, run, req.ConsumptionFiles)

	forecastRows := services.ConcatForecasts(forecastExtracts)
	consumptionRows := services.ConcatConsumption(consumptionExtracts)

	merged, cached := s.merge(ctx, forecastRows, consumptionRows, append(forecastKeys, consumptionKeys...))
	s.publish(run.ID, events.DatasetMergedEvent, events.DatasetMerged{
		ForecastRows:    len(forecastRows),
		ConsumptionRows: len(consumptionRows),
		MergedRows:      len(merged),
		Cached:          cached,
	})

	predicted := false
	if s.prediction != nil && len(merged) > 0 {
		scored, err := s.prediction.PredictMerged(ctx, merged)
		if err != nil {
			return nil, err
		}
		services.SanitizeMerged(scored)
		merged = scored
		predicted = true
		s.publish(run.ID, events.DatasetPredictedEvent, events.DatasetPredicted{
			Rows:     len(merged),
			HighRisk: countHighRisk(merged),
		})
	}

	merged = services.FilterMerged(merged, req.Filter)

	result := &dto.ReconciliationResult{
		RunID:           run.ID,
		GeneratedAt:     run.StartedAt,
		ForecastColumns: services.ForecastColumns(forecastExtracts),
		Forecast:        forecastRows,
		Consumption:     consumptionRows,
		Merged:          merged,
		PlantGaps:       s.aggregator.GapByPlant(merged),
		WeeklyRisk:      s.aggregator.RiskByWeek(services.WeekSamplesFromMerged(merged)),
		KPIs:            s.aggregator.KPIs(merged),
		Features:        services.BuildTimeSeriesFeatures(consumptionRows),
		Horizon:         services.Horizon(forecastRows),
		Predicted:       predicted,
		Issues:          run.Issues,
	}

	worst, err := s.aggregator.WorstPlants(merged)
	switch {
	case err == nil:
		result.WorstPlants = &worst
	case !errors.Is(err, entities.ErrEmptyDataset):
		return nil, err
	}

	run.ForecastExtracts = len(forecastExtracts)
	run.ConsumptionExtracts = len(consumptionExtracts)
	run.ForecastRows = len(forecastRows)
	run.MergedRows = len(merged)

	return result, nil
}

// Outlook predicts consumption for every forecast row of dir
func (s *ReconciliationService) Outlook(ctx context.Context, forecastDir string) (*dto.OutlookResult, error) {
	if s.prediction == nil {
		return nil, ErrPredictorNotConfigured
	}

	run := &entities.RunRecord{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
	s.publish(run.ID, events.RunStartedEvent, events.RunStarted{RunID: run.ID, ForecastDir: forecastDir})

	extracts, _, err := s.loadForecasts(ctx, run, forecastDir)
	if err != nil {
		s.fail(ctx, run, err)
		return nil, err
	}
	rows := services.ConcatForecasts(extracts)

	outlook, err := s.prediction.PredictForecasts(ctx, rows)
	if err != nil {
		s.fail(ctx, run, err)
		return nil, err
	}

	highRisk := 0
	for _, o := range outlook {
		if o.RiskExplanation != entities.RiskLow {
			highRisk++
		}
	}
	s.publish(run.ID, events.DatasetPredictedEvent, events.DatasetPredicted{Rows: len(outlook), HighRisk: highRisk})

	run.Status = entities.RunSucceeded
	run.FinishedAt = time.Now().UTC()
	run.ForecastExtracts = len(extracts)
	run.ForecastRows = len(rows)
	s.saveRun(ctx, run)
	s.publish(run.ID, events.RunCompletedEvent, events.RunCompleted{Run: *run})

	return &dto.OutlookResult{
		RunID:       run.ID,
		GeneratedAt: run.StartedAt,
		Outlook:     outlook,
		WeeklyRisk:  s.aggregator.RiskByWeek(services.WeekSamplesFromOutlook(outlook)),
		Horizon:     services.Horizon(rows),
		Issues:      run.Issues,
	}, nil
}

// History returns the most recent runs, newest first
func (s *ReconciliationService) History(ctx context.Context, limit int) ([]*entities.RunRecord, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.ListRuns(ctx, limit)
}

// loadForecasts normalizes the forecast extracts of dir. When two extracts
// carry the same week token the later one in name order replaces the earlier.
func (s *ReconciliationService) loadForecasts(ctx context.Context, run *entities.RunRecord, dir string) ([]*entities.ForecastExtract, []string, error) {
	paths, err := s.extracts.ListExtracts(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list forecast extracts: %w", err)
	}

	var extracts []*entities.ForecastExtract
	var keys []string
	byWeek := make(map[string]int)
	for _, path := range paths {
		extract, key, cached, err := s.normalizeForecast(ctx, path)
		if err != nil {
			s.skip(run, path, err)
			continue
		}
		s.publish(run.ID, events.ExtractNormalizedEvent, events.ExtractNormalized{
			Identifier: path,
			Kind:       repositories.DatasetForecast,
			Rows:       len(extract.Rows),
			Cached:     cached,
		})

		if i, ok := byWeek[extract.Week]; ok {
			s.logger.Printf("[reconcile] %s replaces %s for week %s", filepath.Base(path), filepath.Base(extracts[i].Identifier), extract.Week)
			extracts[i] = extract
			keys[i] = key
			continue
		}
		byWeek[extract.Week] = len(extracts)
		extracts = append(extracts, extract)
		keys = append(keys, key)
	}
	return extracts, keys, nil
}

func (s *ReconciliationService) normalizeForecast(ctx context.Context, path string) (*entities.ForecastExtract, string, bool, error) {
	if _, _, err := entities.ParseWeekToken(path); err != nil {
		return nil, "", false, err
	}

	fingerprint, err := s.extracts.Fingerprint(path)
	if err != nil {
		return nil, "", false, err
	}
	key := shared.MemoKey(repositories.DatasetForecast, path, fingerprint)

	var extract entities.ForecastExtract
	if s.memo.Load(ctx, key, &extract) {
		return &extract, key, true, nil
	}

	table, err := s.extracts.LoadTable(path)
	if err != nil {
		return nil, "", false, err
	}
	normalized, err := s.forecasts.NormalizeExtract(table)
	if err != nil {
		return nil, "", false, err
	}
	s.memo.Store(ctx, key, repositories.DatasetForecast, normalized)
	return normalized, key, false, nil
}

func (s *ReconciliationService) loadConsumption(ctx context.Context, run *entities.RunRecord, paths []string) ([]*entities.ConsumptionExtract, []string) {
	var extracts []*entities.ConsumptionExtract
	var keys []string
	for _, path := range paths {
		extract, key, cached, err := s.normalizeConsumption(ctx, path)
		if err != nil {
			s.skip(run, path, err)
			continue
		}
		s.publish(run.ID, events.ExtractNormalizedEvent, events.ExtractNormalized{
			Identifier: path,
			Kind:       repositories.DatasetConsumption,
			Rows:       len(extract.Rows),
			Cached:     cached,
		})
		extracts = append(extracts, extract)
		keys = append(keys, key)
	}
	return extracts, keys
}

func (s *ReconciliationService) normalizeConsumption(ctx context.Context, path string) (*entities.ConsumptionExtract, string, bool, error) {
	fingerprint, err := s.extracts.Fingerprint(path)
	if err != nil {
		return nil, "", false, err
	}
	key := shared.MemoKey(repositories.DatasetConsumption, path, fingerprint)

	var extract entities.ConsumptionExtract
	if s.memo.Load(ctx, key, &extract) {
		return &extract, key, true, nil
	}

	table, err := s.extracts.LoadTable(path)
	if err != nil {
		return nil, "", false, err
	}
	normalized, err := s.consumption.Normalize(table)
	if err != nil {
		return nil, "", false, err
	}
	s.memo.Store(ctx, key, repositories.DatasetConsumption, normalized)
	return normalized, key, false, nil
}

// merge joins and sanitizes the canonical rows, keyed on the memo keys of
// every input extract
func (s *ReconciliationService) merge(ctx context.Context, forecasts []entities.ForecastRow, consumption []entities.ConsumptionRow, inputKeys []string) ([]entities.MergedRow, bool) {
	key := shared.MemoKey(repositories.DatasetMerged, inputKeys...)

	var merged []entities.MergedRow
	if s.memo.Load(ctx, key, &merged) {
		return merged, true
	}

	merged = s.merger.Merge(forecasts, consumption)
	services.SanitizeMerged(merged)
	s.memo.Store(ctx, key, repositories.DatasetMerged, merged)
	return merged, false
}

func (s *ReconciliationService) skip(run *entities.RunRecord, path string, err error) {
	issue := entities.NewExtractIssue(path, err)
	run.Issues = append(run.Issues, issue)
	s.logger.Printf("[reconcile] skipping %s: %v", filepath.Base(path), err)
	s.publish(run.ID, events.ExtractSkippedEvent, events.ExtractSkipped{Issue: issue})
}

func (s *ReconciliationService) fail(ctx context.Context, run *entities.RunRecord, err error) {
	run.Status = entities.RunFailed
	run.FinishedAt = time.Now().UTC()
	run.Error = err.Error()
	s.saveRun(ctx, run)
	s.logger.Printf("[reconcile] run %s failed: %v", run.ID, err)
	s.publish(run.ID, events.RunFailedEvent, events.RunFailed{RunID: run.ID, Error: run.Error})
}

func (s *ReconciliationService) saveRun(ctx context.Context, run *entities.RunRecord) {
	if s.runs == nil {
		return
	}
	if err := s.runs.SaveRun(ctx, run); err != nil {
		s.logger.Printf("[reconcile] failed to save run %s: %v", run.ID, err)
	}
}

func (s *ReconciliationService) publish(runID, eventType string, data interface{}) {
	if s.eventStore == nil {
		return
	}
	if err := s.eventStore.AppendEvent(runID, events.NewEvent(eventType, runID, data)); err != nil {
		s.logger.Printf("[reconcile] failed to publish %s: %v", eventType, err)
	}
}

func countHighRisk(rows []entities.MergedRow) int {
	n := 0
	for _, row := range rows {
		if row.RiskExplanation != "" && row.RiskExplanation != entities.RiskLow {
			n++
		}
	}
	return n
}
