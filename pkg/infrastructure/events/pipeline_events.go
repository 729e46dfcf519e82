package events

import (
	"github.com/vsinha/fcrecon/pkg/domain/entities"
)

const (
	RunStartedEvent   = "run.started"
	RunCompletedEvent = "run.completed"
	RunFailedEvent    = "run.failed"

	ExtractNormalizedEvent = "extract.normalized"
	ExtractSkippedEvent    = "extract.skipped"

	DatasetMergedEvent    = "dataset.merged"
	DatasetPredictedEvent = "dataset.predicted"

	MappingResolvedEvent = "mapping.resolved"
)

type RunStarted struct {
	RunID            string   `json:"run_id"`
	ForecastDir      string   `json:"forecast_dir"`
	ConsumptionFiles []string `json:"consumption_files"`
}

type RunCompleted struct {
	Run entities.RunRecord `json:"run"`
}

type RunFailed struct {
	RunID string `json:"run_id"`
	Error string `json:"error"`
}

type ExtractNormalized struct {
	Identifier string `json:"identifier"`
	Kind       string `json:"kind"`
	Rows       int    `json:"rows"`
	Cached     bool   `json:"cached"`
}

type ExtractSkipped struct {
	Issue entities.ExtractIssue `json:"issue"`
}

type DatasetMerged struct {
	ForecastRows    int  `json:"forecast_rows"`
	ConsumptionRows int  `json:"consumption_rows"`
	MergedRows      int  `json:"merged_rows"`
	Cached          bool `json:"cached"`
}

type DatasetPredicted struct {
	Rows     int `json:"rows"`
	HighRisk int `json:"high_risk"`
}

type MappingResolved struct {
	Files []string `json:"files"`
	Rows  int      `json:"rows"`
}
