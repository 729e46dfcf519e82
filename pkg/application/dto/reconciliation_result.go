package dto

import (
	"time"

	"github.com/vsinha/fcrecon/pkg/domain/entities"
)

// ReconciliationResult contains the complete output of a reconciliation run
type ReconciliationResult struct {
	RunID       string
	GeneratedAt time.Time

	ForecastColumns []string
	Forecast        []entities.ForecastRow
	Consumption     []entities.ConsumptionRow
	Merged          []entities.MergedRow

	PlantGaps   []entities.PlantGap
	WeeklyRisk  []entities.WeekRisk
	WorstPlants *entities.WorstPlants
	KPIs        entities.KPIs
	Features    []entities.TimeSeriesFeature
	Horizon     []string

	Predicted bool
	Issues    []entities.ExtractIssue
}

// HighRiskRows returns the merged rows whose explanation is not "Low risk"
func (r *ReconciliationResult) HighRiskRows() []entities.MergedRow {
	var rows []entities.MergedRow
	for _, row := range r.Merged {
		if row.RiskExplanation != "" && row.RiskExplanation != entities.RiskLow {
			rows = append(rows, row)
		}
	}
	return rows
}

// OutlookResult contains predictions for forecast rows that have no
// consumption yet
type OutlookResult struct {
	RunID       string
	GeneratedAt time.Time
	Outlook     []entities.ForecastOutlook
	WeeklyRisk  []entities.WeekRisk
	Horizon     []string
	Issues      []entities.ExtractIssue
}

// MappingResult contains the resolved OEM/project lookup
type MappingResult struct {
	Files   []string
	Mapping *entities.MappingTable
	Cached  bool
}
