package entities

import "time"

// PlantGap summarizes one plant. GapPercent is a ratio (F-C)/F rounded to two
// decimals, not a percentage.
type PlantGap struct {
	Plant          string  `json:"Plant"`
	ForecastQty    float64 `json:"ForecastQty"`
	ConsumptionQty float64 `json:"ConsumptionQty"`
	GapPercent     float64 `json:"GapPercent"`
}

// WeekRisk summarizes one week of percentage deviations.
type WeekRisk struct {
	Week            string  `json:"Week"`
	TotalMaterials  int     `json:"Total_Materials"`
	HighRisk        int     `json:"High_Risk"`
	AvgGapPercent   float64 `json:"Avg_Gap_Percent"`
	HighRiskPercent float64 `json:"High Risk %"`
}

// WeekSample is one (week, percentage) observation fed to the weekly summary.
type WeekSample struct {
	Week    string
	Percent float64
}

// WorstPlants names the plants with the highest and lowest mean deviation.
type WorstPlants struct {
	Over  string `json:"plant_over"`
	Under string `json:"plant_under"`
}

// KPIs are the headline figures of a merged dataset.
type KPIs struct {
	TotalGap                float64 `json:"total_gap"`
	AbsTotalGap             float64 `json:"abs_total_gap"`
	AverageDeviationPercent float64 `json:"average_deviation_percent"`
}

// TimeSeriesFeature is a consumption observation enriched with calendar and
// lag features for model training.
type TimeSeriesFeature struct {
	Material       string    `json:"Material"`
	Plant          string    `json:"Plant"`
	Week           string    `json:"Week"`
	WeekNumber     int       `json:"Week_num"`
	Year           int       `json:"Year"`
	WeekStart      time.Time `json:"Time_index"`
	Month          int       `json:"Month"`
	Quarter        int       `json:"Quarter"`
	ConsumptionQty float64   `json:"ConsumptionQty"`
	Lag1           float64   `json:"ConsumptionQty_lag1"`
	Rolling4       float64   `json:"ConsumptionQty_rolling4"`
}

// RunStatus is the terminal state of a reconciliation run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunRecord is the persisted summary of one reconciliation run.
type RunRecord struct {
	ID                  string         `json:"id"`
	StartedAt           time.Time      `json:"started_at"`
	FinishedAt          time.Time      `json:"finished_at"`
	Status              RunStatus      `json:"status"`
	ForecastExtracts    int            `json:"forecast_extracts"`
	ConsumptionExtracts int            `json:"consumption_extracts"`
	ForecastRows        int            `json:"forecast_rows"`
	MergedRows          int            `json:"merged_rows"`
	Issues              []ExtractIssue `json:"issues,omitempty"`
	Error               string         `json:"error,omitempty"`
}
