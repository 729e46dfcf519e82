package services

import (
	"math"

	"github.com/vsinha/fcrecon/pkg/domain/entities"
)

// RiskThresholds are the cut-offs of the risk rule cascade
type RiskThresholds struct {
	LowGapPercent     float64 `yaml:"low_gap_percent"`
	HighBacklog       float64 `yaml:"high_backlog"`
	LowInventory      float64 `yaml:"low_inventory"`
	HighSafetyStock   float64 `yaml:"high_safety_stock"`
	OverForecastRatio float64 `yaml:"over_forecast_ratio"`
}

// DefaultRiskThresholds returns the standard planning thresholds
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{
		LowGapPercent:     50,
		HighBacklog:       10000,
		LowInventory:      500,
		HighSafetyStock:   5000,
		OverForecastRatio: 0.5,
	}
}

// RiskClassifier explains the risk of a row. The first matching rule wins.
type RiskClassifier struct {
	thresholds RiskThresholds
}

// NewRiskClassifier creates a classifier with the given thresholds
func NewRiskClassifier(thresholds RiskThresholds) *RiskClassifier {
	return &RiskClassifier{thresholds: thresholds}
}

// Classify returns one of the entities.Risk* explanations
func (c *RiskClassifier) Classify(f entities.RiskFactors) string {
	t := c.thresholds
	switch {
	case math.Abs(f.PredictedGapPercent) < t.LowGapPercent:
		return entities.RiskLow
	case f.MRPBacklog > t.HighBacklog:
		return entities.RiskHighBacklog
	case f.WIP < t.LowInventory && f.Stock < t.LowInventory:
		return entities.RiskLowWIPAndStock
	case f.SafetyStock > t.HighSafetyStock && f.PredictedConsumptionQty < t.OverForecastRatio*f.ForecastQty:
		return entities.RiskOverForecastSafety
	default:
		return entities.RiskDeviationInvestigate
	}
}
