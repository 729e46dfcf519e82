package services

import (
	"testing"

	"github.com/vsinha/fcrecon/pkg/domain/entities"
)

func TestRiskClassifier_Classify(t *testing.T) {
	c := NewRiskClassifier(DefaultRiskThresholds())

	tests := []struct {
		name    string
		factors entities.RiskFactors
		want    string
	}{
		{
			name:    "low_risk",
			factors: entities.RiskFactors{PredictedGapPercent: -49.9, MRPBacklog: 20000},
			want:    entities.RiskLow,
		},
		{
			name:    "backlog_before_inventory",
			factors: entities.RiskFactors{PredictedGapPercent: 60, MRPBacklog: 12000},
			want:    entities.RiskHighBacklog,
		},
		{
			name:    "low_wip_and_stock",
			factors: entities.RiskFactors{PredictedGapPercent: 50, WIP: 100, Stock: 499},
			want:    entities.RiskLowWIPAndStock,
		},
		{
			name: "over_forecast_safety_stock",
			factors: entities.RiskFactors{
				PredictedGapPercent: 80, WIP: 1000, SafetyStock: 6000,
				ForecastQty: 1000, PredictedConsumptionQty: 200,
			},
			want: entities.RiskOverForecastSafety,
		},
		{
			name:    "missing_fields_read_as_zero",
			factors: entities.RiskFactors{PredictedGapPercent: -75},
			want:    entities.RiskLowWIPAndStock,
		},
		{
			name: "needs_investigation",
			factors: entities.RiskFactors{
				PredictedGapPercent: -120, Stock: 800, SafetyStock: 6000,
				ForecastQty: 1000, PredictedConsumptionQty: 2200,
			},
			want: entities.RiskDeviationInvestigate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.factors); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRiskClassifier_MergedRowScenario(t *testing.T) {
	c := NewRiskClassifier(DefaultRiskThresholds())
	row := entities.MergedRow{
		ForecastQty: 1000,
		Features:    map[string]string{entities.FeatureMRPBacklog: "12000"},
		Prediction:  &entities.Prediction{GapPercent: 60, ConsumptionQty: 400},
	}

	if got := c.Classify(row.RiskFactors()); got != "High backlog — supplier delays likely" {
		t.Errorf("Expected high backlog explanation, got %q", got)
	}
}
