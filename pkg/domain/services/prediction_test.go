package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/vsinha/fcrecon/pkg/domain/entities"
)

func TestFeatureVector(t *testing.T) {
	features := map[string]string{
		entities.FeatureWIP:         "10",
		entities.FeatureMRPBacklog:  "n/a",
		entities.FeatureSafetyStock: "7",
		entities.FeatureCurrency:    "EUR",
	}

	got := FeatureVector(1000, features)
	want := []float64{1000, 10, 0, 0, 0, 0, 7}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func halfPredictor() Predictor {
	return PredictorFunc(func(_ context.Context, features [][]float64) ([]float64, error) {
		out := make([]float64, len(features))
		for i, f := range features {
			out[i] = f[0] / 2
		}
		return out, nil
	})
}

func TestPredictionService_PredictForecasts(t *testing.T) {
	svc := NewPredictionService(halfPredictor(), NewRiskClassifier(DefaultRiskThresholds()))
	rows := []entities.ForecastRow{
		{Material: "M1", Plant: "YMO", Week: "W10-24", ForecastQty: 1000,
			Features: map[string]string{entities.FeatureMRPBacklog: "12000"}},
		{Material: "M2", Plant: "YMO", Week: "W10-24", ForecastQty: 0},
	}

	outlook, err := svc.PredictForecasts(context.Background(), rows)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	first := outlook[0]
	if first.Prediction.ConsumptionQty != 500 || first.Prediction.Gap != 500 || first.Prediction.GapPercent != 50 {
		t.Errorf("Unexpected prediction %+v", first.Prediction)
	}
	if first.RiskExplanation != entities.RiskHighBacklog {
		t.Errorf("Expected high backlog, got %q", first.RiskExplanation)
	}

	if outlook[1].Prediction.GapPercent != 0 || outlook[1].RiskExplanation != entities.RiskLow {
		t.Errorf("Expected zero gap and low risk for zero forecast, got %+v", outlook[1])
	}
}

func TestPredictionService_PredictMerged(t *testing.T) {
	svc := NewPredictionService(halfPredictor(), NewRiskClassifier(DefaultRiskThresholds()))
	rows := []entities.MergedRow{mergedRow("M1", "YMO", "W10-24", 1000, 900)}

	scored, err := svc.PredictMerged(context.Background(), rows)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if scored[0].Prediction == nil || scored[0].Prediction.ConsumptionQty != 500 {
		t.Fatalf("Expected prediction of 500, got %+v", scored[0].Prediction)
	}
	if scored[0].RiskExplanation != entities.RiskLowWIPAndStock {
		t.Errorf("Expected low WIP & Stock, got %q", scored[0].RiskExplanation)
	}
	if rows[0].Prediction != nil {
		t.Error("Expected input rows to be left unchanged")
	}
}

func TestPredictionService_Errors(t *testing.T) {
	classifier := NewRiskClassifier(DefaultRiskThresholds())
	rows := []entities.ForecastRow{{Material: "M1", ForecastQty: 1}}

	failing := PredictorFunc(func(context.Context, [][]float64) ([]float64, error) {
		return nil, errors.New("model unavailable")
	})
	if _, err := NewPredictionService(failing, classifier).PredictForecasts(context.Background(), rows); err == nil {
		t.Error("Expected predictor error to propagate")
	}

	short := PredictorFunc(func(context.Context, [][]float64) ([]float64, error) {
		return []float64{}, nil
	})
	if _, err := NewPredictionService(short, classifier).PredictForecasts(context.Background(), rows); err == nil {
		t.Error("Expected length mismatch to be rejected")
	}
}
