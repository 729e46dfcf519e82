package services

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vsinha/fcrecon/pkg/domain/entities"
)

func TestAggregator_GapByPlant(t *testing.T) {
	a := NewAggregator()
	rows := []entities.MergedRow{
		mergedRow("M1", "YMO", "W10-24", 1000, 800),
		mergedRow("M2", "YMO", "W10-24", 2000, 1800),
		mergedRow("M3", "YMK", "W10-24", 0, 40),
	}

	gaps := a.GapByPlant(rows)
	want := []entities.PlantGap{
		{Plant: "YMK", ForecastQty: 0, ConsumptionQty: 40, GapPercent: 0},
		{Plant: "YMO", ForecastQty: 3000, ConsumptionQty: 2600, GapPercent: 0.13},
	}
	if !reflect.DeepEqual(gaps, want) {
		t.Errorf("Expected %+v, got %+v", want, gaps)
	}
}

func TestAggregator_RiskByWeek(t *testing.T) {
	a := NewAggregator()
	samples := []entities.WeekSample{
		{Week: "W01-25", Percent: 10},
		{Week: "W52-24", Percent: -60},
		{Week: "W52-24", Percent: 20},
		{Week: "W52-24", Percent: 50},
	}

	summary := a.RiskByWeek(samples)
	if len(summary) != 2 {
		t.Fatalf("Expected 2 weeks, got %d", len(summary))
	}
	if summary[0].Week != "W52-24" || summary[1].Week != "W01-25" {
		t.Errorf("Expected chronological order, got %s then %s", summary[0].Week, summary[1].Week)
	}

	w := summary[0]
	if w.TotalMaterials != 3 || w.HighRisk != 2 {
		t.Errorf("Expected 3 materials with 2 high risk, got %d/%d", w.TotalMaterials, w.HighRisk)
	}
	if w.AvgGapPercent != 10.0/3.0 {
		t.Errorf("Expected mean %v, got %v", 10.0/3.0, w.AvgGapPercent)
	}
	if w.HighRiskPercent != 66.67 {
		t.Errorf("Expected 66.67, got %v", w.HighRiskPercent)
	}
}

func TestWeekSamplesFromMerged_PrefersPrediction(t *testing.T) {
	observed := mergedRow("M1", "YMO", "W10-24", 100, 50)
	predicted := mergedRow("M2", "YMO", "W10-24", 100, 50)
	predicted.Prediction = &entities.Prediction{GapPercent: 75}

	samples := WeekSamplesFromMerged([]entities.MergedRow{observed, predicted})
	if samples[0].Percent != -50 || samples[1].Percent != 75 {
		t.Errorf("Expected -50 and 75, got %+v", samples)
	}
}

func TestAggregator_WorstPlants(t *testing.T) {
	a := NewAggregator()
	rows := []entities.MergedRow{
		mergedRow("M1", "YMO", "W10-24", 100, 300),
		mergedRow("M2", "YMM", "W10-24", 100, 0),
		mergedRow("M3", "YMK", "W10-24", 100, 300),
		mergedRow("M4", "YMM2", "W10-24", 100, 0),
	}

	worst, err := a.WorstPlants(rows)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// Ties go to the first plant in sorted order
	if worst.Over != "YMK" || worst.Under != "YMM" {
		t.Errorf("Expected YMK/YMM, got %s/%s", worst.Over, worst.Under)
	}

	if _, err := a.WorstPlants(nil); !errors.Is(err, entities.ErrEmptyDataset) {
		t.Errorf("Expected ErrEmptyDataset, got %v", err)
	}
}

func TestAggregator_KPIs(t *testing.T) {
	a := NewAggregator()
	rows := []entities.MergedRow{
		mergedRow("M1", "YMO", "W10-24", 1000, 800),
		mergedRow("M2", "YMO", "W10-24", 2000, 2300),
	}

	kpis := a.KPIs(rows)
	if kpis.TotalGap != -100 || kpis.AbsTotalGap != 100 {
		t.Errorf("Expected total gap -100 / 100, got %v / %v", kpis.TotalGap, kpis.AbsTotalGap)
	}
	if kpis.AverageDeviationPercent != 16.67 {
		t.Errorf("Expected 16.67, got %v", kpis.AverageDeviationPercent)
	}

	if got := a.KPIs([]entities.MergedRow{mergedRow("M1", "YMO", "W10-24", 0, 5)}); got.AverageDeviationPercent != 0 {
		t.Errorf("Expected 0 without forecast, got %v", got.AverageDeviationPercent)
	}
}

func TestHorizon(t *testing.T) {
	rows := []entities.ForecastRow{{Week: "W02-25"}, {Week: "W50-24"}, {Week: "W02-25"}, {Week: "W51-24"}}
	want := []string{"W50-24", "W51-24", "W02-25"}
	if got := Horizon(rows); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
