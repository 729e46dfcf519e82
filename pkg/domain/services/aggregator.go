package services

import (
	"math"
	"sort"

	"github.com/samber/lo"
	"github.com/vsinha/fcrecon/pkg/domain/entities"
	"gonum.org/v1/gonum/stat"
)

// HighRiskPercent is the absolute deviation, in percent, at which a row
// counts as high risk in the weekly summary
const HighRiskPercent = 50.0

// Aggregator builds plant and week summaries over merged rows
type Aggregator struct{}

// NewAggregator creates a new aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// GapByPlant sums quantities per plant. GapPercent is the ratio (F-C)/F
// rounded to two decimals, 0 for a plant without forecast. Plants are sorted.
func (a *Aggregator) GapByPlant(rows []entities.MergedRow) []entities.PlantGap {
	groups := lo.GroupBy(rows, func(r entities.MergedRow) string { return r.Plant })

	plants := lo.Keys(groups)
	sort.Strings(plants)

	gaps := make([]entities.PlantGap, 0, len(plants))
	for _, plant := range plants {
		gap := entities.PlantGap{Plant: plant}
		for _, r := range groups[plant] {
			gap.ForecastQty += r.ForecastQty
			gap.ConsumptionQty += r.ConsumptionQty
		}
		if gap.ForecastQty != 0 {
			gap.GapPercent = entities.Round2(entities.FiniteOrZero((gap.ForecastQty - gap.ConsumptionQty) / gap.ForecastQty))
		}
		gaps = append(gaps, gap)
	}
	return gaps
}

// WeekSamplesFromMerged uses the predicted gap when a row has one and the
// observed deviation otherwise
func WeekSamplesFromMerged(rows []entities.MergedRow) []entities.WeekSample {
	return lo.Map(rows, func(r entities.MergedRow, _ int) entities.WeekSample {
		pct := r.DeviationPercent
		if r.Prediction != nil {
			pct = r.Prediction.GapPercent
		}
		return entities.WeekSample{Week: r.Week, Percent: pct}
	})
}

// WeekSamplesFromOutlook uses the predicted gap of each forecast row
func WeekSamplesFromOutlook(rows []entities.ForecastOutlook) []entities.WeekSample {
	return lo.Map(rows, func(r entities.ForecastOutlook, _ int) entities.WeekSample {
		return entities.WeekSample{Week: r.Week, Percent: r.Prediction.GapPercent}
	})
}

// RiskByWeek counts rows and high-risk rows per week, in chronological order
func (a *Aggregator) RiskByWeek(samples []entities.WeekSample) []entities.WeekRisk {
	groups := lo.GroupBy(samples, func(s entities.WeekSample) string { return s.Week })

	weeks := lo.Keys(groups)
	sort.Slice(weeks, func(i, j int) bool {
		return entities.CompareWeekLabels(weeks[i], weeks[j]) < 0
	})

	summary := make([]entities.WeekRisk, 0, len(weeks))
	for _, week := range weeks {
		percents := lo.Map(groups[week], func(s entities.WeekSample, _ int) float64 {
			return entities.FiniteOrZero(s.Percent)
		})
		high := lo.CountBy(percents, func(p float64) bool { return math.Abs(p) >= HighRiskPercent })

		summary = append(summary, entities.WeekRisk{
			Week:            week,
			TotalMaterials:  len(percents),
			HighRisk:        high,
			AvgGapPercent:   stat.Mean(percents, nil),
			HighRiskPercent: entities.Round2(float64(high) / float64(len(percents)) * 100),
		})
	}
	return summary
}

// WorstPlants returns the plants with the highest and lowest mean Deviation.
// Ties resolve to the first plant in sorted order.
func (a *Aggregator) WorstPlants(rows []entities.MergedRow) (entities.WorstPlants, error) {
	if len(rows) == 0 {
		return entities.WorstPlants{}, entities.ErrEmptyDataset
	}

	groups := lo.GroupBy(rows, func(r entities.MergedRow) string { return r.Plant })
	plants := lo.Keys(groups)
	sort.Strings(plants)

	var worst entities.WorstPlants
	var maxMean, minMean float64
	for i, plant := range plants {
		deviations := lo.Map(groups[plant], func(r entities.MergedRow, _ int) float64 { return r.Deviation })
		mean := stat.Mean(deviations, nil)
		if i == 0 || mean > maxMean {
			maxMean = mean
			worst.Over = plant
		}
		if i == 0 || mean < minMean {
			minMean = mean
			worst.Under = plant
		}
	}
	return worst, nil
}

// KPIs computes the headline figures. AverageDeviationPercent is
// sum|F-C| / sum F * 100 rounded to two decimals, 0 without forecast.
func (a *Aggregator) KPIs(rows []entities.MergedRow) entities.KPIs {
	var totalGap, absGap, totalForecast float64
	for _, r := range rows {
		gap := r.ForecastQty - r.ConsumptionQty
		totalGap += gap
		absGap += math.Abs(gap)
		totalForecast += r.ForecastQty
	}

	kpis := entities.KPIs{TotalGap: totalGap, AbsTotalGap: math.Abs(totalGap)}
	if totalForecast != 0 {
		kpis.AverageDeviationPercent = entities.Round2(entities.FiniteOrZero(absGap / totalForecast * 100))
	}
	return kpis
}

// Horizon returns the distinct weeks of the forecast rows in chronological
// order
func Horizon(rows []entities.ForecastRow) []string {
	weeks := lo.Uniq(lo.Map(rows, func(r entities.ForecastRow, _ int) string { return r.Week }))
	sort.Slice(weeks, func(i, j int) bool {
		return entities.CompareWeekLabels(weeks[i], weeks[j]) < 0
	})
	return weeks
}
