package services

import (
	"sort"

	"github.com/samber/lo"
	"github.com/vsinha/fcrecon/pkg/domain/entities"
	"gonum.org/v1/gonum/stat"
)

// RollingWindow is the number of weeks averaged into Rolling4, current week
// included
const RollingWindow = 4

// BuildTimeSeriesFeatures derives calendar, lag and rolling features per
// (Material, Plant) series. Rows with a missing quantity or an unparsable week
// are skipped, as is the first week of each series since it has no lag.
func BuildTimeSeriesFeatures(rows []entities.ConsumptionRow) []entities.TimeSeriesFeature {
	type observation struct {
		row  entities.ConsumptionRow
		week entities.WeekCode
	}
	type seriesKey struct {
		material string
		plant    string
	}

	var observations []observation
	for _, row := range rows {
		if row.ConsumptionQty == nil {
			continue
		}
		week, err := entities.ParseWeekCode(row.Week)
		if err != nil {
			continue
		}
		observations = append(observations, observation{row: row, week: week})
	}

	sort.SliceStable(observations, func(i, j int) bool {
		a, b := observations[i], observations[j]
		if a.row.Material != b.row.Material {
			return a.row.Material < b.row.Material
		}
		if a.row.Plant != b.row.Plant {
			return a.row.Plant < b.row.Plant
		}
		return a.week.Before(b.week)
	})

	series := lo.PartitionBy(observations, func(o observation) seriesKey {
		return seriesKey{material: o.row.Material, plant: o.row.Plant}
	})

	var features []entities.TimeSeriesFeature
	for _, s := range series {
		quantities := lo.Map(s, func(o observation, _ int) float64 {
			return entities.FiniteOrZero(*o.row.ConsumptionQty)
		})
		for i := 1; i < len(s); i++ {
			start := max(0, i-RollingWindow+1)
			monday := s[i].week.Monday()
			features = append(features, entities.TimeSeriesFeature{
				Material:       s[i].row.Material,
				Plant:          s[i].row.Plant,
				Week:           s[i].row.Week,
				WeekNumber:     s[i].week.Week,
				Year:           s[i].week.Year,
				WeekStart:      monday,
				Month:          int(monday.Month()),
				Quarter:        (int(monday.Month())-1)/3 + 1,
				ConsumptionQty: quantities[i],
				Lag1:           quantities[i-1],
				Rolling4:       stat.Mean(quantities[start:i+1], nil),
			})
		}
	}
	return features
}
