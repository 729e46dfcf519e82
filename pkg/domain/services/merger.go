package services

import (
	"strings"

	"github.com/vsinha/fcrecon/pkg/domain/entities"
)

// Merger inner-joins canonical forecast and consumption rows on
// (Material, Plant, Week)
type Merger struct{}

// NewMerger creates a new merger
func NewMerger() *Merger {
	return &Merger{}
}

// Merge returns one row per key present on both sides, in forecast order.
// Duplicate keys on either side are collapsed first by summing quantities, so
// the output never repeats a key. Consumption rows without a usable quantity
// are dropped before the join.
func (m *Merger) Merge(forecasts []entities.ForecastRow, consumption []entities.ConsumptionRow) []entities.MergedRow {
	actuals := collapseConsumption(consumption)

	var keys []entities.MergeKey
	byKey := make(map[entities.MergeKey]*entities.MergedRow)
	for _, f := range forecasts {
		key := f.Key()
		if existing, ok := byKey[key]; ok {
			existing.ForecastQty += entities.FiniteOrZero(f.ForecastQty)
			continue
		}
		if _, ok := actuals[key]; !ok {
			continue
		}
		keys = append(keys, key)
		byKey[key] = &entities.MergedRow{
			Material:    f.Material,
			Plant:       f.Plant,
			Vendor:      f.Vendor,
			Week:        f.Week,
			ForecastQty: entities.FiniteOrZero(f.ForecastQty),
			Features:    f.Features,
		}
	}

	merged := make([]entities.MergedRow, 0, len(keys))
	for _, key := range keys {
		row := byKey[key]
		actual := actuals[key]
		row.ConsumptionQty = entities.FiniteOrZero(actual.qty)
		row.TotUsVal = actual.value
		row.Deviation, row.DeviationPercent = Deviation(row.ForecastQty, row.ConsumptionQty)
		merged = append(merged, *row)
	}
	return merged
}

// Deviation returns C-F and its percentage of F. The percentage is 0 when F is
// 0 and never NaN or infinite.
func Deviation(forecastQty, consumptionQty float64) (float64, float64) {
	forecastQty = entities.FiniteOrZero(forecastQty)
	consumptionQty = entities.FiniteOrZero(consumptionQty)
	deviation := consumptionQty - forecastQty
	if forecastQty == 0 {
		return deviation, 0
	}
	return deviation, entities.FiniteOrZero(100 * deviation / forecastQty)
}

type actual struct {
	qty   float64
	value *float64
}

func collapseConsumption(rows []entities.ConsumptionRow) map[entities.MergeKey]actual {
	actuals := make(map[entities.MergeKey]actual, len(rows))
	for _, row := range rows {
		if row.ConsumptionQty == nil {
			continue
		}
		key := row.Key()
		a := actuals[key]
		a.qty += entities.FiniteOrZero(*row.ConsumptionQty)
		if row.TotUsVal != nil {
			v := entities.FiniteOrZero(*row.TotUsVal)
			if a.value != nil {
				v += *a.value
			}
			a.value = &v
		}
		actuals[key] = a
	}
	return actuals
}

// SanitizeMerged replaces NaN and infinite numbers with 0 in place
func SanitizeMerged(rows []entities.MergedRow) {
	for i := range rows {
		r := &rows[i]
		r.ForecastQty = entities.FiniteOrZero(r.ForecastQty)
		r.ConsumptionQty = entities.FiniteOrZero(r.ConsumptionQty)
		r.Deviation = entities.FiniteOrZero(r.Deviation)
		r.DeviationPercent = entities.FiniteOrZero(r.DeviationPercent)
		if r.TotUsVal != nil {
			v := entities.FiniteOrZero(*r.TotUsVal)
			r.TotUsVal = &v
		}
		if r.Prediction != nil {
			p := *r.Prediction
			p.ConsumptionQty = entities.FiniteOrZero(p.ConsumptionQty)
			p.Gap = entities.FiniteOrZero(p.Gap)
			p.GapPercent = entities.FiniteOrZero(p.GapPercent)
			r.Prediction = &p
		}
	}
}

// MergedFilter selects rows by plant and material. Empty values and "All"
// match everything.
type MergedFilter struct {
	Plant    string
	Material string
}

func (f MergedFilter) matches(value, want string) bool {
	want = strings.TrimSpace(want)
	return want == "" || strings.EqualFold(want, "All") || value == want
}

// FilterMerged returns the rows selected by filter in their original order
func FilterMerged(rows []entities.MergedRow, filter MergedFilter) []entities.MergedRow {
	var out []entities.MergedRow
	for _, row := range rows {
		if filter.matches(row.Plant, filter.Plant) && filter.matches(row.Material, filter.Material) {
			out = append(out, row)
		}
	}
	return out
}
