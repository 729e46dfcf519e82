package services

import (
	"math"
	"strconv"

	"github.com/vsinha/fcrecon/pkg/domain/entities"
)

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func posInf() float64 {
	return math.Inf(1)
}

func qty(v float64) *float64 {
	return &v
}

func mergedRow(material, plant, week string, forecast, consumption float64) entities.MergedRow {
	deviation, pct := Deviation(forecast, consumption)
	return entities.MergedRow{
		Material:         material,
		Plant:            plant,
		Week:             week,
		ForecastQty:      forecast,
		ConsumptionQty:   consumption,
		Deviation:        deviation,
		DeviationPercent: pct,
	}
}
