package entities

// Risk explanations produced by the classifier, in rule order.
const (
	RiskLow                  = "Low risk"
	RiskHighBacklog          = "High backlog — supplier delays likely"
	RiskLowWIPAndStock       = "Low WIP & Stock — supply shortage risk"
	RiskOverForecastSafety   = "Over-forecasting with high safety stock"
	RiskDeviationInvestigate = "Forecast deviation — needs investigation"
)

// RiskFactors are the per-row values the risk rules compare. Missing source
// fields are 0.
type RiskFactors struct {
	PredictedGapPercent     float64
	PredictedConsumptionQty float64
	ForecastQty             float64
	MRPBacklog              float64
	WIP                     float64
	Stock                   float64
	SafetyStock             float64
}
