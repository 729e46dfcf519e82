package entities

// MergeKey is the primary key of the merged dataset.
type MergeKey struct {
	Material string
	Plant    string
	Week     string
}

// Prediction holds model output for a row. GapPercent is a percentage of
// ForecastQty and is 0 when ForecastQty is 0.
type Prediction struct {
	ConsumptionQty float64 `json:"Predicted_ConsumptionQty"`
	Gap            float64 `json:"Predicted_Gap"`
	GapPercent     float64 `json:"Predicted_GapPercent"`
}

// NewPrediction derives gap fields from a forecast and a predicted quantity.
func NewPrediction(forecastQty, predicted float64) Prediction {
	forecastQty = FiniteOrZero(forecastQty)
	predicted = FiniteOrZero(predicted)
	gap := forecastQty - predicted
	pct := 0.0
	if forecastQty != 0 {
		pct = FiniteOrZero(gap / forecastQty * 100)
	}
	return Prediction{ConsumptionQty: predicted, Gap: gap, GapPercent: pct}
}

// MergedRow joins a forecast and a consumption record on MergeKey.
// DeviationPercent is a percentage, always finite.
type MergedRow struct {
	Material         string            `json:"Material"`
	Plant            string            `json:"Plant"`
	Vendor           string            `json:"Vendor,omitempty"`
	Week             string            `json:"Week"`
	ForecastQty      float64           `json:"ForecastQty"`
	ConsumptionQty   float64           `json:"ConsumptionQty"`
	TotUsVal         *float64          `json:"Tot.us.val,omitempty"`
	Features         map[string]string `json:"Features,omitempty"`
	Deviation        float64           `json:"Deviation"`
	DeviationPercent float64           `json:"DeviationPercent"`
	Prediction       *Prediction       `json:"Prediction,omitempty"`
	RiskExplanation  string            `json:"RiskExplanation,omitempty"`
}

// Key returns the merge key of the row.
func (r MergedRow) Key() MergeKey {
	return MergeKey{Material: r.Material, Plant: r.Plant, Week: r.Week}
}

// Feature returns the numeric value of a pass-through column, 0 when absent.
func (r MergedRow) Feature(name string) float64 {
	return NumberOrZero(r.Features[name])
}

// RiskFactors collects the inputs of the risk cascade. Without a prediction
// the predicted fields stay 0.
func (r MergedRow) RiskFactors() RiskFactors {
	f := RiskFactors{
		ForecastQty: r.ForecastQty,
		MRPBacklog:  r.Feature(FeatureMRPBacklog),
		WIP:         r.Feature(FeatureWIP),
		Stock:       r.Feature(FeatureStock),
		SafetyStock: r.Feature(FeatureSafetyStock),
	}
	if r.Prediction != nil {
		f.PredictedGapPercent = r.Prediction.GapPercent
		f.PredictedConsumptionQty = r.Prediction.ConsumptionQty
	}
	return f
}

// ForecastOutlook is a forecast row scored by the consumption model.
type ForecastOutlook struct {
	ForecastRow
	Prediction      Prediction `json:"Prediction"`
	RiskExplanation string     `json:"RiskExplanation"`
}

// RiskFactors collects the inputs of the risk cascade.
func (o ForecastOutlook) RiskFactors() RiskFactors {
	return RiskFactors{
		PredictedGapPercent:     o.Prediction.GapPercent,
		PredictedConsumptionQty: o.Prediction.ConsumptionQty,
		ForecastQty:             o.ForecastQty,
		MRPBacklog:              o.Feature(FeatureMRPBacklog),
		WIP:                     o.Feature(FeatureWIP),
		Stock:                   o.Feature(FeatureStock),
		SafetyStock:             o.Feature(FeatureSafetyStock),
	}
}
