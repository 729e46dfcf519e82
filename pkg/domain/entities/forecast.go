package entities

// Canonical column names shared by the forecast, consumption and merged tables.
const (
	ColMaterial       = "Material"
	ColPlant          = "Plant"
	ColVendor         = "Vendor"
	ColWeek           = "Week"
	ColForecastQty    = "ForecastQty"
	ColConsumptionQty = "ConsumptionQty"
	ColTotUsVal       = "Tot.us.val"
)

// Feature columns carried from the forecast extract into the canonical rows.
const (
	FeatureWIP          = "WIP"
	FeatureStock        = "Stock"
	FeatureMRPBacklog   = "MRP BACKLOG"
	FeaturePrice        = "Price from Info Record"
	FeaturePriceUnit    = "Price unit"
	FeatureCurrency     = "Currency from Info Record"
	FeatureSafetyStock  = "Safety Stock"
	FeatureTotalMRPName = "Total_MRP"
)

// PreservedFeatures lists the pass-through columns in output order.
var PreservedFeatures = []string{
	FeatureWIP,
	FeatureStock,
	FeatureMRPBacklog,
	FeaturePrice,
	FeaturePriceUnit,
	FeatureCurrency,
	FeatureSafetyStock,
}

// ForecastRow is one canonical forecast record per (Material, Plant, Week[, Vendor]).
type ForecastRow struct {
	Material    string            `json:"Material"`
	Plant       string            `json:"Plant"`
	Vendor      string            `json:"Vendor,omitempty"`
	Week        string            `json:"Week"`
	ForecastQty float64           `json:"ForecastQty"`
	Features    map[string]string `json:"Features,omitempty"`
}

// Key returns the merge key of the row.
func (r ForecastRow) Key() MergeKey {
	return MergeKey{Material: r.Material, Plant: r.Plant, Week: r.Week}
}

// Feature returns the numeric value of a pass-through column; absent or
// non-numeric values read as 0.
func (r ForecastRow) Feature(name string) float64 {
	return NumberOrZero(r.Features[name])
}

// ForecastExtract is the normalized output of one forecast file.
type ForecastExtract struct {
	Identifier string        `json:"identifier"`
	Week       string        `json:"week"`
	Columns    []string      `json:"columns"`
	Rows       []ForecastRow `json:"rows"`
}

// HasVendor reports whether the extract carried a Vendor column.
func (e *ForecastExtract) HasVendor() bool {
	for _, col := range e.Columns {
		if col == ColVendor {
			return true
		}
	}
	return false
}
