package entities

// ConsumptionRow is one canonical consumption record. A nil ConsumptionQty
// marks a value that could not be read as a number.
type ConsumptionRow struct {
	Material       string   `json:"Material"`
	Plant          string   `json:"Plant"`
	Week           string   `json:"Week"`
	ConsumptionQty *float64 `json:"ConsumptionQty"`
	TotUsVal       *float64 `json:"Tot.us.val,omitempty"`
}

// Key returns the merge key of the row.
func (r ConsumptionRow) Key() MergeKey {
	return MergeKey{Material: r.Material, Plant: r.Plant, Week: r.Week}
}

// ConsumptionExtract is the normalized output of one consumption file.
type ConsumptionExtract struct {
	Identifier  string           `json:"identifier"`
	UsageColumn string           `json:"usage_column"`
	Columns     []string         `json:"columns"`
	Rows        []ConsumptionRow `json:"rows"`
}
