package services

import (
	"strings"

	"github.com/vsinha/fcrecon/pkg/domain/entities"
)

// ConsumptionSynonyms are the accepted names of the actual-usage column in
// priority order
var ConsumptionSynonyms = []string{
	"ConsumptionQty",
	"RealQty",
	"Tot_usage",
	"Tot. usage",
	"Usage",
	"Real Usage",
}

// ConsumptionNormalizer converts consumption extracts into canonical rows
type ConsumptionNormalizer struct {
	synonyms []string
}

// NewConsumptionNormalizer creates a normalizer using ConsumptionSynonyms
func NewConsumptionNormalizer() *ConsumptionNormalizer {
	return &ConsumptionNormalizer{synonyms: ConsumptionSynonyms}
}

// UsageColumn resolves the usage column of a table. The first synonym that
// exists wins, regardless of where it sits in the table.
func (n *ConsumptionNormalizer) UsageColumn(table *entities.Table) (string, error) {
	for _, name := range n.synonyms {
		if table.HasColumn(name) {
			return name, nil
		}
	}
	return "", &entities.MissingColumnError{Extract: table.Name, Candidates: n.synonyms}
}

// Normalize converts one consumption table. Quantities that are not numbers
// stay nil so the merger can drop them.
func (n *ConsumptionNormalizer) Normalize(table *entities.Table) (*entities.ConsumptionExtract, error) {
	usage, err := n.UsageColumn(table)
	if err != nil {
		return nil, err
	}
	for _, required := range []string{entities.ColMaterial, entities.ColPlant, entities.ColWeek} {
		if !table.HasColumn(required) {
			return nil, &entities.MissingColumnError{Extract: table.Name, Candidates: []string{required}}
		}
	}

	materialIdx := table.ColumnIndex(entities.ColMaterial)
	plantIdx := table.ColumnIndex(entities.ColPlant)
	weekIdx := table.ColumnIndex(entities.ColWeek)
	usageIdx := table.ColumnIndex(usage)
	valueIdx := table.ColumnIndex(entities.ColTotUsVal)

	columns := []string{entities.ColMaterial, entities.ColPlant, entities.ColWeek, entities.ColConsumptionQty}
	if valueIdx >= 0 {
		columns = append(columns, entities.ColTotUsVal)
	}

	extract := &entities.ConsumptionExtract{
		Identifier:  table.Name,
		UsageColumn: usage,
		Columns:     columns,
		Rows:        make([]entities.ConsumptionRow, 0, len(table.Rows)),
	}
	for _, raw := range table.Rows {
		row := entities.ConsumptionRow{
			Material:       strings.TrimSpace(entities.Cell(raw, materialIdx)),
			Plant:          strings.TrimSpace(entities.Cell(raw, plantIdx)),
			Week:           entities.NormalizeWeekLabel(entities.Cell(raw, weekIdx)),
			ConsumptionQty: entities.ParseOptionalNumber(entities.Cell(raw, usageIdx)),
		}
		if valueIdx >= 0 {
			row.TotUsVal = entities.ParseOptionalNumber(entities.Cell(raw, valueIdx))
		}
		extract.Rows = append(extract.Rows, row)
	}

	return extract, nil
}

// ConcatConsumption joins normalized extracts in order
func ConcatConsumption(extracts []*entities.ConsumptionExtract) []entities.ConsumptionRow {
	var rows []entities.ConsumptionRow
	for _, extract := range extracts {
		rows = append(rows, extract.Rows...)
	}
	return rows
}
