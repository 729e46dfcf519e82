package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vsinha/fcrecon/pkg/domain/entities"
)

// ForecastNormalizer turns a wide MRP extract into canonical long rows
type ForecastNormalizer struct {
	weekColumnPattern *regexp.Regexp
}

// NewForecastNormalizer creates a normalizer that recognizes "ww.yyyy"
// week-coded MRP columns
func NewForecastNormalizer() *ForecastNormalizer {
	return &ForecastNormalizer{
		weekColumnPattern: regexp.MustCompile(`(\d{2})\.(\d{4})`),
	}
}

// Normalize converts one raw forecast table. ForecastQty is the row sum of
// the MRP columns due up to (currentYear, currentWeek). A table that already
// carries ForecastQty is treated as normalized and its quantity is kept.
func (n *ForecastNormalizer) Normalize(table *entities.Table, weekString string, currentWeek, currentYear int) *entities.ForecastExtract {
	materialIdx := table.ColumnIndex(entities.ColMaterial)
	plantIdx := table.ColumnIndex(entities.ColPlant)
	vendorIdx := table.ColumnIndex(entities.ColVendor)
	existingQtyIdx := table.ColumnIndex(entities.ColForecastQty)

	var sumIdx []int
	for i, col := range table.Columns {
		name := strings.TrimSpace(col)
		if strings.HasPrefix(strings.ToUpper(name), "PO/SL") {
			continue
		}
		if n.inScope(name, currentWeek, currentYear) {
			sumIdx = append(sumIdx, i)
		}
	}

	// Preserved features, in output order, that exist in the input
	featureIdx := make(map[string]int)
	var features []string
	for _, name := range entities.PreservedFeatures {
		if idx := table.ColumnIndex(name); idx >= 0 {
			featureIdx[name] = idx
			features = append(features, name)
		}
	}

	columns := []string{entities.ColMaterial, entities.ColPlant}
	if vendorIdx >= 0 {
		columns = append(columns, entities.ColVendor)
	}
	columns = append(columns, entities.ColWeek, entities.ColForecastQty)
	columns = append(columns, features...)

	extract := &entities.ForecastExtract{
		Identifier: table.Name,
		Week:       weekString,
		Columns:    columns,
		Rows:       make([]entities.ForecastRow, 0, len(table.Rows)),
	}

	for _, raw := range table.Rows {
		material := strings.TrimSpace(entities.Cell(raw, materialIdx))
		if material == "" {
			continue
		}

		var qty float64
		if existingQtyIdx >= 0 {
			qty = entities.NumberOrZero(entities.Cell(raw, existingQtyIdx))
		} else {
			for _, idx := range sumIdx {
				qty += entities.NumberOrZero(entities.Cell(raw, idx))
			}
		}

		row := entities.ForecastRow{
			Material:    material,
			Plant:       strings.TrimSpace(entities.Cell(raw, plantIdx)),
			Vendor:      entities.Cell(raw, vendorIdx),
			Week:        weekString,
			ForecastQty: qty,
		}
		if len(features) > 0 {
			row.Features = make(map[string]string, len(features))
			for _, name := range features {
				row.Features[name] = entities.Cell(raw, featureIdx[name])
			}
		}
		extract.Rows = append(extract.Rows, row)
	}

	return extract
}

// NormalizeExtract reads the reference week from the table name and
// normalizes it
func (n *ForecastNormalizer) NormalizeExtract(table *entities.Table) (*entities.ForecastExtract, error) {
	token, week, err := entities.ParseWeekToken(table.Name)
	if err != nil {
		return nil, err
	}
	for _, required := range []string{entities.ColMaterial, entities.ColPlant} {
		if !table.HasColumn(required) {
			return nil, &entities.MissingColumnError{Extract: table.Name, Candidates: []string{required}}
		}
	}
	return n.Normalize(table, token, week.Week, week.Year), nil
}

// inScope reports whether an MRP column contributes to ForecastQty
func (n *ForecastNormalizer) inScope(name string, currentWeek, currentYear int) bool {
	if !strings.HasPrefix(name, "MRP") {
		return false
	}
	if name == "MRP" || name == entities.FeatureMRPBacklog {
		return true
	}
	if !strings.Contains(name, ".") {
		return false
	}
	m := n.weekColumnPattern.FindStringSubmatch(name)
	if m == nil {
		return false
	}
	week, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	return year < currentYear || (year == currentYear && week <= currentWeek)
}

// ConcatForecasts joins normalized extracts in order and drops rows whose
// ForecastQty is not a finite number
func ConcatForecasts(extracts []*entities.ForecastExtract) []entities.ForecastRow {
	var rows []entities.ForecastRow
	for _, extract := range extracts {
		for _, row := range extract.Rows {
			if !entities.IsFinite(row.ForecastQty) {
				continue
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// ForecastColumns returns the union of the extracts' columns in first-seen
// order
func ForecastColumns(extracts []*entities.ForecastExtract) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, extract := range extracts {
		for _, col := range extract.Columns {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}
	return columns
}
