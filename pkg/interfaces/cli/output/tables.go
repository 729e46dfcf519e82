package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vsinha/fcrecon/pkg/application/dto"
	"github.com/vsinha/fcrecon/pkg/domain/entities"
)

// Table is a named tabular dataset handed to the presentation layer
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ReconciliationTables returns every dataset of a run in export order
func ReconciliationTables(result *dto.ReconciliationResult) []Table {
	return []Table{
		ForecastTable(result.ForecastColumns, result.Forecast),
		ConsumptionTable(result.Consumption),
		MergedTable("merged", result.Merged, result.Predicted),
		PlantGapTable(result.PlantGaps),
		WeeklyRiskTable(result.WeeklyRisk),
		FeaturesTable(result.Features),
	}
}

// ForecastTable lays out canonical forecast rows under the given columns
func ForecastTable(columns []string, rows []entities.ForecastRow) Table {
	t := Table{Name: "forecast_clean", Header: columns}
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			switch col {
			case entities.ColMaterial:
				record[i] = row.Material
			case entities.ColPlant:
				record[i] = row.Plant
			case entities.ColVendor:
				record[i] = row.Vendor
			case entities.ColWeek:
				record[i] = row.Week
			case entities.ColForecastQty:
				record[i] = formatFloat(row.ForecastQty)
			default:
				record[i] = row.Features[col]
			}
		}
		t.Rows = append(t.Rows, record)
	}
	return t
}

// ConsumptionTable lays out canonical consumption rows. Missing quantities
// are blank.
func ConsumptionTable(rows []entities.ConsumptionRow) Table {
	hasValue := false
	for _, row := range rows {
		if row.TotUsVal != nil {
			hasValue = true
			break
		}
	}

	t := Table{
		Name:   "consumption_clean",
		Header: []string{entities.ColMaterial, entities.ColPlant, entities.ColWeek, entities.ColConsumptionQty},
	}
	if hasValue {
		t.Header = append(t.Header, entities.ColTotUsVal)
	}
	for _, row := range rows {
		record := []string{row.Material, row.Plant, row.Week, formatOptional(row.ConsumptionQty)}
		if hasValue {
			record = append(record, formatOptional(row.TotUsVal))
		}
		t.Rows = append(t.Rows, record)
	}
	return t
}

// MergedTable lays out merged rows. Vendor, Tot.us.val and feature columns
// appear only when some row carries them.
func MergedTable(name string, rows []entities.MergedRow, predicted bool) Table {
	hasVendor, hasValue := false, false
	present := make(map[string]bool)
	for _, row := range rows {
		hasVendor = hasVendor || row.Vendor != ""
		hasValue = hasValue || row.TotUsVal != nil
		for col := range row.Features {
			present[col] = true
		}
	}
	var features []string
	for _, col := range entities.PreservedFeatures {
		if present[col] {
			features = append(features, col)
		}
	}

	header := []string{entities.ColMaterial, entities.ColPlant}
	if hasVendor {
		header = append(header, entities.ColVendor)
	}
	header = append(header, entities.ColWeek, entities.ColForecastQty, entities.ColConsumptionQty)
	if hasValue {
		header = append(header, entities.ColTotUsVal)
	}
	header = append(header, features...)
	header = append(header, "Deviation", "DeviationPercent")
	if predicted {
		header = append(header, "Predicted_ConsumptionQty", "Predicted_Gap", "Predicted_GapPercent", "RiskExplanation")
	}

	t := Table{Name: name, Header: header}
	for _, row := range rows {
		record := []string{row.Material, row.Plant}
		if hasVendor {
			record = append(record, row.Vendor)
		}
		record = append(record, row.Week, formatFloat(row.ForecastQty), formatFloat(row.ConsumptionQty))
		if hasValue {
			record = append(record, formatOptional(row.TotUsVal))
		}
		for _, col := range features {
			record = append(record, row.Features[col])
		}
		record = append(record, formatFloat(row.Deviation), formatFloat(row.DeviationPercent))
		if predicted {
			if row.Prediction != nil {
				record = append(record,
					formatFloat(row.Prediction.ConsumptionQty),
					formatFloat(row.Prediction.Gap),
					formatFloat(row.Prediction.GapPercent))
			} else {
				record = append(record, "", "", "")
			}
			record = append(record, row.RiskExplanation)
		}
		t.Rows = append(t.Rows, record)
	}
	return t
}

// PlantGapTable lays out the plant summary
func PlantGapTable(gaps []entities.PlantGap) Table {
	t := Table{Name: "plant_gaps", Header: []string{"Plant", "ForecastQty", "ConsumptionQty", "GapPercent"}}
	for _, g := range gaps {
		t.Rows = append(t.Rows, []string{
			g.Plant, formatFloat(g.ForecastQty), formatFloat(g.ConsumptionQty), formatFloat(g.GapPercent),
		})
	}
	return t
}

// WeeklyRiskTable lays out the weekly risk summary
func WeeklyRiskTable(weeks []entities.WeekRisk) Table {
	t := Table{Name: "weekly_risk", Header: []string{"Week", "Total_Materials", "High_Risk", "Avg_Gap_Percent", "High Risk %"}}
	for _, w := range weeks {
		t.Rows = append(t.Rows, []string{
			w.Week,
			strconv.Itoa(w.TotalMaterials),
			strconv.Itoa(w.HighRisk),
			formatFloat(w.AvgGapPercent),
			formatFloat(w.HighRiskPercent),
		})
	}
	return t
}

// FeaturesTable lays out the time-series training features
func FeaturesTable(features []entities.TimeSeriesFeature) Table {
	t := Table{Name: "features", Header: []string{
		"Material", "Plant", "Week", "Time_index", "Week_num", "Year", "Month", "Quarter",
		"ConsumptionQty", "ConsumptionQty_lag1", "ConsumptionQty_rolling4",
	}}
	for _, f := range features {
		t.Rows = append(t.Rows, []string{
			f.Material, f.Plant, f.Week, f.WeekStart.Format("2006-01-02"),
			strconv.Itoa(f.WeekNumber), strconv.Itoa(f.Year), strconv.Itoa(f.Month), strconv.Itoa(f.Quarter),
			formatFloat(f.ConsumptionQty), formatFloat(f.Lag1), formatFloat(f.Rolling4),
		})
	}
	return t
}

// OutlookTable lays out forecast predictions
func OutlookTable(rows []entities.ForecastOutlook) Table {
	t := Table{Name: "outlook", Header: []string{
		"Material", "Plant", "Week", "ForecastQty",
		"Predicted_ConsumptionQty", "Predicted_Gap", "Predicted_GapPercent", "RiskExplanation",
	}}
	for _, o := range rows {
		t.Rows = append(t.Rows, []string{
			o.Material, o.Plant, o.Week, formatFloat(o.ForecastQty),
			formatFloat(o.Prediction.ConsumptionQty), formatFloat(o.Prediction.Gap),
			formatFloat(o.Prediction.GapPercent), o.RiskExplanation,
		})
	}
	return t
}

// MappingTable lays out mapping rows under the resolved columns
func MappingTable(columns []string, rows []entities.OEMMappingRow) Table {
	t := Table{Name: "mapping", Header: columns}
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			switch col {
			case entities.ColMaterial:
				record[i] = row.Material
			case entities.ColPlant:
				record[i] = row.Plant
			case entities.ColBusinessUnit:
				record[i] = row.BusinessUnit
			case entities.ColProject:
				record[i] = row.Project
			default:
				record[i] = row.Details[col]
			}
		}
		t.Rows = append(t.Rows, record)
	}
	return t
}

// HistoryTable lays out run records
func HistoryTable(runs []*entities.RunRecord) Table {
	t := Table{Name: "runs", Header: []string{
		"id", "started_at", "status", "forecast_extracts", "consumption_extracts",
		"forecast_rows", "merged_rows", "issues", "error",
	}}
	for _, r := range runs {
		t.Rows = append(t.Rows, []string{
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), string(r.Status),
			strconv.Itoa(r.ForecastExtracts), strconv.Itoa(r.ConsumptionExtracts),
			strconv.Itoa(r.ForecastRows), strconv.Itoa(r.MergedRows),
			strconv.Itoa(len(r.Issues)), r.Error,
		})
	}
	return t
}

// writeTables saves each table as <name>.csv in the output directory
func writeTables(config Config, tables ...Table) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, t := range tables {
		filename := filepath.Join(config.OutputDir, t.Name+".csv")
		if err := writeCSV(filename, t); err != nil {
			return fmt.Errorf("failed to write %s CSV: %w", t.Name, err)
		}
		if config.Verbose {
			fmt.Fprintf(config.writer(), "💾 %s saved to: %s\n", t.Name, filename)
		}
	}
	return nil
}

func writeCSV(filename string, t Table) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(t.Header); err != nil {
		return err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return err
	}
	return file.Close()
}

// printTable writes a left-aligned table sized to its widest cells
func printTable(w io.Writer, t Table) {
	if len(t.Rows) == 0 {
		return
	}

	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	fmt.Fprintf(w, "%s:\n", t.Name)
	printRow(w, widths, t.Header)
	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}
	printRow(w, widths, rule)
	for _, row := range t.Rows {
		printRow(w, widths, row)
	}
	fmt.Fprintln(w)
}

func printRow(w io.Writer, widths []int, cells []string) {
	parts := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = fmt.Sprintf("%-*s", width, cell)
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, " "), " "))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
