package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vsinha/fcrecon/pkg/application/dto"
	"github.com/vsinha/fcrecon/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Elapsed   time.Duration
	Out       io.Writer
}

func (c Config) writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Generate writes a reconciliation result in the configured format
func Generate(result *dto.ReconciliationResult, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(result, config)
	case "json":
		return writeJSON(result, "reconciliation.json", config)
	case "csv":
		return writeTables(config, ReconciliationTables(result)...)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// GenerateOutlook writes forecast predictions in the configured format
func GenerateOutlook(result *dto.OutlookResult, config Config) error {
	switch config.Format {
	case "text":
		w := config.writer()
		fmt.Fprintf(w, "🔮 Consumption Outlook\n")
		fmt.Fprintf(w, "======================\n\n")
		fmt.Fprintf(w, "Forecast rows: %d\n", len(result.Outlook))
		fmt.Fprintf(w, "Horizon: %v\n", result.Horizon)
		fmt.Fprintf(w, "Elapsed: %v\n\n", config.Elapsed)
		printTable(w, OutlookTable(result.Outlook))
		printTable(w, WeeklyRiskTable(result.WeeklyRisk))
		printIssues(w, result.Issues)
		return nil
	case "json":
		return writeJSON(result, "outlook.json", config)
	case "csv":
		return writeTables(config, OutlookTable(result.Outlook), WeeklyRiskTable(result.WeeklyRisk))
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// GenerateMapping writes the resolved mapping, or only the rows of material
// when it is set
func GenerateMapping(result *dto.MappingResult, material string, config Config) error {
	rows := result.Mapping.Rows
	if material != "" {
		rows = result.Mapping.Lookup(material)
	}
	table := MappingTable(result.Mapping.Columns, rows)

	switch config.Format {
	case "text":
		w := config.writer()
		fmt.Fprintf(w, "🏭 OEM/Project Mapping\n")
		fmt.Fprintf(w, "======================\n\n")
		fmt.Fprintf(w, "Sources: %v (cached: %t)\n", result.Files, result.Cached)
		fmt.Fprintf(w, "Rows: %d\n", len(rows))
		if material != "" {
			fmt.Fprintf(w, "Projects of %s: %v\n", material, result.Mapping.Projects(material))
		}
		fmt.Fprintln(w)
		printTable(w, table)
		return nil
	case "json":
		return writeJSON(rows, "mapping.json", config)
	case "csv":
		return writeTables(config, table)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// GenerateHistory writes the run history
func GenerateHistory(runs []*entities.RunRecord, config Config) error {
	switch config.Format {
	case "text":
		printTable(config.writer(), HistoryTable(runs))
		return nil
	case "json":
		return writeJSON(runs, "runs.json", config)
	case "csv":
		return writeTables(config, HistoryTable(runs))
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(result *dto.ReconciliationResult, config Config) error {
	w := config.writer()
	fmt.Fprintf(w, "📊 Reconciliation Summary\n")
	fmt.Fprintf(w, "=========================\n\n")

	fmt.Fprintf(w, "Run: %s\n", result.RunID)
	fmt.Fprintf(w, "Forecast rows: %d\n", len(result.Forecast))
	fmt.Fprintf(w, "Consumption rows: %d\n", len(result.Consumption))
	fmt.Fprintf(w, "Merged rows: %d\n", len(result.Merged))
	fmt.Fprintf(w, "Horizon: %v\n", result.Horizon)
	fmt.Fprintf(w, "Elapsed: %v\n\n", config.Elapsed)

	fmt.Fprintf(w, "Total gap: %s\n", formatFloat(result.KPIs.TotalGap))
	fmt.Fprintf(w, "Absolute total gap: %s\n", formatFloat(result.KPIs.AbsTotalGap))
	fmt.Fprintf(w, "Average deviation: %s%%\n", formatFloat(result.KPIs.AverageDeviationPercent))
	if result.WorstPlants != nil {
		fmt.Fprintf(w, "Most over-consumed plant: %s\n", result.WorstPlants.Over)
		fmt.Fprintf(w, "Most under-consumed plant: %s\n", result.WorstPlants.Under)
	}
	fmt.Fprintln(w)

	printTable(w, PlantGapTable(result.PlantGaps))
	printTable(w, WeeklyRiskTable(result.WeeklyRisk))
	if result.Predicted {
		printTable(w, MergedTable("high_risk", result.HighRiskRows(), true))
	}
	printIssues(w, result.Issues)

	if config.OutputDir != "" {
		if err := writeTables(config, ReconciliationTables(result)...); err != nil {
			return err
		}
	}
	return nil
}

func printIssues(w io.Writer, issues []entities.ExtractIssue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(w, "⚠️  Skipped extracts:\n")
	for _, issue := range issues {
		fmt.Fprintf(w, "  %s [%s] %s\n", filepath.Base(issue.Extract), issue.Kind, issue.Message)
	}
	fmt.Fprintln(w)
}

// writeJSON prints v, or saves it under name when an output directory is set
func writeJSON(v interface{}, name string, config Config) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.writer(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, name)
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}
