package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vsinha/fcrecon/pkg/domain/services"
	"github.com/vsinha/fcrecon/pkg/infrastructure/config"
	"github.com/vsinha/fcrecon/pkg/interfaces/cli/commands"
)

const appName = "fcrecon"

var errUnknownCommand = errors.New("unknown command")

type executor interface {
	Execute(ctx context.Context) error
}

func main() {
	flag.String("config", "", "Path to YAML settings file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s: forecast vs consumption reconciliation\n\n", appName)
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [command] [flags]\n\n", appName)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  reconcile  Merge forecast extracts with consumption and report deviations")
		fmt.Fprintln(os.Stderr, "  predict    Predict consumption for the forecast horizon")
		fmt.Fprintln(os.Stderr, "  mapping    Resolve the OEM/project mapping")
		fmt.Fprintln(os.Stderr, "  schedule   Re-run the reconciliation on a cron schedule")
		fmt.Fprintln(os.Stderr, "  history    List past reconciliation runs")
		fmt.Fprintln(os.Stderr, "  help       Show this help")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	configPath, args, err := extractConfigFlag(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		flag.Usage()
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	settings, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cmd, err := buildCommand(args[0], args[1:], settings)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUnknownCommand) {
			flag.Usage()
		}
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func extractConfigFlag(args []string) (string, []string, error) {
	var path string
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" || arg == "-config" {
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("--config requires a value")
			}
			path = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--config=") {
			path = strings.TrimPrefix(arg, "--config=")
			continue
		}
		if strings.HasPrefix(arg, "-config=") {
			path = strings.TrimPrefix(arg, "-config=")
			continue
		}
		remaining = append(remaining, arg)
	}
	return path, remaining, nil
}

// buildCommand parses the flags of name and applies them over the loaded
// settings
func buildCommand(name string, args []string, settings *config.Config) (executor, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	forecastDir := fs.String("forecast-dir", settings.Inputs.ForecastDir, "Directory of weekly forecast extracts")
	consumption := fs.String("consumption", strings.Join(settings.Inputs.ConsumptionFiles, ","), "Comma-separated consumption extracts")
	format := fs.String("format", settings.Output.Format, "Output format: text, json, csv")
	outputDir := fs.String("output", settings.Output.Dir, "Output directory for results (optional)")
	verbose := fs.Bool("verbose", false, "Enable verbose output")
	plant := fs.String("plant", "All", "Only report this plant")
	material := fs.String("material", "All", "Only report this material")
	modelFile := fs.String("model", settings.Predictor.ModelFile, "Linear consumption model file (YAML or Hjson)")
	predictURL := fs.String("predict-url", settings.Predictor.URL, "Prediction API endpoint")
	primary := fs.String("primary", settings.Mapping.Primary, "Primary OEM mapping workbook")
	detail := fs.String("detail", settings.Mapping.Detail, "Detailed project mapping workbook")
	cronSpec := fs.String("cron", settings.Schedule.Cron, "Cron expression for scheduled runs")
	timeout := fs.Duration("predict-timeout", settings.Predictor.Timeout, "Prediction API timeout")
	limit := fs.Int("limit", 20, "Number of runs to list")
	runNow := fs.Bool("now", false, "Run once immediately before waiting for the schedule")

	switch name {
	case "reconcile", "predict", "mapping", "schedule", "history":
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownCommand, name)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	settings.Inputs.ForecastDir = *forecastDir
	if *consumption != "" {
		settings.Inputs.ConsumptionFiles = strings.Split(*consumption, ",")
	}
	settings.Output.Format = *format
	settings.Output.Dir = *outputDir
	settings.Predictor.ModelFile = *modelFile
	settings.Predictor.URL = *predictURL
	settings.Predictor.Timeout = *timeout
	settings.Mapping.Primary = *primary
	settings.Mapping.Detail = *detail
	settings.Schedule.Cron = *cronSpec
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	cfg := commands.Config{
		Settings: settings,
		Filter:   services.MergedFilter{Plant: *plant, Material: *material},
		Limit:    *limit,
		Verbose:  *verbose,
	}
	if *material != "All" {
		cfg.Material = *material
	}

	switch name {
	case "reconcile":
		return commands.NewReconcileCommand(cfg), nil
	case "predict":
		return commands.NewPredictCommand(cfg), nil
	case "mapping":
		return commands.NewMappingCommand(cfg), nil
	case "schedule":
		return commands.NewScheduleCommand(cfg, *runNow), nil
	default:
		return commands.NewHistoryCommand(cfg), nil
	}
}
