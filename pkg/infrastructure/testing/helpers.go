package testing

import (
	"os"
	"path/filepath"
	"testing"
)

// ForecastW10 is a two-plant forecast extract for week 10 of 2024
const ForecastW10 = `Material,Plant,MRP,WIP,Stock,Safety Stock
M1,YMO,1000,100,100,0
M2,YMO,500,50,20,0
M3,YMM,200,0,0,10
`

// ForecastW11 revises the week 11 forecast for the same materials
const ForecastW11 = `Material,Plant,MRP,WIP,Stock,Safety Stock
M1,YMO,900,100,100,0
M2,YMO,400,50,20,0
M3,YMM,250,0,0,10
`

// Usage is the consumption extract matching ForecastW10 and ForecastW11
const Usage = `Material,Plant,Week,Usage
M1,YMO,W10-24,800
M2,YMO,W10-24,550
M3,YMM,W10-24,200
M1,YMO,W11-24,950
M3,YMM,W11-24,100
`

// WeeklyScenario locates the extracts written by BuildWeeklyScenario
type WeeklyScenario struct {
	Root            string
	ForecastDir     string
	ConsumptionFile string
}

// BuildWeeklyScenario writes two weekly forecast extracts and one
// consumption extract under a temporary directory
func BuildWeeklyScenario(t testing.TB) *WeeklyScenario {
	t.Helper()
	root := t.TempDir()
	s := &WeeklyScenario{
		Root:            root,
		ForecastDir:     filepath.Join(root, "forecast"),
		ConsumptionFile: filepath.Join(root, "usage.csv"),
	}

	WriteFile(t, filepath.Join(s.ForecastDir, "YPPMPL W10-24.csv"), ForecastW10)
	WriteFile(t, filepath.Join(s.ForecastDir, "YPPMPL W11-24.csv"), ForecastW11)
	WriteFile(t, s.ConsumptionFile, Usage)
	return s
}

// WriteFile writes content to path, creating parent directories
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
