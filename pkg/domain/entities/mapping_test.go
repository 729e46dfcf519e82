package entities

import (
	"reflect"
	"testing"
)

func TestBusinessUnitMap_Lookup(t *testing.T) {
	units := DefaultBusinessUnits()

	testCases := []struct {
		plant string
		want  string
	}{
		{"YMO", "MA10"},
		{"YMM", "MA13"},
		{"YMM2", "MA15"},
		{"YMK", "MA11"},
		{"YMOK", "MA14"},
		{"ZZZ", "ZZZ"},
		{"", ""},
	}

	for _, tc := range testCases {
		if got := units.Lookup(tc.plant); got != tc.want {
			t.Errorf("Lookup(%q): expected %q, got %q", tc.plant, tc.want, got)
		}
	}
}

func TestBusinessUnitMap_Resolve(t *testing.T) {
	units := DefaultBusinessUnits()

	if got := units.Resolve("YMO/YMM"); got != "MA10/MA13" {
		t.Errorf("Expected MA10/MA13, got %s", got)
	}
	if got := units.Resolve(" ymk "); got != "MA11" {
		t.Errorf("Expected MA11, got %s", got)
	}
	if got := units.Resolve("YMO / QQQ"); got != "MA10/QQQ" {
		t.Errorf("Expected MA10/QQQ, got %s", got)
	}
}

func TestNewBusinessUnitMap_Copies(t *testing.T) {
	source := map[string]string{"abc": "MA99"}
	units := NewBusinessUnitMap(source)
	source["ABC"] = "changed"

	if got := units.Lookup("ABC"); got != "MA99" {
		t.Errorf("Expected MA99, got %s", got)
	}
	if units.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", units.Len())
	}
}

func TestMappingTable_Projects(t *testing.T) {
	table := &MappingTable{
		Rows: []OEMMappingRow{
			{Material: "M1", Plant: "YMO", BusinessUnit: "MA10", Project: "P2"},
			{Material: "M1", Plant: "YMM", BusinessUnit: "MA13", Project: "P1"},
			{Material: "M1", Plant: "YMM", BusinessUnit: "MA13", Project: "P2"},
			{Material: "M2", Plant: "YMO", BusinessUnit: "MA10", Project: "P3"},
		},
	}

	if got := table.Projects(" m1 "); !reflect.DeepEqual(got, []string{"P1", "P2"}) {
		t.Errorf("Expected [P1 P2], got %v", got)
	}
	if got := table.Lookup("M3"); len(got) != 0 {
		t.Errorf("Expected no rows for unknown material, got %d", len(got))
	}
}

func TestNewPrediction(t *testing.T) {
	p := NewPrediction(1000, 400)
	if p.Gap != 600 || p.GapPercent != 60 {
		t.Errorf("Expected gap 600 / 60%%, got %v / %v", p.Gap, p.GapPercent)
	}

	p = NewPrediction(0, 50)
	if p.GapPercent != 0 {
		t.Errorf("Expected 0%% gap for zero forecast, got %v", p.GapPercent)
	}
}

func TestNewExtractIssue(t *testing.T) {
	_, _, err := ParseWeekToken("forecast.xlsx")
	if issue := NewExtractIssue("forecast.xlsx", err); issue.Kind != IssueUnparsableWeek {
		t.Errorf("Expected %s, got %s", IssueUnparsableWeek, issue.Kind)
	}

	err = &MissingColumnError{Extract: "usage.csv", Candidates: []string{"Usage"}}
	if issue := NewExtractIssue("usage.csv", err); issue.Kind != IssueMissingColumn {
		t.Errorf("Expected %s, got %s", IssueMissingColumn, issue.Kind)
	}
}
