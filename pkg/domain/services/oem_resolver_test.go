package services

import (
	"errors"
	"testing"

	"github.com/vsinha/fcrecon/pkg/domain/entities"
)

func TestExplodeTable_CountConsistent(t *testing.T) {
	table := &entities.Table{
		Columns: []string{"Material", "Plants", "Project"},
		Rows:    [][]string{{"M1", "YMO/YMM", "P1;P2"}},
	}

	exploded := ExplodeTable(table)
	if len(exploded.Rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(exploded.Rows))
	}

	seen := make(map[string]bool)
	for _, row := range exploded.Rows {
		seen[row[1]+"|"+row[2]] = true
		if row[0] != "M1" {
			t.Errorf("Expected material copied to every row, got %s", row[0])
		}
	}
	for _, pair := range []string{"YMO|P1", "YMO|P2", "YMM|P1", "YMM|P2"} {
		if !seen[pair] {
			t.Errorf("Expected pair %s", pair)
		}
	}

	// The source row is untouched
	if table.Rows[0][1] != "YMO/YMM" {
		t.Errorf("Expected source row unchanged, got %s", table.Rows[0][1])
	}
}

func TestExplodeTable_DropsEmptyTokens(t *testing.T) {
	table := &entities.Table{
		Columns: []string{"Material", "Plants", "Project"},
		Rows: [][]string{
			{"M1", " ymo / / nan", "P1; ;None"},
			{"M2", "", "P1"},
			{"M3", "YMK", " ; "},
		},
	}

	exploded := ExplodeTable(table)
	if len(exploded.Rows) != 1 {
		t.Fatalf("Expected 1 row, got %d: %v", len(exploded.Rows), exploded.Rows)
	}
	if exploded.Rows[0][1] != "YMO" || exploded.Rows[0][2] != "P1" {
		t.Errorf("Expected YMO/P1, got %v", exploded.Rows[0])
	}
}

func TestOEMMappingResolver_Resolve(t *testing.T) {
	primary := &entities.Table{
		Name:    "All PNs with project & OEM.xlsx",
		Columns: []string{"Material", "Plants", "Project name"},
		Rows: [][]string{
			{" m1 ", "YMO/YMM", "P1;P2"},
			{"M2", "YMK", "UNKNOWN-7"},
			{"M3", "ZZZ", "P3"},
			{" m1 ", "YMO/YMM", "P1;P2"},
		},
	}
	detail := &entities.Table{
		Name:    "PN with Project & OEM.xlsx",
		Columns: []string{"Material Number", "Plant", "OEM", "Project"},
		Rows: [][]string{
			{" m1 ", "YMO", "OEM-A", "PX"},
		},
	}

	resolver := NewOEMMappingResolver(entities.DefaultBusinessUnits())
	mapping, err := resolver.Resolve(primary, detail)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	wantColumns := []string{"Material", "Plant", "BusinessUnit", "Project", "Plants_detail", "OEM", "Project_detail"}
	if len(mapping.Columns) != len(wantColumns) {
		t.Fatalf("Expected columns %v, got %v", wantColumns, mapping.Columns)
	}
	for i := range wantColumns {
		if mapping.Columns[i] != wantColumns[i] {
			t.Errorf("Expected column %d to be %s, got %s", i, wantColumns[i], mapping.Columns[i])
		}
	}

	// M1: 2 plants x 2 projects, duplicate source row removed; M2 dropped as UNKNOWN
	if len(mapping.Rows) != 5 {
		t.Fatalf("Expected 5 rows, got %d: %+v", len(mapping.Rows), mapping.Rows)
	}

	m1 := mapping.Lookup("M1")
	if len(m1) != 4 {
		t.Fatalf("Expected 4 rows for M1, got %d", len(m1))
	}
	for _, row := range m1 {
		switch row.Plant {
		case "YMO":
			if row.BusinessUnit != "MA10" || row.Details["OEM"] != "OEM-A" {
				t.Errorf("Expected YMO row joined to OEM-A, got %+v", row)
			}
		case "YMM":
			if row.BusinessUnit != "MA13" || row.Details["OEM"] != "" {
				t.Errorf("Expected unmatched YMM row, got %+v", row)
			}
		default:
			t.Errorf("Unexpected plant %s", row.Plant)
		}
	}

	m3 := mapping.Lookup("M3")
	if len(m3) != 1 || m3[0].BusinessUnit != "ZZZ" {
		t.Errorf("Expected identity business unit for ZZZ, got %+v", m3)
	}
	if len(mapping.Lookup("M2")) != 0 {
		t.Error("Expected UNKNOWN projects to be dropped")
	}
}

func TestOEMMappingResolver_MissingColumns(t *testing.T) {
	resolver := NewOEMMappingResolver(entities.DefaultBusinessUnits())
	primary := &entities.Table{Name: "primary.xlsx", Columns: []string{"Material", "Project"}}
	detail := &entities.Table{Name: "detail.xlsx", Columns: []string{"Material", "Plants"}}

	_, err := resolver.Resolve(primary, detail)
	if !errors.Is(err, entities.ErrMissingColumn) {
		t.Errorf("Expected ErrMissingColumn, got %v", err)
	}
}
