package entities

import (
	"sort"
	"strings"
)

// Column names of the resolved OEM/project mapping table.
const (
	ColBusinessUnit = "BusinessUnit"
	ColProject      = "Project"
)

// OEMMappingRow attributes a material to one plant, business unit and project.
// Details holds every other column of the two source tables.
type OEMMappingRow struct {
	Material     string            `json:"Material"`
	Plant        string            `json:"Plant"`
	BusinessUnit string            `json:"BusinessUnit"`
	Project      string            `json:"Project"`
	Details      map[string]string `json:"Details,omitempty"`
}

// MappingTable is the resolved lookup. It is read-only once built.
type MappingTable struct {
	Columns []string        `json:"columns"`
	Rows    []OEMMappingRow `json:"rows"`
}

// Lookup returns every mapping row for a material, matched on its trimmed
// upper-case form.
func (t *MappingTable) Lookup(material string) []OEMMappingRow {
	key := strings.ToUpper(strings.TrimSpace(material))
	var rows []OEMMappingRow
	for _, row := range t.Rows {
		if row.Material == key {
			rows = append(rows, row)
		}
	}
	return rows
}

// Projects returns the distinct projects of a material in sorted order.
func (t *MappingTable) Projects(material string) []string {
	seen := make(map[string]bool)
	var projects []string
	for _, row := range t.Lookup(material) {
		if !seen[row.Project] {
			seen[row.Project] = true
			projects = append(projects, row.Project)
		}
	}
	sort.Strings(projects)
	return projects
}

// BusinessUnitMap maps plant codes to business-unit codes. The zero value has
// no entries; unknown plants map to themselves.
type BusinessUnitMap struct {
	units map[string]string
}

// DefaultBusinessUnits is the plant to business-unit table used when no
// override is configured.
func DefaultBusinessUnits() BusinessUnitMap {
	return NewBusinessUnitMap(map[string]string{
		"YMO":  "MA10",
		"YMM":  "MA13",
		"YMM2": "MA15",
		"YMK":  "MA11",
		"YMOK": "MA14",
	})
}

// NewBusinessUnitMap copies units so later changes to the argument are not
// observed. Plant keys are stored upper-case.
func NewBusinessUnitMap(units map[string]string) BusinessUnitMap {
	copied := make(map[string]string, len(units))
	for plant, bu := range units {
		copied[strings.ToUpper(strings.TrimSpace(plant))] = bu
	}
	return BusinessUnitMap{units: copied}
}

// Lookup returns the business unit of a single plant code, or the code itself.
func (m BusinessUnitMap) Lookup(plant string) string {
	if bu, ok := m.units[plant]; ok {
		return bu
	}
	return plant
}

// Resolve accepts free-form plant text, including combined codes such as
// "YMO/YMM", and returns "MA10/MA13".
func (m BusinessUnitMap) Resolve(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !strings.Contains(code, "/") {
		return m.Lookup(code)
	}
	parts := strings.Split(code, "/")
	for i, p := range parts {
		parts[i] = m.Lookup(strings.TrimSpace(p))
	}
	return strings.Join(parts, "/")
}

// Len returns the number of configured plants.
func (m BusinessUnitMap) Len() int {
	return len(m.units)
}

// Entries returns a copy of the plant to business-unit table.
func (m BusinessUnitMap) Entries() map[string]string {
	out := make(map[string]string, len(m.units))
	for plant, bu := range m.units {
		out[plant] = bu
	}
	return out
}
