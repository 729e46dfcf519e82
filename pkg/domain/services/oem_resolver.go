package services

import (
	"strings"

	"github.com/samber/lo"
	"github.com/vsinha/fcrecon/pkg/domain/entities"
)

// Source column names of the OEM/project mapping tables.
const (
	MappingColPlants         = "Plants"
	MappingColMaterialNumber = "Material Number"
	detailSuffix             = "_detail"
	unknownProjectPrefix     = "UNKNOWN"
)

// OEMMappingResolver builds the material to plant/business-unit/project
// lookup from a primary and a detail mapping table
type OEMMappingResolver struct {
	units entities.BusinessUnitMap
}

// NewOEMMappingResolver creates a resolver that derives business units with
// the given plant map
func NewOEMMappingResolver(units entities.BusinessUnitMap) *OEMMappingResolver {
	return &OEMMappingResolver{units: units}
}

// Resolve explodes both tables on their plant lists, joins the detail rows on
// (Material, BusinessUnit), explodes projects, drops UNKNOWN projects and
// removes duplicate rows.
func (r *OEMMappingResolver) Resolve(primary, detail *entities.Table) (*entities.MappingTable, error) {
	primary = renameProjectColumn(normalizeMappingColumns(primary))
	detail = normalizeMappingColumns(detail)

	for _, required := range []string{entities.ColMaterial, MappingColPlants, entities.ColProject} {
		if !primary.HasColumn(required) {
			return nil, &entities.MissingColumnError{Extract: primary.Name, Candidates: []string{required}}
		}
	}
	for _, required := range []string{entities.ColMaterial, MappingColPlants} {
		if !detail.HasColumn(required) {
			return nil, &entities.MissingColumnError{Extract: detail.Name, Candidates: []string{required}}
		}
	}

	left := r.withBusinessUnit(explodePlants(primary))
	right := r.withBusinessUnit(explodePlants(detail))
	joined := leftJoinOnMaterialUnit(left, right)
	exploded := explodeProjects(joined)

	return buildMappingTable(exploded), nil
}

// ExplodeTable applies the plant then project fan-out to a single table. A row
// with k plants and m projects yields up to k*m rows.
func ExplodeTable(table *entities.Table) *entities.Table {
	return explodeProjects(explodePlants(table))
}

func explodePlants(table *entities.Table) *entities.Table {
	return explodeColumn(table, MappingColPlants, "/", func(s string) string {
		return strings.ToUpper(strings.TrimSpace(s))
	})
}

func explodeProjects(table *entities.Table) *entities.Table {
	return explodeColumn(table, entities.ColProject, ";", strings.TrimSpace)
}

// explodeColumn emits one copy of each row per cleaned token of column. Rows
// without a usable token are dropped. Each copy owns its cells.
func explodeColumn(table *entities.Table, column, sep string, clean func(string) string) *entities.Table {
	idx := table.ColumnIndex(column)
	if idx < 0 {
		return table
	}

	out := &entities.Table{Name: table.Name, Columns: table.Columns}
	for _, row := range table.Rows {
		for _, token := range splitTokens(entities.Cell(row, idx), sep, clean) {
			copied := make([]string, len(table.Columns))
			copy(copied, row)
			copied[idx] = token
			out.Rows = append(out.Rows, copied)
		}
	}
	return out
}

func splitTokens(value, sep string, clean func(string) string) []string {
	var tokens []string
	for _, part := range strings.Split(value, sep) {
		token := clean(part)
		switch strings.ToUpper(token) {
		case "", "NAN", "NONE":
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// normalizeMappingColumns accepts Plant and Material Number as aliases of
// Plants and Material
func normalizeMappingColumns(table *entities.Table) *entities.Table {
	renames := map[string]string{}
	if !table.HasColumn(MappingColPlants) && table.HasColumn(entities.ColPlant) {
		renames[entities.ColPlant] = MappingColPlants
	}
	if !table.HasColumn(entities.ColMaterial) && table.HasColumn(MappingColMaterialNumber) {
		renames[MappingColMaterialNumber] = entities.ColMaterial
	}
	if len(renames) == 0 {
		return table
	}
	columns := lo.Map(table.Columns, func(col string, _ int) string {
		if renamed, ok := renames[col]; ok {
			return renamed
		}
		return col
	})
	return &entities.Table{Name: table.Name, Columns: columns, Rows: table.Rows}
}

// renameProjectColumn renames the first column mentioning "project" to Project
func renameProjectColumn(table *entities.Table) *entities.Table {
	if table.HasColumn(entities.ColProject) {
		return table
	}
	columns := append([]string(nil), table.Columns...)
	for i, col := range columns {
		if strings.Contains(strings.ToLower(col), "project") {
			columns[i] = entities.ColProject
			break
		}
	}
	return &entities.Table{Name: table.Name, Columns: columns, Rows: table.Rows}
}

func (r *OEMMappingResolver) withBusinessUnit(table *entities.Table) *entities.Table {
	plantIdx := table.ColumnIndex(MappingColPlants)
	unitIdx := table.ColumnIndex(entities.ColBusinessUnit)

	out := &entities.Table{Name: table.Name, Columns: table.Columns}
	if unitIdx < 0 {
		out.Columns = append(append([]string(nil), table.Columns...), entities.ColBusinessUnit)
		unitIdx = len(out.Columns) - 1
	}
	for _, row := range table.Rows {
		copied := make([]string, len(out.Columns))
		copy(copied, row)
		copied[unitIdx] = r.units.Lookup(entities.Cell(row, plantIdx))
		out.Rows = append(out.Rows, copied)
	}
	return out
}

type joinKey struct {
	material string
	unit     string
}

// leftJoinOnMaterialUnit keeps every left row. Right columns that collide with
// a left column get the _detail suffix; unmatched rows leave them blank.
func leftJoinOnMaterialUnit(left, right *entities.Table) *entities.Table {
	leftMaterial := left.ColumnIndex(entities.ColMaterial)
	leftUnit := left.ColumnIndex(entities.ColBusinessUnit)
	rightMaterial := right.ColumnIndex(entities.ColMaterial)
	rightUnit := right.ColumnIndex(entities.ColBusinessUnit)

	var rightIdx []int
	columns := append([]string(nil), left.Columns...)
	for i, col := range right.Columns {
		if i == rightMaterial || i == rightUnit {
			continue
		}
		if left.HasColumn(col) {
			col += detailSuffix
		}
		rightIdx = append(rightIdx, i)
		columns = append(columns, col)
	}

	index := lo.GroupBy(right.Rows, func(row []string) joinKey {
		return joinKey{material: entities.Cell(row, rightMaterial), unit: entities.Cell(row, rightUnit)}
	})

	out := &entities.Table{Name: left.Name, Columns: columns}
	for _, row := range left.Rows {
		base := make([]string, len(left.Columns))
		copy(base, row)

		key := joinKey{material: entities.Cell(row, leftMaterial), unit: entities.Cell(row, leftUnit)}
		matches := index[key]
		if len(matches) == 0 {
			out.Rows = append(out.Rows, append(base, make([]string, len(rightIdx))...))
			continue
		}
		for _, match := range matches {
			joined := append([]string(nil), base...)
			for _, idx := range rightIdx {
				joined = append(joined, entities.Cell(match, idx))
			}
			out.Rows = append(out.Rows, joined)
		}
	}
	return out
}

func buildMappingTable(table *entities.Table) *entities.MappingTable {
	materialIdx := table.ColumnIndex(entities.ColMaterial)
	plantIdx := table.ColumnIndex(MappingColPlants)
	unitIdx := table.ColumnIndex(entities.ColBusinessUnit)
	projectIdx := table.ColumnIndex(entities.ColProject)

	var detailIdx []int
	result := &entities.MappingTable{
		Columns: []string{entities.ColMaterial, entities.ColPlant, entities.ColBusinessUnit, entities.ColProject},
	}
	for i, col := range table.Columns {
		switch i {
		case materialIdx, plantIdx, unitIdx, projectIdx:
			continue
		}
		detailIdx = append(detailIdx, i)
		result.Columns = append(result.Columns, col)
	}

	seen := make(map[string]bool)
	for _, raw := range table.Rows {
		project := entities.Cell(raw, projectIdx)
		if strings.HasPrefix(project, unknownProjectPrefix) {
			continue
		}

		row := entities.OEMMappingRow{
			Material:     strings.ToUpper(strings.TrimSpace(entities.Cell(raw, materialIdx))),
			Plant:        entities.Cell(raw, plantIdx),
			BusinessUnit: entities.Cell(raw, unitIdx),
			Project:      project,
		}
		fingerprint := []string{row.Material, row.Plant, row.BusinessUnit, row.Project}
		if len(detailIdx) > 0 {
			row.Details = make(map[string]string, len(detailIdx))
			for _, idx := range detailIdx {
				row.Details[table.Columns[idx]] = entities.Cell(raw, idx)
				fingerprint = append(fingerprint, entities.Cell(raw, idx))
			}
		}

		key := strings.Join(fingerprint, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		result.Rows = append(result.Rows, row)
	}
	return result
}
