package stats

import (
	"github.com/ppiankov/annostat/internal/model"
)

// NoLabel is the key used for relations without a type label
const NoLabel = "(none)"

// ByEntityType counts entities per named type. Entities with an empty type are
// not part of any group; EmptyTypeCount reports them.
func ByEntityType(entities []model.Entity) []Count {
	c := newCounter()
	for _, e := range entities {
		if e.Type != "" {
			c.add(e.Type)
		}
	}
	return c.ranked()
}

// EmptyTypeCount counts entities without a type label
func EmptyTypeCount(entities []model.Entity) int {
	n := 0
	for _, e := range entities {
		if e.Type == "" {
			n++
		}
	}
	return n
}

// ByMunicipality counts every entity per municipality, so the counts sum to len(entities)
func ByMunicipality(entities []model.Entity) []Count {
	c := newCounter()
	for _, e := range entities {
		c.add(e.Municipality)
	}
	return c.ranked()
}

// DocumentsByMunicipality counts documents per municipality
func DocumentsByMunicipality(docs []model.Document) []Count {
	c := newCounter()
	for _, d := range docs {
		c.add(d.Municipality)
	}
	return c.ranked()
}

// ByValidation counts entities per validation status in a fixed order
func ByValidation(entities []model.Entity) []Count {
	c := newCounter()
	for _, status := range []model.ValidationStatus{model.ValidationValidated, model.ValidationRejected, model.ValidationUnset} {
		c.addN(string(status), 0)
	}
	for _, e := range entities {
		c.add(string(e.Validation))
	}
	return c.ordered()
}

// RelationTypes counts relations per label
func RelationTypes(relations []model.Relation) []Count {
	c := newCounter()
	for _, r := range relations {
		key := r.Type
		if key == "" {
			key = NoLabel
		}
		c.add(key)
	}
	return c.ranked()
}

// Posicionamento counts the vote positions carried by relations
func Posicionamento(relations []model.Relation) []Count {
	c := newCounter()
	for _, r := range relations {
		if r.Posicionamento != "" {
			c.add(r.Posicionamento)
		}
	}
	return c.ranked()
}

// Resultado counts the vote results carried by relations
func Resultado(relations []model.Relation) []Count {
	c := newCounter()
	for _, r := range relations {
		if r.Resultado != "" {
			c.add(r.Resultado)
		}
	}
	return c.ranked()
}

// ByFeature counts the values of one entity feature, skipping entities without it
func ByFeature(entities []model.Entity, key string) []Count {
	c := newCounter()
	for _, e := range entities {
		if v := e.Feature(key); v != "" {
			c.add(v)
		}
	}
	return c.ranked()
}

// Matrix is a dense row × column count table
type Matrix struct {
	Rows    []string `json:"rows" yaml:"rows"`
	Columns []string `json:"columns" yaml:"columns"`
	Values  [][]int  `json:"values" yaml:"values"` // Values[row][column]
}

// Cell is one non-zero entry of a Matrix
type Cell struct {
	Row    string `json:"row" yaml:"row"`
	Column string `json:"column" yaml:"column"`
	Count  int    `json:"count" yaml:"count"`
}

// Total sums every cell
func (m Matrix) Total() int {
	total := 0
	for _, row := range m.Values {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// Cells returns the non-zero entries row by row
func (m Matrix) Cells() []Cell {
	var cells []Cell
	for i, row := range m.Values {
		for j, v := range row {
			if v > 0 {
				cells = append(cells, Cell{Row: m.Rows[i], Column: m.Columns[j], Count: v})
			}
		}
	}
	return cells
}

// Max returns the largest cell value
func (m Matrix) Max() int {
	highest := 0
	for _, row := range m.Values {
		for _, v := range row {
			highest = max(highest, v)
		}
	}
	return highest
}

// ByMunicipalityType cross-tabulates municipality × named entity type. Rows and
// columns are ranked by their totals; empty-type entities are left out.
func ByMunicipalityType(entities []model.Entity) Matrix {
	x := newCrosstab()
	for _, e := range entities {
		if e.Type != "" {
			x.add(e.Municipality, e.Type)
		}
	}
	return x.matrix()
}

// crosstab tallies (row, column) pairs for a Matrix
type crosstab struct {
	rows  *counter
	cols  *counter
	pairs []Cell
}

func newCrosstab() *crosstab {
	return &crosstab{rows: newCounter(), cols: newCounter()}
}

func (x *crosstab) add(row, col string) {
	x.rows.add(row)
	x.cols.add(col)
	x.pairs = append(x.pairs, Cell{Row: row, Column: col, Count: 1})
}

// matrix ranks rows and columns by their totals, ties in first-seen order
func (x *crosstab) matrix() Matrix {
	m := Matrix{
		Rows:    Keys(x.rows.ranked()),
		Columns: Keys(x.cols.ranked()),
	}
	rowIndex := indexOf(m.Rows)
	colIndex := indexOf(m.Columns)

	m.Values = make([][]int, len(m.Rows))
	for i := range m.Values {
		m.Values[i] = make([]int, len(m.Columns))
	}
	for _, p := range x.pairs {
		m.Values[rowIndex[p.Row]][colIndex[p.Column]] += p.Count
	}
	return m
}

func indexOf(keys []string) map[string]int {
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}
	return index
}
