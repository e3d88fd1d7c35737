package stats

import (
	"sort"

	"github.com/ppiankov/annostat/internal/model"
)

// Temporal groups documents, entities and vote positions by meeting year.
// Documents without a filename date are left out.
type Temporal struct {
	DocumentsByYear      []Count `json:"documents_by_year" yaml:"documents_by_year"`
	EntitiesByYear       Matrix  `json:"entities_by_year" yaml:"entities_by_year"`             // year × entity type
	PosicionamentoByYear Matrix  `json:"posicionamento_by_year" yaml:"posicionamento_by_year"` // year × position
}

// Year returns the year of an ISO date, or "" when the date is missing
func Year(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// ByYear computes the temporal view. Years are listed in ascending order.
func ByYear(docs []model.Document) Temporal {
	years := newCounter()
	entities := newCrosstab()
	positions := newCrosstab()

	for _, d := range docs {
		year := Year(d.Date)
		if year == "" {
			continue
		}
		years.add(year)
		for _, e := range d.Entities {
			if e.Type != "" {
				entities.add(year, e.Type)
			}
		}
		for _, r := range d.Relations {
			if r.Posicionamento != "" {
				positions.add(year, r.Posicionamento)
			}
		}
	}

	byYear := years.ordered()
	sort.SliceStable(byYear, func(i, j int) bool { return byYear[i].Key < byYear[j].Key })

	t := Temporal{
		DocumentsByYear:      byYear,
		EntitiesByYear:       entities.matrix(),
		PosicionamentoByYear: positions.matrix(),
	}
	t.EntitiesByYear.sortRows(Keys(byYear))
	t.PosicionamentoByYear.sortRows(Keys(byYear))
	return t
}

// sortRows reorders rows to follow order; rows missing from order are dropped
func (m *Matrix) sortRows(order []string) {
	index := indexOf(m.Rows)
	rows := make([]string, 0, len(order))
	values := make([][]int, 0, len(order))
	for _, key := range order {
		if i, ok := index[key]; ok {
			rows = append(rows, key)
			values = append(values, m.Values[i])
		}
	}
	m.Rows = rows
	m.Values = values
}

// PosicionamentoByMunicipality cross-tabulates municipality × vote position of relations
func PosicionamentoByMunicipality(relations []model.Relation) Matrix {
	x := newCrosstab()
	for _, r := range relations {
		if r.Posicionamento != "" {
			x.add(r.Municipality, r.Posicionamento)
		}
	}
	return x.matrix()
}

// ResultadoByMunicipality cross-tabulates municipality × vote result of relations
func ResultadoByMunicipality(relations []model.Relation) Matrix {
	x := newCrosstab()
	for _, r := range relations {
		if r.Resultado != "" {
			x.add(r.Municipality, r.Resultado)
		}
	}
	return x.matrix()
}

// PosicionamentoResultado cross-tabulates position × result of complete voting records.
// Positions and results sit on separate relations, so the pairing comes from the
// consolidated vote rather than from a single relation.
func PosicionamentoResultado(records []VotingRecord) Matrix {
	x := newCrosstab()
	for _, v := range records {
		if v.Complete {
			x.add(v.Posicionamento, v.Resultado)
		}
	}
	return x.matrix()
}

// Metadata holds the distributions of the meeting metadata features
type Metadata struct {
	Partido               []Count `json:"partido" yaml:"partido"`
	Presenca              []Count `json:"presenca" yaml:"presenca"`
	TipoReuniao           []Count `json:"tipo_reuniao" yaml:"tipo_reuniao"`
	PartidoByMunicipality Matrix  `json:"partido_by_municipality" yaml:"partido_by_municipality"`
}

// MetadataPatterns counts Partido, Presença and meeting type values
func MetadataPatterns(entities []model.Entity) Metadata {
	parties := newCrosstab()
	for _, e := range entities {
		if p := e.Feature(model.FeaturePartido); p != "" {
			parties.add(e.Municipality, p)
		}
	}
	return Metadata{
		Partido:               ByFeature(entities, model.FeaturePartido),
		Presenca:              ByFeature(entities, model.FeaturePresenca),
		TipoReuniao:           ByFeature(entities, model.FeatureTipoReuniao),
		PartidoByMunicipality: parties.matrix(),
	}
}

// Density is the annotation density of one municipality
type Density struct {
	Municipality        string  `json:"municipality" yaml:"municipality"`
	Documents           int     `json:"documents" yaml:"documents"`
	Entities            int     `json:"entities" yaml:"entities"`
	Tokens              int     `json:"tokens" yaml:"tokens"`
	EntitiesPerDocument float64 `json:"entities_per_document" yaml:"entities_per_document"`
	EntitiesPer1kTokens float64 `json:"entities_per_1k_tokens" yaml:"entities_per_1k_tokens"`
}

// Densities computes entities per document and per thousand tokens for each
// municipality, in the order of DocumentsByMunicipality
func Densities(docs []model.Document) []Density {
	var out []Density
	index := make(map[string]int)
	for _, d := range docs {
		at, ok := index[d.Municipality]
		if !ok {
			at = len(out)
			index[d.Municipality] = at
			out = append(out, Density{Municipality: d.Municipality})
		}
		out[at].Documents++
		out[at].Entities += len(d.Entities)
		out[at].Tokens += d.TokenCount
	}

	ranked := make([]Density, 0, len(out))
	for _, c := range DocumentsByMunicipality(docs) {
		density := out[index[c.Key]]
		density.EntitiesPerDocument = float64(density.Entities) / float64(density.Documents)
		if density.Tokens > 0 {
			density.EntitiesPer1kTokens = float64(density.Entities) * 1000 / float64(density.Tokens)
		}
		ranked = append(ranked, density)
	}
	return ranked
}
