package stats

import (
	"sort"

	"github.com/ppiankov/annostat/internal/model"
)

// Pair counts the documents in which two entity types both appear
type Pair struct {
	A         string `json:"a" yaml:"a"`
	B         string `json:"b" yaml:"b"`
	Documents int    `json:"documents" yaml:"documents"`
}

// Cooccurrence counts type pairs per document. Within a pair, A precedes B in
// the corpus-wide type ranking; pairs are ranked by document count.
func Cooccurrence(docs []model.Document) []Pair {
	var all []model.Entity
	for _, d := range docs {
		all = append(all, d.Entities...)
	}
	rank := indexOf(Keys(ByEntityType(all)))

	c := newCounter()
	pairs := make(map[string]Pair)
	for _, d := range docs {
		present := make(map[string]bool)
		var types []string
		for _, e := range d.Entities {
			if e.Type != "" && !present[e.Type] {
				present[e.Type] = true
				types = append(types, e.Type)
			}
		}
		sort.Slice(types, func(i, j int) bool { return rank[types[i]] < rank[types[j]] })

		for i := 0; i < len(types); i++ {
			for j := i + 1; j < len(types); j++ {
				key := types[i] + "\x00" + types[j]
				pairs[key] = Pair{A: types[i], B: types[j]}
				c.add(key)
			}
		}
	}

	out := make([]Pair, 0, len(c.keys))
	for _, row := range c.ranked() {
		p := pairs[row.Key]
		p.Documents = row.Count
		out = append(out, p)
	}
	return out
}
