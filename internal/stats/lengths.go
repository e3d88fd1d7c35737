package stats

import (
	"sort"
	"strings"

	"github.com/ppiankov/annostat/internal/model"
)

// LengthStats describes span sizes of one entity type
type LengthStats struct {
	Type         string  `json:"type" yaml:"type"`
	Count        int     `json:"count" yaml:"count"`
	MeanLength   float64 `json:"mean_length" yaml:"mean_length"`
	MedianLength float64 `json:"median_length" yaml:"median_length"`
	MinLength    int     `json:"min_length" yaml:"min_length"`
	MaxLength    int     `json:"max_length" yaml:"max_length"`
	MeanTokens   float64 `json:"mean_tokens" yaml:"mean_tokens"`
}

// LengthsByType computes span size statistics per named type, in ranked type order.
// Malformed spans have no text and are skipped.
func LengthsByType(entities []model.Entity) []LengthStats {
	lengths := make(map[string][]int)
	tokens := make(map[string]int)
	c := newCounter()
	for _, e := range entities {
		if e.Type == "" || e.Malformed {
			continue
		}
		c.add(e.Type)
		lengths[e.Type] = append(lengths[e.Type], e.Length)
		tokens[e.Type] += e.TokenCount
	}

	var out []LengthStats
	for _, row := range c.ranked() {
		values := lengths[row.Key]
		sort.Ints(values)

		sum := 0
		for _, v := range values {
			sum += v
		}
		out = append(out, LengthStats{
			Type:         row.Key,
			Count:        len(values),
			MeanLength:   float64(sum) / float64(len(values)),
			MedianLength: median(values),
			MinLength:    values[0],
			MaxLength:    values[len(values)-1],
			MeanTokens:   float64(tokens[row.Key]) / float64(len(values)),
		})
	}
	return out
}

// median expects sorted, non-empty input
func median(sorted []int) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

// TypeTexts lists the most frequent surface texts of one entity type
type TypeTexts struct {
	Type  string  `json:"type" yaml:"type"`
	Texts []Count `json:"texts" yaml:"texts"`
}

// TopTexts returns up to n most frequent texts per named type. Texts are
// compared after collapsing whitespace.
func TopTexts(entities []model.Entity, n int) []TypeTexts {
	types := newCounter()
	texts := make(map[string]*counter)
	for _, e := range entities {
		if e.Type == "" || e.Malformed {
			continue
		}
		text := strings.Join(strings.Fields(e.Text), " ")
		if text == "" {
			continue
		}
		types.add(e.Type)
		if texts[e.Type] == nil {
			texts[e.Type] = newCounter()
		}
		texts[e.Type].add(text)
	}

	var out []TypeTexts
	for _, row := range types.ranked() {
		out = append(out, TypeTexts{Type: row.Key, Texts: Top(texts[row.Key].ranked(), n)})
	}
	return out
}
