package extract

import (
	"sort"
	"strings"

	"github.com/ppiankov/annostat/internal/model"
)

// Fronteira marker values delimiting a subject discussion
const (
	FronteiraInicial = "Fronteira Inicial"
	FronteiraFinal   = "Fronteira Final"
)

// Sections pairs each Fronteira Inicial marker with the next Fronteira Final marker
// and returns the text between them. Markers without a partner are skipped.
func Sections(text string, entities []model.Entity) []model.Section {
	var markers []model.Entity
	for _, e := range entities {
		if e.Malformed {
			continue
		}
		switch e.Feature(model.FeatureFronteira) {
		case FronteiraInicial, FronteiraFinal:
			markers = append(markers, e)
		}
	}
	sort.SliceStable(markers, func(i, j int) bool { return markers[i].Begin < markers[j].Begin })

	resolver := NewSpanResolver(text)
	var sections []model.Section
	number := 1

	i := 0
	for i < len(markers)-1 {
		if markers[i].Feature(model.FeatureFronteira) != FronteiraInicial {
			i++
			continue
		}

		closing := -1
		for j := i + 1; j < len(markers); j++ {
			if markers[j].Feature(model.FeatureFronteira) == FronteiraFinal {
				closing = j
				break
			}
		}
		if closing < 0 {
			i++
			continue
		}

		begin, end := markers[i].End, markers[closing].Begin
		if begin < end {
			if span, err := resolver.Resolve(begin, end); err == nil {
				body := strings.TrimSpace(span.Text)
				sections = append(sections, model.Section{
					Number:     number,
					Begin:      begin,
					End:        end,
					Text:       body,
					TokenCount: CountTokens(body),
					Keywords:   keywordsWithin(entities, begin, end),
				})
				number++
			}
		}
		i = closing + 1
	}

	return sections
}

// keywordsWithin returns Assunto entities carrying a Tema that lie inside [begin, end)
func keywordsWithin(entities []model.Entity, begin, end int) []int {
	var ids []int
	for _, e := range entities {
		if e.Malformed || e.Type != "Assunto" || e.Feature(model.FeatureTema) == "" {
			continue
		}
		if e.Begin >= begin && e.End <= end {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
