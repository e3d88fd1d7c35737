package stats

import (
	"github.com/ppiankov/annostat/internal/model"
)

// SectionStats summarises the subject sections of the corpus
type SectionStats struct {
	Sections     int     `json:"sections" yaml:"sections"`
	Documents    int     `json:"documents" yaml:"documents"` // Documents with at least one section
	MeanTokens   float64 `json:"mean_tokens" yaml:"mean_tokens"`
	MinTokens    int     `json:"min_tokens" yaml:"min_tokens"`
	MaxTokens    int     `json:"max_tokens" yaml:"max_tokens"`
	WithKeywords int     `json:"with_keywords" yaml:"with_keywords"` // Sections containing a Tema-tagged Assunto
	Temas        []Count `json:"temas" yaml:"temas"`
}

// Sections summarises section sizes and the Tema values of their keyword entities
func Sections(docs []model.Document) SectionStats {
	var s SectionStats
	temas := newCounter()
	tokens := 0

	for i := range docs {
		doc := &docs[i]
		if len(doc.Sections) > 0 {
			s.Documents++
		}
		for _, section := range doc.Sections {
			if s.Sections == 0 || section.TokenCount < s.MinTokens {
				s.MinTokens = section.TokenCount
			}
			s.MaxTokens = max(s.MaxTokens, section.TokenCount)
			s.Sections++
			tokens += section.TokenCount

			if len(section.Keywords) > 0 {
				s.WithKeywords++
			}
			for _, id := range section.Keywords {
				if e, ok := doc.EntityByID(id); ok {
					if tema := e.Feature(model.FeatureTema); tema != "" {
						temas.add(tema)
					}
				}
			}
		}
	}

	if s.Sections > 0 {
		s.MeanTokens = float64(tokens) / float64(s.Sections)
	}
	s.Temas = temas.ranked()
	return s
}
