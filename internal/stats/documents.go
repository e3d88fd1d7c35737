package stats

import (
	"sort"

	"github.com/ppiankov/annostat/internal/model"
)

// DocumentStats is one row of the per-document table
type DocumentStats struct {
	ID           string `json:"id" yaml:"id"`
	Filename     string `json:"filename" yaml:"filename"`
	Municipality string `json:"municipality" yaml:"municipality"`
	MeetingType  string `json:"meeting_type,omitempty" yaml:"meeting_type,omitempty"`
	Number       string `json:"number,omitempty" yaml:"number,omitempty"`
	Date         string `json:"date,omitempty" yaml:"date,omitempty"`
	TextLength   int    `json:"text_length" yaml:"text_length"`
	TokenCount   int    `json:"token_count" yaml:"token_count"`
	Entities     int    `json:"entities" yaml:"entities"`
	Relations    int    `json:"relations" yaml:"relations"`
	Sections     int    `json:"sections" yaml:"sections"`
	EntityTypes  int    `json:"entity_types" yaml:"entity_types"` // Distinct named types
	Validated    int    `json:"validated" yaml:"validated"`
	Issues       int    `json:"issues" yaml:"issues"`
}

// Documents builds the per-document table in corpus order
func Documents(corpus *model.Corpus) []DocumentStats {
	issues := make(map[string]int)
	for _, issue := range corpus.Report.Issues {
		if issue.DocumentID != "" {
			issues[issue.DocumentID]++
		}
	}

	out := make([]DocumentStats, 0, len(corpus.Documents))
	for _, d := range corpus.Documents {
		types := make(map[string]bool)
		validated := 0
		for _, e := range d.Entities {
			if e.Type != "" {
				types[e.Type] = true
			}
			if e.Validated() {
				validated++
			}
		}

		out = append(out, DocumentStats{
			ID:           d.ID,
			Filename:     d.Filename,
			Municipality: d.Municipality,
			MeetingType:  d.MeetingType,
			Number:       d.Number,
			Date:         d.Date,
			TextLength:   d.TextLength,
			TokenCount:   d.TokenCount,
			Entities:     len(d.Entities),
			Relations:    len(d.Relations),
			Sections:     len(d.Sections),
			EntityTypes:  len(types),
			Validated:    validated,
			Issues:       issues[d.ID],
		})
	}
	return out
}

// Overview is the headline numbers of a run
type Overview struct {
	RunID                string   `json:"run_id" yaml:"run_id"`
	FilesFound           int      `json:"files_found" yaml:"files_found"`
	FilesFailed          int      `json:"files_failed" yaml:"files_failed"`
	Documents            int      `json:"documents" yaml:"documents"`
	Municipalities       []string `json:"municipalities" yaml:"municipalities"` // Sorted by name
	Entities             int      `json:"entities" yaml:"entities"`
	EntityTypes          int      `json:"entity_types" yaml:"entity_types"`
	EmptyTypeEntities    int      `json:"empty_type_entities" yaml:"empty_type_entities"`
	ValidatedEntities    int      `json:"validated_entities" yaml:"validated_entities"`
	Relations            int      `json:"relations" yaml:"relations"`
	Sections             int      `json:"sections" yaml:"sections"`
	TotalTextLength      int      `json:"total_text_length" yaml:"total_text_length"`
	TotalTokens          int      `json:"total_tokens" yaml:"total_tokens"`
	EntitiesPerDocument  float64  `json:"entities_per_document" yaml:"entities_per_document"`
	RelationsPerDocument float64  `json:"relations_per_document" yaml:"relations_per_document"`
	EarliestDate         string   `json:"earliest_date,omitempty" yaml:"earliest_date,omitempty"`
	LatestDate           string   `json:"latest_date,omitempty" yaml:"latest_date,omitempty"`
}

// Summarize computes the corpus overview. Dates are ISO strings, so the range is a lexical min/max.
func Summarize(corpus *model.Corpus) Overview {
	o := Overview{
		RunID:             corpus.Report.RunID,
		FilesFound:        corpus.Report.FilesFound,
		FilesFailed:       len(corpus.Report.Failures),
		Documents:         len(corpus.Documents),
		Entities:          len(corpus.Entities),
		EntityTypes:       len(ByEntityType(corpus.Entities)),
		EmptyTypeEntities: EmptyTypeCount(corpus.Entities),
		Relations:         len(corpus.Relations),
		Sections:          len(corpus.Sections),
	}

	seen := make(map[string]bool)
	for _, d := range corpus.Documents {
		if !seen[d.Municipality] {
			seen[d.Municipality] = true
			o.Municipalities = append(o.Municipalities, d.Municipality)
		}
		o.TotalTextLength += d.TextLength
		o.TotalTokens += d.TokenCount

		if d.Date == "" {
			continue
		}
		if o.EarliestDate == "" || d.Date < o.EarliestDate {
			o.EarliestDate = d.Date
		}
		if d.Date > o.LatestDate {
			o.LatestDate = d.Date
		}
	}
	sort.Strings(o.Municipalities)

	for _, e := range corpus.Entities {
		if e.Validated() {
			o.ValidatedEntities++
		}
	}
	if o.Documents > 0 {
		o.EntitiesPerDocument = float64(o.Entities) / float64(o.Documents)
		o.RelationsPerDocument = float64(o.Relations) / float64(o.Documents)
	}
	return o
}
