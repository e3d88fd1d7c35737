package stats

import (
	"github.com/ppiankov/annostat/internal/model"
)

// Relation labels carrying voting information
const (
	RelationPosicionamento = "posicionamento"
	RelationResultado      = "resultado"
)

// VotingMarker is the Posicionamento feature value of the entity naming the vote itself
const VotingMarker = "Votação"

// VotingRecord consolidates the position and result recorded for one vote
type VotingRecord struct {
	DocumentID     string `json:"document_id" yaml:"document_id"`
	Municipality   string `json:"municipality" yaml:"municipality"`
	Date           string `json:"date,omitempty" yaml:"date,omitempty"`
	EntityID       int    `json:"entity_id" yaml:"entity_id"`
	Text           string `json:"text" yaml:"text"`
	Posicionamento string `json:"posicionamento,omitempty" yaml:"posicionamento,omitempty"`
	Resultado      string `json:"resultado,omitempty" yaml:"resultado,omitempty"`
	Complete       bool   `json:"complete" yaml:"complete"` // Both a position and a result were found
}

// Voting consolidates posicionamento and resultado relations per (document, voting entity).
// The voting entity is the dependent when its Posicionamento feature is the voting
// marker, otherwise the governor. Relations with an unresolved endpoint are skipped.
// When several relations of the same kind hit one vote, the first value wins.
func Voting(docs []model.Document) []VotingRecord {
	var records []VotingRecord

	for i := range docs {
		doc := &docs[i]
		index := make(map[int]int)

		for _, r := range doc.Relations {
			if r.Type != RelationPosicionamento && r.Type != RelationResultado {
				continue
			}
			if !r.Resolved() {
				continue
			}
			governor, ok := doc.EntityByID(*r.Source)
			if !ok {
				continue
			}
			dependent, ok := doc.EntityByID(*r.Target)
			if !ok {
				continue
			}

			vote := governor
			if dependent.Feature(model.FeaturePosicionamento) == VotingMarker {
				vote = dependent
			}

			at, ok := index[vote.ID]
			if !ok {
				at = len(records)
				index[vote.ID] = at
				records = append(records, VotingRecord{
					DocumentID:   doc.ID,
					Municipality: doc.Municipality,
					Date:         doc.Date,
					EntityID:     vote.ID,
					Text:         vote.Text,
				})
			}

			rec := &records[at]
			switch r.Type {
			case RelationPosicionamento:
				if rec.Posicionamento == "" {
					rec.Posicionamento = r.Posicionamento
				}
			case RelationResultado:
				if rec.Resultado == "" {
					rec.Resultado = r.Resultado
				}
			}
			rec.Complete = rec.Posicionamento != "" && rec.Resultado != ""
		}
	}
	return records
}
