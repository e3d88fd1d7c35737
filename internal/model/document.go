package model

// Document is one parsed annotation file
type Document struct {
	ID           string `json:"id" yaml:"id"`                                         // File stem, unique within a corpus
	Filename     string `json:"filename" yaml:"filename"`                             // Base name of the source file
	Municipality string `json:"municipality" yaml:"municipality"`                     // Derived from the filename, or the unknown sentinel
	MeetingType  string `json:"meeting_type,omitempty" yaml:"meeting_type,omitempty"` // e.g. "cm" (câmara municipal)
	Number       string `json:"number,omitempty" yaml:"number,omitempty"`             // Meeting sequence number
	Date         string `json:"date,omitempty" yaml:"date,omitempty"`                 // ISO date from the filename
	Text         string `json:"-" yaml:"-"`                                           // Sofa text
	TextLength   int    `json:"text_length" yaml:"text_length"`                       // Characters (runes) in the sofa
	TokenCount   int    `json:"token_count" yaml:"token_count"`                       // Whitespace-delimited tokens in the sofa
	Digest       string `json:"digest" yaml:"digest"`                                 // sha256 of the raw file contents

	Entities  []Entity   `json:"entities" yaml:"entities"`
	Relations []Relation `json:"relations" yaml:"relations"`
	Sections  []Section  `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// EntityByID returns the entity with the given CAS id
func (d *Document) EntityByID(id int) (*Entity, bool) {
	for i := range d.Entities {
		if d.Entities[i].ID == id {
			return &d.Entities[i], true
		}
	}
	return nil, false
}

// Entity is one annotated span
type Entity struct {
	DocumentID   string            `json:"document_id" yaml:"document_id"`
	Municipality string            `json:"municipality" yaml:"municipality"`
	ID           int               `json:"id" yaml:"id"`     // CAS %ID
	Type         string            `json:"type" yaml:"type"` // Category label; empty is a data-quality defect
	Begin        int               `json:"begin" yaml:"begin"`
	End          int               `json:"end" yaml:"end"`
	Validation   ValidationStatus  `json:"validation" yaml:"validation"`
	Text         string            `json:"text" yaml:"text"`
	Length       int               `json:"length" yaml:"length"`           // Characters (runes)
	TokenCount   int               `json:"token_count" yaml:"token_count"` // Whitespace-delimited tokens
	Malformed    bool              `json:"malformed,omitempty" yaml:"malformed,omitempty"`
	Features     map[string]string `json:"features,omitempty" yaml:"features,omitempty"`
}

// Validated reports whether an annotator confirmed the entity
func (e Entity) Validated() bool {
	return e.Validation == ValidationValidated
}

// Feature returns a CAS feature value, or "" when absent
func (e Entity) Feature(key string) string {
	if e.Features == nil {
		return ""
	}
	return e.Features[key]
}

// Feature keys used by the municipal annotation schema. Some keys lost their
// accented characters on export and are spelled the way the files carry them.
const (
	FeatureFronteira      = "Fronteira"
	FeaturePosicionamento = "Posicionamento"
	FeatureTema           = "Tema"
	FeatureResumo         = "Resumo"
	FeatureHorario        = "Horrio"
	FeatureTipoReuniao    = "TipodeReunio"
	FeatureParticipantes  = "Participantes"
	FeaturePresenca       = "Presena"
	FeaturePartido        = "Partido"
)

// ValidationStatus records whether an annotator confirmed a label
type ValidationStatus string

const (
	ValidationValidated ValidationStatus = "validated" // Validated: yes
	ValidationRejected  ValidationStatus = "rejected"  // Validated: no
	ValidationUnset     ValidationStatus = "unset"     // No Validated feature; treated as not validated
)

// Relation is a typed directed link between two entities of the same document
type Relation struct {
	DocumentID     string `json:"document_id" yaml:"document_id"`
	Municipality   string `json:"municipality" yaml:"municipality"`
	ID             int    `json:"id" yaml:"id"`
	Type           string `json:"type" yaml:"type"`
	Begin          int    `json:"begin" yaml:"begin"`
	End            int    `json:"end" yaml:"end"`
	SourceRef      int    `json:"source_ref" yaml:"source_ref"` // Raw @Governor reference
	TargetRef      int    `json:"target_ref" yaml:"target_ref"` // Raw @Dependent reference
	Source         *int   `json:"source" yaml:"source"`         // Resolved entity id, nil when unresolved
	Target         *int   `json:"target" yaml:"target"`         // Resolved entity id, nil when unresolved
	Posicionamento string `json:"posicionamento,omitempty" yaml:"posicionamento,omitempty"`
	Resultado      string `json:"resultado,omitempty" yaml:"resultado,omitempty"`
}

// Resolved reports whether both endpoints point at entities of the document
func (r Relation) Resolved() bool {
	return r.Source != nil && r.Target != nil
}

// Section is the text between a Fronteira Inicial and the next Fronteira Final marker
type Section struct {
	DocumentID   string `json:"document_id" yaml:"document_id"`
	Municipality string `json:"municipality" yaml:"municipality"`
	Number       int    `json:"number" yaml:"number"` // 1-based within the document
	Begin        int    `json:"begin" yaml:"begin"`
	End          int    `json:"end" yaml:"end"`
	Text         string `json:"text" yaml:"text"`
	TokenCount   int    `json:"token_count" yaml:"token_count"`
	Keywords     []int  `json:"keywords,omitempty" yaml:"keywords,omitempty"` // Assunto entities with a Tema inside the section
}
