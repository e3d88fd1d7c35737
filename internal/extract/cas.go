package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/annostat/internal/model"
)

// CAS type names produced by INCEpTION for the municipal annotation layers
const (
	TypeSofa     = "uima.cas.Sofa"
	TypeSpan     = "custom.Span"
	TypeRelation = "custom.Relation"
)

// Parsed is the content of one CAS JSON document
type Parsed struct {
	Text      string
	Entities  []model.Entity
	Relations []model.Relation
	Sections  []model.Section
	Issues    []model.Issue // Non-fatal conditions; File and DocumentID are left for the caller
}

// Parser extracts entities and relations from UIMA CAS JSON exports
type Parser struct {
	spanType     string
	relationType string
}

// NewParser creates a parser for the default INCEpTION custom layers
func NewParser() *Parser {
	return &Parser{
		spanType:     TypeSpan,
		relationType: TypeRelation,
	}
}

// casDocument is the subset of the CAS JSON layout the parser reads. Views are
// kept raw and only decoded when no typed sofa carries text.
type casDocument struct {
	FeatureStructures []featureStructure `json:"%FEATURE_STRUCTURES"`
	Views             json.RawMessage    `json:"%VIEWS"`
	LegacyViews       json.RawMessage    `json:"views"`
}

// casView is one entry of %VIEWS, pointing at its sofa by id
type casView struct {
	Sofa *int `json:"%SOFA"`
}

// legacyView is the pre-%FEATURE_STRUCTURES layout of older exports
type legacyView struct {
	Sofas []struct {
		SofaString *string `json:"sofaString"`
	} `json:"sofas"`
}

// featureStructure is one entry of %FEATURE_STRUCTURES. Fields are decoded lazily
// through typed accessors because CAS JSON omits features holding default values.
type featureStructure map[string]json.RawMessage

func (fs featureStructure) typeName() string {
	s, _ := fs.str("%TYPE")
	return s
}

// id returns the %ID of the structure; ok is false when it is absent
func (fs featureStructure) id() (int, bool) {
	return fs.int("%ID")
}

// str returns a feature as a string. Non-string scalars are returned as their JSON text.
func (fs featureStructure) str(key string) (string, bool) {
	raw, ok := fs[key]
	if !ok {
		return "", false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return string(raw), true
}

// int returns a numeric feature; absent or non-numeric values report false
func (fs featureStructure) int(key string) (int, bool) {
	raw, ok := fs[key]
	if !ok {
		return 0, false
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		n = json.Number(strings.TrimSpace(s))
	}

	if i, err := n.Int64(); err == nil {
		return int(i), true
	}
	if f, err := n.Float64(); err == nil {
		return int(f), true
	}
	return 0, false
}

// features returns every annotator-facing feature (no %/@ system keys, no offsets or label)
func (fs featureStructure) features() map[string]string {
	out := make(map[string]string)
	for key := range fs {
		if strings.HasPrefix(key, "%") || strings.HasPrefix(key, "@") {
			continue
		}
		switch key {
		case "begin", "end", "label":
			continue
		}
		if v, ok := fs.str(key); ok {
			out[key] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// matchesType accepts both "custom.Span" and namespaced variants like "webanno.custom.Span"
func matchesType(name, want string) bool {
	return name == want || strings.HasSuffix(name, "."+want)
}

// Parse parses one CAS JSON payload
func (p *Parser) Parse(data []byte) (*Parsed, error) {
	var doc casDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	text, err := sofaText(doc)
	if err != nil {
		return nil, err
	}

	result := &Parsed{Text: text}
	resolver := NewSpanResolver(text)

	for _, fs := range doc.FeatureStructures {
		if matchesType(fs.typeName(), p.spanType) {
			entity, issues := parseEntity(fs, resolver)
			result.Entities = append(result.Entities, entity)
			result.Issues = append(result.Issues, issues...)
		}
	}

	// entities without an %ID cannot be the target of a relation
	known := make(map[int]bool, len(result.Entities))
	for _, fs := range doc.FeatureStructures {
		if !matchesType(fs.typeName(), p.spanType) {
			continue
		}
		if id, ok := fs.id(); ok {
			known[id] = true
		}
	}

	for _, fs := range doc.FeatureStructures {
		if matchesType(fs.typeName(), p.relationType) {
			relation, issue := parseRelation(fs, known)
			result.Relations = append(result.Relations, relation)
			if issue != nil {
				result.Issues = append(result.Issues, *issue)
			}
		}
	}

	result.Sections = Sections(text, result.Entities)

	return result, nil
}

// sofaText picks the first sofa with non-blank text, falling back to a blank one.
// Typed sofas are tried first, then the sofas referenced by %VIEWS, then the
// legacy views[].sofas[] layout. A document without any sofaString fails with
// ErrMissingSofa.
func sofaText(doc casDocument) (string, error) {
	var blank *string
	found := func(s string) bool {
		if strings.TrimSpace(s) != "" {
			return true
		}
		if blank == nil {
			blank = &s
		}
		return false
	}

	for _, fs := range doc.FeatureStructures {
		if fs.typeName() != TypeSofa {
			continue
		}
		if s, ok := fs.str("sofaString"); ok && found(s) {
			return s, nil
		}
	}

	if s, ok := viewSofaText(doc, found); ok {
		return s, nil
	}

	var legacy []legacyView
	if len(doc.LegacyViews) > 0 && json.Unmarshal(doc.LegacyViews, &legacy) == nil {
		for _, view := range legacy {
			for _, sofa := range view.Sofas {
				if sofa.SofaString != nil && found(*sofa.SofaString) {
					return *sofa.SofaString, nil
				}
			}
		}
	}

	if blank != nil {
		return *blank, nil
	}
	return "", ErrMissingSofa
}

// viewSofaText follows %VIEWS to sofa structures by id. Views are visited in
// name order so the choice does not depend on map iteration.
func viewSofaText(doc casDocument, found func(string) bool) (string, bool) {
	var views map[string]casView
	if len(doc.Views) == 0 || json.Unmarshal(doc.Views, &views) != nil {
		return "", false
	}

	byID := make(map[int]featureStructure, len(doc.FeatureStructures))
	for _, fs := range doc.FeatureStructures {
		if id, ok := fs.id(); ok {
			byID[id] = fs
		}
	}

	names := make([]string, 0, len(views))
	for name := range views {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		view := views[name]
		if view.Sofa == nil {
			continue
		}
		fs, ok := byID[*view.Sofa]
		if !ok {
			continue
		}
		if s, ok := fs.str("sofaString"); ok && found(s) {
			return s, true
		}
	}
	return "", false
}

func parseEntity(fs featureStructure, resolver *SpanResolver) (model.Entity, []model.Issue) {
	var issues []model.Issue

	begin, _ := fs.int("begin")
	end, _ := fs.int("end")
	label, _ := fs.str("label")

	id, _ := fs.id()
	entity := model.Entity{
		ID:         id,
		Type:       strings.TrimSpace(label),
		Begin:      begin,
		End:        end,
		Validation: validationStatus(fs),
		Features:   fs.features(),
	}

	span, err := resolver.Resolve(begin, end)
	if err != nil {
		entity.Malformed = true
		issue := model.NewIssue(model.IssueMalformedSpan, "", err.Error())
		issue.EntityID = entity.ID
		issues = append(issues, issue)
	} else {
		entity.Text = span.Text
		entity.Length = span.Length
		entity.TokenCount = span.TokenCount
	}

	if entity.Type == "" {
		issue := model.NewIssue(model.IssueEmptyType, "", fmt.Sprintf("entity %d at [%d,%d) has no type label", entity.ID, begin, end))
		issue.EntityID = entity.ID
		issues = append(issues, issue)
	}

	return entity, issues
}

// validationStatus reads the Validated feature; absence means not validated
func validationStatus(fs featureStructure) model.ValidationStatus {
	v, ok := fs.str("Validated")
	if !ok {
		return model.ValidationUnset
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "sim":
		return model.ValidationValidated
	case "no", "false", "não", "nao":
		return model.ValidationRejected
	default:
		return model.ValidationUnset
	}
}

func parseRelation(fs featureStructure, known map[int]bool) (model.Relation, *model.Issue) {
	begin, _ := fs.int("begin")
	end, _ := fs.int("end")
	label, _ := fs.str("label")
	posicionamento, _ := fs.str("posicionamento")
	resultado, _ := fs.str("resultado")
	id, _ := fs.id()

	relation := model.Relation{
		ID:             id,
		Type:           strings.TrimSpace(label),
		Begin:          begin,
		End:            end,
		Posicionamento: posicionamento,
		Resultado:      resultado,
	}

	var missing []string
	relation.SourceRef, relation.Source, missing = endpoint(fs, "@Governor", "governor", known, missing)
	relation.TargetRef, relation.Target, missing = endpoint(fs, "@Dependent", "dependent", known, missing)

	if len(missing) == 0 {
		return relation, nil
	}

	issue := model.NewIssue(model.IssueUnresolvedRelation, "",
		fmt.Sprintf("relation %d has %s", relation.ID, strings.Join(missing, " and ")))
	issue.RelationID = relation.ID
	return relation, &issue
}

// endpoint resolves one relation end. An absent reference is reported as missing
// rather than read as id 0.
func endpoint(fs featureStructure, key, name string, known map[int]bool, missing []string) (int, *int, []string) {
	ref, ok := fs.int(key)
	switch {
	case !ok:
		return 0, nil, append(missing, "no "+name)
	case !known[ref]:
		return ref, nil, append(missing, "unknown "+name+" "+strconv.Itoa(ref))
	default:
		return ref, intPtr(ref), missing
	}
}

func intPtr(v int) *int {
	return &v
}
