package stats

import (
	"github.com/ppiankov/annostat/internal/model"
)

// QualityView isolates the records that carry data-quality defects
type QualityView struct {
	EmptyType  []model.Entity   `json:"empty_type" yaml:"empty_type"`
	Malformed  []model.Entity   `json:"malformed" yaml:"malformed"`
	Unresolved []model.Relation `json:"unresolved" yaml:"unresolved"`
	ByKind     []Count          `json:"by_kind" yaml:"by_kind"` // Load report issues and failures per kind
	ByFile     []Count          `json:"by_file" yaml:"by_file"` // Issues and failures per file
}

// issueKinds fixes the row order of the per-kind table
var issueKinds = []model.IssueKind{
	model.IssueInvalidFormat,
	model.IssueMissingSofa,
	model.IssueMalformedSpan,
	model.IssueEmptyType,
	model.IssueUnresolvedRelation,
	model.IssueUnknownMunicipality,
	model.IssueDuplicateContent,
}

// Quality builds the quality-issue view
func Quality(corpus *model.Corpus) QualityView {
	var q QualityView
	for _, e := range corpus.Entities {
		if e.Type == "" {
			q.EmptyType = append(q.EmptyType, e)
		}
		if e.Malformed {
			q.Malformed = append(q.Malformed, e)
		}
	}
	for _, r := range corpus.Relations {
		if !r.Resolved() {
			q.Unresolved = append(q.Unresolved, r)
		}
	}

	counts := corpus.Report.CountByKind()
	kinds := newCounter()
	for _, kind := range issueKinds {
		kinds.addN(string(kind), counts[kind])
	}
	q.ByKind = kinds.ordered()

	files := newCounter()
	for _, f := range corpus.Report.Failures {
		files.add(f.File)
	}
	for _, i := range corpus.Report.Issues {
		files.add(i.File)
	}
	q.ByFile = files.ranked()

	return q
}
