package model

// Issue is a non-fatal condition found while loading the corpus
type Issue struct {
	Kind       IssueKind `json:"kind" yaml:"kind"`
	Severity   Severity  `json:"severity" yaml:"severity"`
	File       string    `json:"file" yaml:"file"`
	DocumentID string    `json:"document_id,omitempty" yaml:"document_id,omitempty"`
	EntityID   int       `json:"entity_id,omitempty" yaml:"entity_id,omitempty"`
	RelationID int       `json:"relation_id,omitempty" yaml:"relation_id,omitempty"`
	Message    string    `json:"message" yaml:"message"`
}

// IssueKind classifies an issue
type IssueKind string

const (
	IssueInvalidFormat       IssueKind = "invalid_format"       // File skipped: not a CAS JSON document
	IssueMissingSofa         IssueKind = "missing_sofa"         // File skipped: no document text
	IssueMalformedSpan       IssueKind = "malformed_span"       // Entity offsets outside the text
	IssueEmptyType           IssueKind = "empty_type"           // Entity without a category label
	IssueUnresolvedRelation  IssueKind = "unresolved_relation"  // Relation endpoint not found
	IssueUnknownMunicipality IssueKind = "unknown_municipality" // Filename did not match the convention
	IssueDuplicateContent    IssueKind = "duplicate_content"    // Same bytes as an earlier file
)

// Fatal reports whether the issue caused the file to be skipped
func (k IssueKind) Fatal() bool {
	return k == IssueInvalidFormat || k == IssueMissingSofa
}

// Severity indicates the importance of an issue
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// SeverityOf returns the default severity for an issue kind
func SeverityOf(kind IssueKind) Severity {
	switch kind {
	case IssueInvalidFormat, IssueMissingSofa:
		return SeverityCritical
	case IssueMalformedSpan, IssueEmptyType, IssueUnresolvedRelation:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// NewIssue builds an issue with the default severity for its kind
func NewIssue(kind IssueKind, file, message string) Issue {
	return Issue{
		Kind:     kind,
		Severity: SeverityOf(kind),
		File:     file,
		Message:  message,
	}
}
