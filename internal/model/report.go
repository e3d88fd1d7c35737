package model

import (
	"sort"
	"time"
)

// Corpus holds everything loaded in one run. It is built once and then only read.
type Corpus struct {
	Documents []Document `json:"documents" yaml:"documents"`
	Entities  []Entity   `json:"entities" yaml:"entities"`   // Unified table across documents, in document order
	Relations []Relation `json:"relations" yaml:"relations"` // Unified table across documents, in document order
	Sections  []Section  `json:"sections" yaml:"sections"`
	Report    LoadReport `json:"report" yaml:"report"`
}

// Append adds a document and its records to the unified tables
func (c *Corpus) Append(doc Document) {
	c.Documents = append(c.Documents, doc)
	c.Entities = append(c.Entities, doc.Entities...)
	c.Relations = append(c.Relations, doc.Relations...)
	c.Sections = append(c.Sections, doc.Sections...)
}

// Document returns the document with the given id
func (c *Corpus) Document(id string) (*Document, bool) {
	for i := range c.Documents {
		if c.Documents[i].ID == id {
			return &c.Documents[i], true
		}
	}
	return nil, false
}

// LoadReport is the human-readable account of a corpus load
type LoadReport struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	Directory   string    `json:"directory" yaml:"directory"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time `json:"finished_at" yaml:"finished_at"`
	FilesFound  int       `json:"files_found" yaml:"files_found"`
	FilesLoaded int       `json:"files_loaded" yaml:"files_loaded"`
	Failures    []Issue   `json:"failures" yaml:"failures"` // Files that were skipped
	Issues      []Issue   `json:"issues" yaml:"issues"`     // Non-fatal conditions in loaded files
}

// Add records an issue in the right bucket
func (r *LoadReport) Add(issue Issue) {
	if issue.Kind.Fatal() {
		r.Failures = append(r.Failures, issue)
		return
	}
	r.Issues = append(r.Issues, issue)
}

// FailedFiles returns the names of skipped files, sorted
func (r *LoadReport) FailedFiles() []string {
	files := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		files = append(files, f.File)
	}
	sort.Strings(files)
	return files
}

// CountByKind returns how many failures and issues of each kind were recorded
func (r *LoadReport) CountByKind() map[IssueKind]int {
	counts := make(map[IssueKind]int)
	for _, f := range r.Failures {
		counts[f.Kind]++
	}
	for _, i := range r.Issues {
		counts[i.Kind]++
	}
	return counts
}

// IssuesOfKind returns the non-fatal issues of one kind, in recorded order
func (r *LoadReport) IssuesOfKind(kind IssueKind) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Kind == kind {
			out = append(out, i)
		}
	}
	return out
}
