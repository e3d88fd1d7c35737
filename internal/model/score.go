package model

// Score is the transparent annotation quality breakdown of a corpus
type Score struct {
	Index      int      `json:"index" yaml:"index"`           // Overall quality index (0-100)
	Confidence string   `json:"confidence" yaml:"confidence"` // "low", "medium", "high"
	Signals    []Signal `json:"signals" yaml:"signals"`       // Diagnostic signals with transparent data
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType     `json:"type" yaml:"type"`
	Severity    Severity       `json:"severity" yaml:"severity"`
	Description string         `json:"description" yaml:"description"`
	Data        map[string]any `json:"data,omitempty" yaml:"data,omitempty"` // Inputs and formula behind the points
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalValidationCoverage SignalType = "validation_coverage" // Share of annotator-confirmed entities
	SignalLabelCompleteness  SignalType = "label_completeness"  // Entities carrying a type label
	SignalSpanIntegrity      SignalType = "span_integrity"      // Offsets inside the document text
	SignalRelationIntegrity  SignalType = "relation_integrity"  // Relations with both endpoints resolved
	SignalLoadSuccess        SignalType = "load_success"        // Files parsed out of files found
	SignalUnknownFilenames   SignalType = "unknown_filenames"   // Files outside the naming convention
	SignalDuplicateExports   SignalType = "duplicate_exports"   // Byte-identical files
)
