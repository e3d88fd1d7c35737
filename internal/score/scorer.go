package score

import (
	"fmt"

	"github.com/ppiankov/annostat/internal/model"
	"github.com/ppiankov/annostat/internal/stats"
)

// Scorer calculates the annotation quality index and generates signals
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate calculates the quality index and generates diagnostic signals
func (s *Scorer) Calculate(corpus *model.Corpus, summary *stats.Summary) model.Score {
	var signals []model.Signal
	overview := summary.Overview

	// 1. Validation coverage (0-40 points)
	validationScore, validationSignal := s.calculateValidation(overview)
	signals = append(signals, validationSignal)

	// 2. Label completeness (0-20 points)
	labelScore, labelSignal := s.calculateLabels(overview)
	signals = append(signals, labelSignal)

	// 3. Span integrity (0-20 points)
	spanScore, spanSignal := s.calculateSpans(overview.Entities, len(summary.Quality.Malformed))
	signals = append(signals, spanSignal)

	// 4. Relation integrity (0-10 points)
	relationScore, relationSignal := s.calculateRelations(overview.Relations, len(summary.Quality.Unresolved))
	signals = append(signals, relationSignal)

	// 5. Load success (0-10 points)
	loadScore, loadSignal := s.calculateLoad(corpus.Report)
	signals = append(signals, loadSignal)

	// 6. Filename and duplicate checks (no points)
	if signal, ok := s.detectUnknownFilenames(corpus.Report, len(corpus.Documents)); ok {
		signals = append(signals, signal)
	}
	if signal, ok := s.detectDuplicates(corpus.Report); ok {
		signals = append(signals, signal)
	}

	total := validationScore + labelScore + spanScore + relationScore + loadScore

	return model.Score{
		Index:      total,
		Confidence: s.determineConfidence(total, overview.Entities),
		Signals:    signals,
	}
}

// calculateValidation scores the share of annotator-confirmed entities (0-40 points)
func (s *Scorer) calculateValidation(o stats.Overview) (int, model.Signal) {
	if o.Entities == 0 {
		return 0, model.Signal{
			Type:        model.SignalValidationCoverage,
			Severity:    model.SeverityCritical,
			Description: "No entities loaded",
			Data:        map[string]any{"entities": 0},
		}
	}

	ratio := float64(o.ValidatedEntities) / float64(o.Entities)
	score := int(ratio * 40)

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 0.8 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalValidationCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("Validated entities: %d/%d (%.0f%%)", o.ValidatedEntities, o.Entities, ratio*100),
		Data: map[string]any{
			"validated": o.ValidatedEntities,
			"entities":  o.Entities,
			"ratio":     ratio,
			"score":     score,
			"formula":   "(validated / entities) * 40",
		},
	}
}

// calculateLabels scores entities carrying a type label (0-20 points)
func (s *Scorer) calculateLabels(o stats.Overview) (int, model.Signal) {
	if o.Entities == 0 {
		return 0, model.Signal{
			Type:        model.SignalLabelCompleteness,
			Severity:    model.SeverityWarning,
			Description: "No entities loaded",
			Data:        map[string]any{"entities": 0},
		}
	}

	ratio := float64(o.Entities-o.EmptyTypeEntities) / float64(o.Entities)
	score := int(ratio * 20)

	severity := model.SeverityInfo
	if ratio < 0.95 {
		severity = model.SeverityCritical
	} else if o.EmptyTypeEntities > 0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalLabelCompleteness,
		Severity:    severity,
		Description: fmt.Sprintf("Entities without a type: %d/%d", o.EmptyTypeEntities, o.Entities),
		Data: map[string]any{
			"empty_type": o.EmptyTypeEntities,
			"entities":   o.Entities,
			"ratio":      ratio,
			"score":      score,
			"formula":    "((entities - empty_type) / entities) * 20",
		},
	}
}

// calculateSpans scores offsets that resolve inside the text (0-20 points)
func (s *Scorer) calculateSpans(entities, malformed int) (int, model.Signal) {
	if entities == 0 {
		return 0, model.Signal{
			Type:        model.SignalSpanIntegrity,
			Severity:    model.SeverityWarning,
			Description: "No entities loaded",
			Data:        map[string]any{"entities": 0},
		}
	}

	ratio := float64(entities-malformed) / float64(entities)
	score := int(ratio * 20)

	severity := model.SeverityInfo
	if malformed > 0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalSpanIntegrity,
		Severity:    severity,
		Description: fmt.Sprintf("Malformed spans: %d/%d", malformed, entities),
		Data: map[string]any{
			"malformed": malformed,
			"entities":  entities,
			"score":     score,
			"formula":   "((entities - malformed) / entities) * 20",
		},
	}
}

// calculateRelations scores relations with both endpoints resolved (0-10 points)
func (s *Scorer) calculateRelations(relations, unresolved int) (int, model.Signal) {
	if relations == 0 {
		return 10, model.Signal{
			Type:        model.SignalRelationIntegrity,
			Severity:    model.SeverityInfo,
			Description: "No relations annotated",
			Data:        map[string]any{"relations": 0, "score": 10},
		}
	}

	ratio := float64(relations-unresolved) / float64(relations)
	score := int(ratio * 10)

	severity := model.SeverityInfo
	if ratio < 0.8 {
		severity = model.SeverityCritical
	} else if unresolved > 0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalRelationIntegrity,
		Severity:    severity,
		Description: fmt.Sprintf("Unresolved relations: %d/%d", unresolved, relations),
		Data: map[string]any{
			"unresolved": unresolved,
			"relations":  relations,
			"ratio":      ratio,
			"score":      score,
			"formula":    "((relations - unresolved) / relations) * 10",
		},
	}
}

// calculateLoad scores files parsed out of files found (0-10 points)
func (s *Scorer) calculateLoad(report model.LoadReport) (int, model.Signal) {
	if report.FilesFound == 0 {
		return 0, model.Signal{
			Type:        model.SignalLoadSuccess,
			Severity:    model.SeverityCritical,
			Description: "No annotation files found",
			Data:        map[string]any{"files_found": 0},
		}
	}

	ratio := float64(report.FilesLoaded) / float64(report.FilesFound)
	score := int(ratio * 10)

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if len(report.Failures) > 0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalLoadSuccess,
		Severity:    severity,
		Description: fmt.Sprintf("Files loaded: %d/%d", report.FilesLoaded, report.FilesFound),
		Data: map[string]any{
			"loaded":  report.FilesLoaded,
			"found":   report.FilesFound,
			"failed":  report.FailedFiles(),
			"score":   score,
			"formula": "(loaded / found) * 10",
		},
	}
}

// detectUnknownFilenames flags documents outside the municipality naming convention
func (s *Scorer) detectUnknownFilenames(report model.LoadReport, documents int) (model.Signal, bool) {
	unknown := report.IssuesOfKind(model.IssueUnknownMunicipality)
	if len(unknown) == 0 {
		return model.Signal{}, false
	}

	files := make([]string, 0, len(unknown))
	for _, issue := range unknown {
		files = append(files, issue.File)
	}

	return model.Signal{
		Type:        model.SignalUnknownFilenames,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d/%d documents have no recognisable municipality", len(unknown), documents),
		Data: map[string]any{
			"files":     files,
			"documents": documents,
		},
	}, true
}

// detectDuplicates flags byte-identical exports, which inflate every count
func (s *Scorer) detectDuplicates(report model.LoadReport) (model.Signal, bool) {
	dups := report.IssuesOfKind(model.IssueDuplicateContent)
	if len(dups) == 0 {
		return model.Signal{}, false
	}

	files := make([]string, 0, len(dups))
	for _, issue := range dups {
		files = append(files, issue.File)
	}

	return model.Signal{
		Type:        model.SignalDuplicateExports,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d files duplicate an earlier export", len(dups)),
		Data:        map[string]any{"files": files},
	}, true
}

// determineConfidence determines the confidence level based on the score
func (s *Scorer) determineConfidence(score int, entities int) string {
	if entities < 10 {
		return "low"
	}

	if score >= 80 {
		return "high"
	} else if score >= 60 {
		return "medium"
	} else {
		return "low"
	}
}

var _ stats.Scorer = (*Scorer)(nil)
