package score

import (
	"testing"

	"github.com/ppiankov/annostat/internal/model"
	"github.com/ppiankov/annostat/internal/stats"
)

func buildCorpus(entities int, validated int, emptyType int, relations int, unresolved int) *model.Corpus {
	doc := model.Document{ID: "Alandroal_cm_001", Municipality: "Alandroal"}
	for i := 0; i < entities; i++ {
		e := model.Entity{ID: i + 1, Type: "Assunto", Validation: model.ValidationUnset}
		if i < validated {
			e.Validation = model.ValidationValidated
		}
		if i < emptyType {
			e.Type = ""
		}
		doc.Entities = append(doc.Entities, e)
	}
	for i := 0; i < relations; i++ {
		source, target := 1, 2
		r := model.Relation{ID: 1000 + i, Type: "resultado", Source: &source, Target: &target}
		if i < unresolved {
			r.Target = nil
		}
		doc.Relations = append(doc.Relations, r)
	}

	corpus := &model.Corpus{Report: model.LoadReport{FilesFound: 1, FilesLoaded: 1}}
	corpus.Append(doc)
	return corpus
}

func calculate(corpus *model.Corpus) model.Score {
	summary := stats.NewAggregator(10).Aggregate(corpus)
	return NewScorer().Calculate(corpus, summary)
}

func findSignal(score model.Score, typ model.SignalType) (model.Signal, bool) {
	for _, s := range score.Signals {
		if s.Type == typ {
			return s, true
		}
	}
	return model.Signal{}, false
}

func TestScorer_Calculate_PerfectCorpus(t *testing.T) {
	result := calculate(buildCorpus(20, 20, 0, 5, 0))

	if result.Index != 100 {
		t.Errorf("Expected index 100 for a fully validated corpus, got %d", result.Index)
	}
	if result.Confidence != "high" {
		t.Errorf("Expected high confidence, got %s", result.Confidence)
	}
	for _, s := range result.Signals {
		if s.Severity != model.SeverityInfo {
			t.Errorf("Expected only info signals, got %s for %s", s.Severity, s.Type)
		}
	}
}

func TestScorer_Calculate_EmptyCorpus(t *testing.T) {
	corpus := &model.Corpus{}
	result := calculate(corpus)

	// Should not panic and should return valid result
	if result.Index < 0 || result.Index > 100 {
		t.Errorf("Expected index between 0 and 100 for empty input, got %d", result.Index)
	}
	if result.Confidence != "low" {
		t.Errorf("Expected low confidence for empty input, got %s", result.Confidence)
	}

	signal, ok := findSignal(result, model.SignalValidationCoverage)
	if !ok || signal.Severity != model.SeverityCritical {
		t.Error("Expected critical validation coverage signal for empty input")
	}
}

func TestScorer_Calculate_UnvalidatedCorpus(t *testing.T) {
	// 20 entities, none validated: validation coverage contributes nothing
	result := calculate(buildCorpus(20, 0, 0, 0, 0))

	if result.Index != 60 {
		t.Errorf("Expected index 60 (20 labels + 20 spans + 10 relations + 10 load), got %d", result.Index)
	}
	if result.Confidence != "medium" {
		t.Errorf("Expected medium confidence, got %s", result.Confidence)
	}
}

func TestScorer_Calculate_EmptyTypes(t *testing.T) {
	result := calculate(buildCorpus(20, 20, 2, 0, 0))

	signal, ok := findSignal(result, model.SignalLabelCompleteness)
	if !ok {
		t.Fatal("Expected label completeness signal")
	}
	if signal.Severity != model.SeverityCritical {
		t.Errorf("Expected critical severity for 10%% empty types, got %s", signal.Severity)
	}
	if signal.Data["empty_type"] != 2 {
		t.Errorf("Expected empty_type=2 in signal data, got %v", signal.Data["empty_type"])
	}
}

func TestScorer_Calculate_UnresolvedRelations(t *testing.T) {
	result := calculate(buildCorpus(20, 20, 0, 10, 5))

	signal, ok := findSignal(result, model.SignalRelationIntegrity)
	if !ok {
		t.Fatal("Expected relation integrity signal")
	}
	if signal.Data["score"] != 5 {
		t.Errorf("Expected 5 relation points for 50%% resolved, got %v", signal.Data["score"])
	}
	if result.Index != 95 {
		t.Errorf("Expected index 95, got %d", result.Index)
	}
}

func TestScorer_Calculate_LoadFailures(t *testing.T) {
	corpus := buildCorpus(20, 20, 0, 0, 0)
	corpus.Report.FilesFound = 4
	corpus.Report.Add(model.NewIssue(model.IssueInvalidFormat, "a.json", "bad"))
	corpus.Report.Add(model.NewIssue(model.IssueMissingSofa, "b.json", "no sofa"))
	corpus.Report.Add(model.NewIssue(model.IssueInvalidFormat, "c.json", "bad"))

	result := calculate(corpus)
	signal, ok := findSignal(result, model.SignalLoadSuccess)
	if !ok {
		t.Fatal("Expected load success signal")
	}
	if signal.Severity != model.SeverityCritical {
		t.Errorf("Expected critical load signal for 1/4 loaded, got %s", signal.Severity)
	}
	if result.Index != 92 {
		t.Errorf("Expected index 92 (2 load points), got %d", result.Index)
	}
}

func TestScorer_Calculate_FilenameSignals(t *testing.T) {
	corpus := buildCorpus(20, 20, 0, 0, 0)
	corpus.Report.Add(model.NewIssue(model.IssueUnknownMunicipality, "notes.json", "unknown"))
	corpus.Report.Add(model.NewIssue(model.IssueDuplicateContent, "copy.json", "same content"))

	result := calculate(corpus)
	if _, ok := findSignal(result, model.SignalUnknownFilenames); !ok {
		t.Error("Expected unknown filenames signal")
	}
	if _, ok := findSignal(result, model.SignalDuplicateExports); !ok {
		t.Error("Expected duplicate exports signal")
	}
	if result.Index != 100 {
		t.Errorf("Expected filename signals to cost no points, got %d", result.Index)
	}
}
