package export

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/annostat/internal/model"
	"github.com/ppiankov/annostat/internal/stats"
)

func fixture() (*model.Corpus, *stats.Summary) {
	governor, dependent := 1, 2
	doc := model.Document{
		ID: "Alandroal_cm_001", Filename: "Alandroal_cm_001.json", Municipality: "Alandroal",
		MeetingType: "cm", Number: "001", Digest: "abc", TextLength: 30, TokenCount: 5,
		Entities: []model.Entity{
			{DocumentID: "Alandroal_cm_001", Municipality: "Alandroal", ID: 1, Type: "Votação", Text: "Votação",
				Validation: model.ValidationValidated, Features: map[string]string{model.FeaturePosicionamento: "Votação"}},
			{DocumentID: "Alandroal_cm_001", Municipality: "Alandroal", ID: 2, Type: "Posicionamento", Text: "a favor",
				Validation: model.ValidationUnset},
			{DocumentID: "Alandroal_cm_001", Municipality: "Alandroal", ID: 3, Type: "", Validation: model.ValidationUnset, Malformed: true},
		},
		Relations: []model.Relation{
			{DocumentID: "Alandroal_cm_001", Municipality: "Alandroal", ID: 4, Type: "posicionamento",
				Source: &governor, Target: &dependent, SourceRef: 1, TargetRef: 2, Posicionamento: "a favor"},
			{DocumentID: "Alandroal_cm_001", Municipality: "Alandroal", ID: 5, Type: "resultado",
				Source: &governor, SourceRef: 1, TargetRef: 40},
		},
	}

	corpus := &model.Corpus{Report: model.LoadReport{
		RunID: "run-1", Directory: "data", StartedAt: time.Now().UTC(), FinishedAt: time.Now().UTC(),
		FilesFound: 2, FilesLoaded: 1,
	}}
	corpus.Append(doc)
	corpus.Report.Add(model.NewIssue(model.IssueInvalidFormat, "broken.json", "bad"))
	issue := model.NewIssue(model.IssueUnresolvedRelation, "Alandroal_cm_001.json", "relation 5 references unknown dependent 40")
	issue.DocumentID = doc.ID
	issue.RelationID = 5
	corpus.Report.Add(issue)

	return corpus, stats.NewAggregator(10).Aggregate(corpus)
}

func count(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestSQLite_Export(t *testing.T) {
	corpus, summary := fixture()
	path := filepath.Join(t.TempDir(), "out", "corpus.db")

	require.NoError(t, NewSQLite(path).Export(context.Background(), corpus, summary))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM runs"))
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM documents"))
	assert.Equal(t, 3, count(t, db, "SELECT COUNT(*) FROM entities"))
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM entities WHERE type = ''"))
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM entities WHERE malformed = 1"))
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM entity_features WHERE key = ?", model.FeaturePosicionamento))
	assert.Equal(t, 2, count(t, db, "SELECT COUNT(*) FROM relations"))
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM relations WHERE target_id IS NULL"))
	assert.Equal(t, 2, count(t, db, "SELECT COUNT(*) FROM issues"))
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM issues WHERE fatal = 1"))
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM issues WHERE entity_id IS NULL AND relation_id = 5"))
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM voting"))

	var meetingType string
	require.NoError(t, db.QueryRow("SELECT meeting_type FROM documents").Scan(&meetingType))
	assert.Equal(t, "cm", meetingType)
}

func TestSQLite_ExportReplacesPreviousRun(t *testing.T) {
	corpus, summary := fixture()
	path := filepath.Join(t.TempDir(), "corpus.db")
	exporter := NewSQLite(path)

	require.NoError(t, exporter.Export(context.Background(), corpus, summary))
	require.NoError(t, exporter.Export(context.Background(), corpus, summary))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM runs"))
	assert.Equal(t, 3, count(t, db, "SELECT COUNT(*) FROM entities"))
}

func TestSQLite_ExportBadPath(t *testing.T) {
	corpus, summary := fixture()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := NewSQLite(filepath.Join(blocker, "corpus.db")).Export(context.Background(), corpus, summary)
	assert.Error(t, err)
}
