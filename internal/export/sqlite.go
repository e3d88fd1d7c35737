package export

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ppiankov/annostat/internal/model"
	"github.com/ppiankov/annostat/internal/stats"
)

//go:embed schema.sql
var schema string

// SQLite writes the unified tables of one run into a fresh database file
type SQLite struct {
	path string
}

// NewSQLite creates an exporter targeting path
func NewSQLite(path string) *SQLite {
	return &SQLite{path: path}
}

// Path returns the database file path
func (s *SQLite) Path() string {
	return s.path
}

// Export replaces any previous database at the path with the given run
func (s *SQLite) Export(ctx context.Context, corpus *model.Corpus, summary *stats.Summary) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing previous database: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	steps := []struct {
		name string
		fn   func(context.Context, *sql.Tx) error
	}{
		{"run", func(ctx context.Context, tx *sql.Tx) error { return insertRun(ctx, tx, corpus.Report, summary.Score.Index) }},
		{"documents", func(ctx context.Context, tx *sql.Tx) error { return insertDocuments(ctx, tx, corpus.Documents) }},
		{"entities", func(ctx context.Context, tx *sql.Tx) error { return insertEntities(ctx, tx, corpus.Entities) }},
		{"relations", func(ctx context.Context, tx *sql.Tx) error { return insertRelations(ctx, tx, corpus.Relations) }},
		{"issues", func(ctx context.Context, tx *sql.Tx) error { return insertIssues(ctx, tx, corpus.Report) }},
		{"voting", func(ctx context.Context, tx *sql.Tx) error { return insertVoting(ctx, tx, summary.Voting) }},
	}
	for _, step := range steps {
		if err := step.fn(ctx, tx); err != nil {
			return fmt.Errorf("inserting %s: %w", step.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}
	return nil
}

func insertRun(ctx context.Context, tx *sql.Tx, report model.LoadReport, index int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, directory, started_at, finished_at, files_found, files_loaded, quality_index)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.Directory, report.StartedAt, report.FinishedAt,
		report.FilesFound, report.FilesLoaded, index)
	return err
}

func insertDocuments(ctx context.Context, tx *sql.Tx, docs []model.Document) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (document_id, filename, municipality, meeting_type, number, date, text_length, token_count, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx, d.ID, d.Filename, d.Municipality, nullString(d.MeetingType),
			nullString(d.Number), nullString(d.Date), d.TextLength, d.TokenCount, d.Digest); err != nil {
			return fmt.Errorf("document %s: %w", d.ID, err)
		}
	}
	return nil
}

func insertEntities(ctx context.Context, tx *sql.Tx, entities []model.Entity) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entities (document_id, entity_id, municipality, type, begin_offset, end_offset, validation, text, length, token_count, malformed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	features, err := tx.PrepareContext(ctx, `
		INSERT INTO entity_features (document_id, entity_id, key, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer features.Close()

	for _, e := range entities {
		if _, err := stmt.ExecContext(ctx, e.DocumentID, e.ID, e.Municipality, e.Type, e.Begin, e.End,
			string(e.Validation), e.Text, e.Length, e.TokenCount, e.Malformed); err != nil {
			return fmt.Errorf("entity %s/%d: %w", e.DocumentID, e.ID, err)
		}

		keys := make([]string, 0, len(e.Features))
		for k := range e.Features {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := features.ExecContext(ctx, e.DocumentID, e.ID, k, e.Features[k]); err != nil {
				return fmt.Errorf("feature %s of entity %s/%d: %w", k, e.DocumentID, e.ID, err)
			}
		}
	}
	return nil
}

func insertRelations(ctx context.Context, tx *sql.Tx, relations []model.Relation) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO relations (document_id, relation_id, municipality, type, source_id, target_id, source_ref, target_ref, posicionamento, resultado)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range relations {
		if _, err := stmt.ExecContext(ctx, r.DocumentID, r.ID, r.Municipality, r.Type,
			nullInt(r.Source), nullInt(r.Target), r.SourceRef, r.TargetRef,
			nullString(r.Posicionamento), nullString(r.Resultado)); err != nil {
			return fmt.Errorf("relation %s/%d: %w", r.DocumentID, r.ID, err)
		}
	}
	return nil
}

func insertIssues(ctx context.Context, tx *sql.Tx, report model.LoadReport) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO issues (kind, severity, file, document_id, entity_id, relation_id, message, fatal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, group := range [][]model.Issue{report.Failures, report.Issues} {
		for _, i := range group {
			if _, err := stmt.ExecContext(ctx, string(i.Kind), string(i.Severity), i.File, nullString(i.DocumentID),
				nullID(i.EntityID), nullID(i.RelationID), i.Message, i.Kind.Fatal()); err != nil {
				return fmt.Errorf("issue in %s: %w", i.File, err)
			}
		}
	}
	return nil
}

func insertVoting(ctx context.Context, tx *sql.Tx, records []stats.VotingRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO voting (document_id, entity_id, municipality, date, text, posicionamento, resultado, complete)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, v := range records {
		if _, err := stmt.ExecContext(ctx, v.DocumentID, v.EntityID, v.Municipality, nullString(v.Date),
			v.Text, nullString(v.Posicionamento), nullString(v.Resultado), v.Complete); err != nil {
			return fmt.Errorf("vote %s/%d: %w", v.DocumentID, v.EntityID, err)
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// nullID stores the zero id of issues not tied to an entity or relation as NULL
func nullID(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}
