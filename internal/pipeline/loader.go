package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ppiankov/annostat/internal/cache"
	"github.com/ppiankov/annostat/internal/extract"
	"github.com/ppiankov/annostat/internal/logger"
	"github.com/ppiankov/annostat/internal/model"
	"github.com/ppiankov/annostat/internal/worker"
)

// Loader discovers annotation files and assembles the corpus
type Loader struct {
	parser         *extract.Parser
	municipalities *extract.MunicipalityExtractor
	parsed         *cache.MemoryCache
	extension      string
	workers        int
	onFile         func(*worker.FileResult)
}

// NewLoader creates a loader from configuration
func NewLoader(cfg *model.Config) *Loader {
	ext := cfg.Input.Extension
	if ext == "" {
		ext = ".json"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return &Loader{
		parser:         extract.NewParser(),
		municipalities: extract.NewMunicipalityExtractor(cfg.Municipality.Unknown),
		parsed:         cache.NewMemoryCache(time.Hour, 10*time.Minute),
		extension:      ext,
		workers:        cfg.Concurrency.Workers,
	}
}

// OnFile registers a callback invoked as each file finishes parsing
func (l *Loader) OnFile(fn func(*worker.FileResult)) {
	l.onFile = fn
}

// Discover lists annotation files directly inside dir, sorted by name
func (l *Loader) Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), l.extension) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// parseEntry memoises the parse of one distinct file content
type parseEntry struct {
	once   sync.Once
	parsed *extract.Parsed
	err    error
}

// ParseFile reads and parses one annotation file into a document tagged with
// its id and municipality. Identical contents are parsed only once per run.
func (l *Loader) ParseFile(ctx context.Context, path string) (*model.Document, []model.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", name, err)
	}

	digest := cache.Digest(data)
	value, _ := l.parsed.Remember(cache.Key(digest), &parseEntry{})
	entry := value.(*parseEntry)
	entry.once.Do(func() {
		entry.parsed, entry.err = l.parser.Parse(data)
	})
	if entry.err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", name, entry.err)
	}

	info := l.municipalities.Extract(name)
	doc := buildDocument(name, digest, info, entry.parsed)

	var issues []model.Issue
	if !info.Known {
		issues = append(issues, model.NewIssue(model.IssueUnknownMunicipality, name,
			fmt.Sprintf("filename does not match the municipality convention; using %q", l.municipalities.Unknown())))
	}
	for _, issue := range entry.parsed.Issues {
		issue.File = name
		issues = append(issues, issue)
	}
	for i := range issues {
		issues[i].DocumentID = doc.ID
	}

	return doc, issues, nil
}

// buildDocument copies the parsed records so documents sharing content never share slices
func buildDocument(name, digest string, info extract.FileInfo, parsed *extract.Parsed) *model.Document {
	doc := &model.Document{
		ID:           extract.Stem(name),
		Filename:     name,
		Municipality: info.Municipality,
		MeetingType:  info.MeetingType,
		Number:       info.Number,
		Date:         info.Date,
		Text:         parsed.Text,
		TextLength:   utf8.RuneCountInString(parsed.Text),
		TokenCount:   extract.CountTokens(parsed.Text),
		Digest:       digest,
		Entities:     make([]model.Entity, len(parsed.Entities)),
		Relations:    make([]model.Relation, len(parsed.Relations)),
		Sections:     make([]model.Section, len(parsed.Sections)),
	}

	for i, e := range parsed.Entities {
		e.DocumentID = doc.ID
		e.Municipality = doc.Municipality
		doc.Entities[i] = e
	}
	for i, r := range parsed.Relations {
		r.DocumentID = doc.ID
		r.Municipality = doc.Municipality
		doc.Relations[i] = r
	}
	for i, s := range parsed.Sections {
		s.DocumentID = doc.ID
		s.Municipality = doc.Municipality
		s.Keywords = append([]int(nil), s.Keywords...)
		doc.Sections[i] = s
	}

	return doc
}

// Load parses every annotation file in dir. Per-file failures are recorded in the
// load report; only a missing directory or zero loaded documents is an error.
// The returned corpus is non-nil whenever the directory could be read.
func (l *Loader) Load(ctx context.Context, dir string) (*model.Corpus, error) {
	corpus := &model.Corpus{
		Report: model.LoadReport{
			RunID:     uuid.New().String(),
			Directory: dir,
			StartedAt: time.Now().UTC(),
		},
	}

	paths, err := l.Discover(dir)
	if err != nil {
		return nil, err
	}
	corpus.Report.FilesFound = len(paths)
	logger.Info("found %d annotation files in %s", len(paths), dir)

	processor := worker.NewBatchProcessor(l, l.workers)
	if l.onFile != nil {
		processor.OnDone(l.onFile)
	}
	results := processor.ProcessFiles(ctx, paths)
	logger.Debug("parsed %d distinct file contents", l.parsed.Len())
	l.parsed.Clear()

	// files never submitted after a cancel are missing from results
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}

	firstByDigest := make(map[string]string)
	for _, result := range results {
		name := filepath.Base(result.Path)
		if result.Error != nil {
			kind := model.IssueInvalidFormat
			if errors.Is(result.Error, extract.ErrMissingSofa) {
				kind = model.IssueMissingSofa
			}
			corpus.Report.Add(model.NewIssue(kind, name, result.Error.Error()))
			logger.Warn("skipped %s: %v", name, result.Error)
			continue
		}

		doc := result.Document
		if _, taken := corpus.Document(doc.ID); taken {
			id := uniqueID(corpus, name)
			logger.Debug("document id %s already used, %s becomes %s", doc.ID, name, id)
			retag(doc, result.Issues, id)
		}
		if first, ok := firstByDigest[doc.Digest]; ok {
			issue := model.NewIssue(model.IssueDuplicateContent, name, "same content as "+first)
			issue.DocumentID = doc.ID
			corpus.Report.Add(issue)
		} else {
			firstByDigest[doc.Digest] = name
		}

		for _, issue := range result.Issues {
			corpus.Report.Add(issue)
		}
		corpus.Append(*doc)
		logger.Debug("loaded %s: %d entities, %d relations", name, len(doc.Entities), len(doc.Relations))
	}

	corpus.Report.FilesLoaded = len(corpus.Documents)
	corpus.Report.FinishedAt = time.Now().UTC()

	if corpus.Report.FilesLoaded == 0 {
		return corpus, fmt.Errorf("%w: %d of %d files in %s could be loaded",
			ErrNoDocuments, 0, corpus.Report.FilesFound, dir)
	}
	return corpus, nil
}

// uniqueID picks an id for a file whose stem collides with an earlier document,
// e.g. Borba_am_001.JSON and Borba_am_001.json. The full filename is tried first.
func uniqueID(corpus *model.Corpus, name string) string {
	id := name
	for n := 2; ; n++ {
		if _, taken := corpus.Document(id); !taken {
			return id
		}
		id = fmt.Sprintf("%s~%d", name, n)
	}
}

// retag moves a document and its records and issues to a new id
func retag(doc *model.Document, issues []model.Issue, id string) {
	doc.ID = id
	for i := range doc.Entities {
		doc.Entities[i].DocumentID = id
	}
	for i := range doc.Relations {
		doc.Relations[i].DocumentID = id
	}
	for i := range doc.Sections {
		doc.Sections[i].DocumentID = id
	}
	for i := range issues {
		issues[i].DocumentID = id
	}
}

var _ worker.FileParser = (*Loader)(nil)
