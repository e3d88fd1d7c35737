package worker

import (
	"context"
	"sort"

	"github.com/ppiankov/annostat/internal/logger"
	"github.com/ppiankov/annostat/internal/model"
)

// FileParser turns one annotation file into a document
type FileParser interface {
	ParseFile(ctx context.Context, path string) (*model.Document, []model.Issue, error)
}

// ParseJob parses one file
type ParseJob struct {
	Index  int
	Path   string
	Parser FileParser
}

// Execute runs the parse
func (j *ParseJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &FileResult{Index: j.Index, Path: j.Path, Error: err}
	}
	doc, issues, err := j.Parser.ParseFile(ctx, j.Path)
	return &FileResult{
		Index:    j.Index,
		Path:     j.Path,
		Document: doc,
		Issues:   issues,
		Error:    err,
	}
}

// FileResult is the outcome of one ParseJob
type FileResult struct {
	Index    int
	Path     string
	Document *model.Document
	Issues   []model.Issue
	Error    error
}

// GetError returns the parse error, if any
func (r *FileResult) GetError() error {
	return r.Error
}

// BatchProcessor parses many files concurrently
type BatchProcessor struct {
	parser      FileParser
	concurrency int
	onDone      func(*FileResult)
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(parser FileParser, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		parser:      parser,
		concurrency: concurrency,
	}
}

// OnDone registers a callback invoked (from the collecting goroutine) as each file finishes
func (b *BatchProcessor) OnDone(fn func(*FileResult)) {
	b.onDone = fn
}

// ProcessFiles parses every path and returns results in input order,
// so downstream tables do not depend on scheduling.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*FileResult {
	if len(paths) == 0 {
		return []*FileResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	logger.Debug("parsing %d files on %d workers", len(paths), pool.Workers())

	go func() {
		for i, path := range paths {
			if !pool.Submit(&ParseJob{Index: i, Path: path, Parser: b.parser}) {
				break
			}
		}
		pool.Close()
	}()

	results := make([]*FileResult, 0, len(paths))
	for r := range pool.Results() {
		fr := r.(*FileResult)
		if b.onDone != nil {
			b.onDone(fr)
		}
		results = append(results, fr)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results
}
