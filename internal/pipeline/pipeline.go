package pipeline

import (
	"context"
	"fmt"

	"github.com/ppiankov/annostat/internal/export"
	"github.com/ppiankov/annostat/internal/logger"
	"github.com/ppiankov/annostat/internal/model"
	"github.com/ppiankov/annostat/internal/render"
	"github.com/ppiankov/annostat/internal/score"
	"github.com/ppiankov/annostat/internal/stats"
	"github.com/ppiankov/annostat/internal/worker"
)

// Pipeline orchestrates the complete analysis run
type Pipeline struct {
	loader     *Loader
	aggregator *stats.Aggregator
	renderer   *render.Renderer
	exporter   *export.SQLite // Optional database export (nil if disabled)
	config     *model.Config
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	var exporter *export.SQLite
	if cfg.Output.SQLite != "" {
		exporter = export.NewSQLite(cfg.Output.SQLite)
	}

	return &Pipeline{
		loader:     NewLoader(cfg),
		aggregator: stats.NewAggregator(cfg.Analysis.TopN).WithScorer(score.NewScorer()),
		renderer:   render.NewRenderer(cfg),
		exporter:   exporter,
		config:     cfg,
	}
}

// OnFile registers a callback invoked as each file finishes parsing
func (p *Pipeline) OnFile(fn func(*worker.FileResult)) {
	p.loader.OnFile(fn)
}

// Discover lists the annotation files a run would load
func (p *Pipeline) Discover(dir string) ([]string, error) {
	return p.loader.Discover(dir)
}

// RunResult contains everything one run produced
type RunResult struct {
	Corpus       *model.Corpus
	Summary      *stats.Summary
	Output       *render.Output
	ExportErr    error // Database export failure, if any
	DatabasePath string
}

// Run loads the corpus, aggregates it and writes every output.
// Rendering and export failures are reported in the result; only loading can fail the run.
func (p *Pipeline) Run(ctx context.Context, dir string) (*RunResult, error) {
	// 1. Load and parse every annotation file
	logger.Section("Load")
	corpus, err := p.loader.Load(ctx, dir)
	if err != nil {
		if corpus != nil {
			return &RunResult{Corpus: corpus}, fmt.Errorf("load: %w", err)
		}
		return nil, fmt.Errorf("load: %w", err)
	}

	// 2. Aggregate and score
	logger.Section("Aggregate")
	summary := p.aggregator.Aggregate(corpus)

	// 3. Write tables, report and charts
	logger.Section("Render")
	output := p.renderer.Render(corpus, summary)
	for _, werr := range output.Errors {
		logger.Error("output failed: %v", werr)
	}

	result := &RunResult{
		Corpus:  corpus,
		Summary: summary,
		Output:  output,
	}

	// 4. Export to SQLite if enabled (after rendering, never affects the tables)
	if p.exporter != nil {
		logger.Section("Export")
		if err := p.exporter.Export(ctx, corpus, summary); err != nil {
			logger.Error("sqlite export failed: %v", err)
			result.ExportErr = err
		} else {
			result.DatabasePath = p.exporter.Path()
		}
	}

	return result, nil
}
