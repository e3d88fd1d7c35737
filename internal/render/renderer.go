package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/annostat/internal/model"
	"github.com/ppiankov/annostat/internal/stats"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// Renderer writes tables, reports and charts for one run
type Renderer struct {
	tablesDir    string
	chartsDir    string
	charts       bool
	staticCharts bool
	width        int
	height       int
}

// NewRenderer creates a renderer from configuration
func NewRenderer(cfg *model.Config) *Renderer {
	return &Renderer{
		tablesDir:    cfg.Output.TablesDir,
		chartsDir:    cfg.Output.ChartsDir,
		charts:       cfg.Output.Charts,
		staticCharts: cfg.Output.StaticCharts,
		width:        cfg.Charts.Width,
		height:       cfg.Charts.Height,
	}
}

// Output lists what a render pass wrote and what it could not write
type Output struct {
	Files  []string
	Errors []error
}

// Failed reports whether any file could not be written
func (o *Output) Failed() bool {
	return len(o.Errors) > 0
}

func (o *Output) write(path string, build func() ([]byte, error)) {
	data, err := build()
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		o.Errors = append(o.Errors, fmt.Errorf("write %s: %w", filepath.Base(path), err))
		return
	}
	o.Files = append(o.Files, path)
}

// Render writes every output. A failing file does not stop the others; the
// aggregates are already computed, so failures are reported, not returned.
func (r *Renderer) Render(corpus *model.Corpus, summary *stats.Summary) *Output {
	out := &Output{}

	if err := os.MkdirAll(r.tablesDir, 0o755); err != nil {
		out.Errors = append(out.Errors, fmt.Errorf("create tables directory: %w", err))
	} else {
		r.writeTables(out, corpus, summary)
	}

	if !r.charts && !r.staticCharts {
		return out
	}
	if err := os.MkdirAll(r.chartsDir, 0o755); err != nil {
		out.Errors = append(out.Errors, fmt.Errorf("create charts directory: %w", err))
		return out
	}
	r.writeCharts(out, summary)

	return out
}

func (r *Renderer) writeTables(out *Output, corpus *model.Corpus, summary *stats.Summary) {
	for _, table := range Tables(corpus, summary) {
		out.write(filepath.Join(r.tablesDir, table.Name), table.CSV)
	}

	out.write(filepath.Join(r.tablesDir, "summary.json"), func() ([]byte, error) {
		return SummaryJSON(summary)
	})
	out.write(filepath.Join(r.tablesDir, "summary.yaml"), func() ([]byte, error) {
		return SummaryYAML(summary)
	})
	out.write(filepath.Join(r.tablesDir, "load_report.json"), func() ([]byte, error) {
		return LoadReportJSON(corpus.Report)
	})

	report := Markdown(corpus, summary)
	out.write(filepath.Join(r.tablesDir, "report.md"), func() ([]byte, error) {
		return []byte(report), nil
	})
	out.write(filepath.Join(r.tablesDir, "report.html"), func() ([]byte, error) {
		return MarkdownToHTML("Annotation corpus report", report)
	})
}

func (r *Renderer) writeCharts(out *Output, summary *stats.Summary) {
	for _, chart := range Charts(summary, r.width, r.height) {
		if r.staticCharts {
			out.write(filepath.Join(r.chartsDir, chart.Name+".svg"), func() ([]byte, error) {
				data, err := renderNode(chart.SVG)
				if err != nil {
					return nil, err
				}
				return append([]byte(xmlHeader), data...), nil
			})
		}
		if r.charts {
			out.write(filepath.Join(r.chartsDir, chart.Name+".html"), func() ([]byte, error) {
				return renderNode(Page(chart))
			})
		}
	}
}
