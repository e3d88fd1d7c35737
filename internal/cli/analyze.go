package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/gosuri/uiprogress"
	"github.com/ppiankov/annostat/internal/logger"
	"github.com/ppiankov/annostat/internal/pipeline"
	"github.com/ppiankov/annostat/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	noCharts     bool
	showProgress bool
	strict       bool
)

// errStrict is returned by analyze --strict when a file was skipped or an output failed
var errStrict = errors.New("strict mode: run completed with failures")

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [dir]",
	Short: "Analyze a directory of CAS JSON annotation exports",
	Long: `Analyze loads every annotation file of a directory and writes:
- CSV tables of entities, relations, documents and grouped counts
- summary.json / summary.yaml and a load report
- report.md / report.html with the quality section
- bar charts and a municipality heatmap (SVG and HTML)

Files that cannot be parsed are skipped and listed in the load report.

Example:
  annostat analyze data/inception
  annostat analyze data/inception --workers 8 --top 20
  annostat analyze data/inception --sqlite results/corpus.db --progress
  annostat analyze data/inception --no-charts --strict`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	flags := analyzeCmd.Flags()
	flags.String("tables-dir", "results/statistics", "output directory for CSV tables and reports")
	flags.String("charts-dir", "results/figures", "output directory for charts")
	flags.String("ext", ".json", "annotation file extension")
	flags.Int("workers", 0, "number of concurrent parse workers (default: number of CPUs)")
	flags.Int("top", 10, "number of most frequent texts kept per entity type")
	flags.String("sqlite", "", "also export the unified tables to this SQLite database")
	flags.BoolVar(&noCharts, "no-charts", false, "skip chart generation")
	flags.BoolVar(&showProgress, "progress", false, "show a progress bar while loading")
	flags.BoolVar(&strict, "strict", false, "exit non-zero when any file failed to load")

	// Bind flags to config keys
	_ = viper.BindPFlag("output.tables_dir", flags.Lookup("tables-dir"))
	_ = viper.BindPFlag("output.charts_dir", flags.Lookup("charts-dir"))
	_ = viper.BindPFlag("input.extension", flags.Lookup("ext"))
	_ = viper.BindPFlag("concurrency.workers", flags.Lookup("workers"))
	_ = viper.BindPFlag("analysis.top_n", flags.Lookup("top"))
	_ = viper.BindPFlag("output.sqlite", flags.Lookup("sqlite"))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Input.Dir = args[0]
	}
	if noCharts {
		cfg.Output.Charts = false
		cfg.Output.StaticCharts = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Annostat Corpus Analysis\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input dir:    %s (*%s)\n", cfg.Input.Dir, cfg.Input.Extension)
	fmt.Fprintf(stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(stderr, "  Tables dir:   %s\n", cfg.Output.TablesDir)
	if cfg.Output.Charts || cfg.Output.StaticCharts {
		fmt.Fprintf(stderr, "  Charts dir:   %s\n", cfg.Output.ChartsDir)
	}
	if cfg.Output.SQLite != "" {
		fmt.Fprintf(stderr, "  SQLite:       %s\n", cfg.Output.SQLite)
	}
	fmt.Fprintf(stderr, "\n")

	p := pipeline.NewPipeline(cfg)

	fmt.Fprintf(stderr, "⚙️  Loading annotation files...\n")
	stopProgress := func() {}
	if showProgress {
		stopProgress = attachProgress(p, cfg.Input.Dir)
	}
	// skipped files and output errors are logged as they happen
	result, err := p.Run(ctx, cfg.Input.Dir)
	stopProgress()
	if err != nil {
		return err
	}

	report := result.Corpus.Report
	mark := "✓"
	if len(report.Failures) > 0 {
		mark = "✗"
	}
	fmt.Fprintf(stderr, "%s Loaded %d of %d files\n", mark, report.FilesLoaded, report.FilesFound)
	fmt.Fprintf(stderr, "✓ Wrote %d output files\n", len(result.Output.Files))
	if result.DatabasePath != "" {
		fmt.Fprintf(stderr, "✓ Exported database: %s\n", result.DatabasePath)
	}

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintln(stderr, summaryView(result))
	fmt.Fprintf(stderr, "\n")

	if strict && (len(report.Failures) > 0 || result.Output.Failed() || result.ExportErr != nil) {
		return errStrict
	}
	return nil
}

// attachProgress shows a bar advanced as each file finishes parsing.
// The returned func stops rendering.
func attachProgress(p *pipeline.Pipeline, dir string) func() {
	files, err := p.Discover(dir)
	if err != nil || len(files) == 0 {
		return func() {}
	}

	progress := uiprogress.New()
	progress.SetOut(logger.Output())
	progress.Start()
	bar := progress.AddBar(len(files))
	bar.AppendCompleted()
	bar.PrependElapsed()

	p.OnFile(func(*worker.FileResult) {
		bar.Incr()
	})
	return progress.Stop
}
