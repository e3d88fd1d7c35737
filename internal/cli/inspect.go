package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/annostat/internal/model"
	"github.com/ppiankov/annostat/internal/pipeline"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var inspectFormat string

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Parse one annotation file and print what was extracted",
	Long: `Inspect parses a single CAS JSON export and prints its metadata, entities,
relations, subject sections and quality issues. Use it on files listed
in the load report to see what went wrong.

Example:
  annostat inspect data/inception/Alandroal_cm_002_2022-01-03.json
  annostat inspect broken.json --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "output format (text, json, yaml)")
}

// inspection is the machine-readable form of one parsed file
type inspection struct {
	Document *model.Document `json:"document" yaml:"document"`
	Issues   []model.Issue   `json:"issues" yaml:"issues"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	loader := pipeline.NewLoader(cfg)
	doc, issues, err := loader.ParseFile(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}

	out := cmd.OutOrStdout()
	switch inspectFormat {
	case "json":
		data, err := json.MarshalIndent(inspection{Document: doc, Issues: issues}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(inspection{Document: doc, Issues: issues})
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = out.Write(data)
		return err
	case "text":
		printInspection(out, doc, issues)
		return nil
	default:
		return fmt.Errorf("unknown format %q (use text, json or yaml)", inspectFormat)
	}
}

func printInspection(w io.Writer, doc *model.Document, issues []model.Issue) {
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  %s\n", doc.Filename)
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Municipality:  %s\n", doc.Municipality)
	if doc.MeetingType != "" {
		fmt.Fprintf(w, "  Meeting type:  %s\n", doc.MeetingType)
	}
	if doc.Number != "" {
		fmt.Fprintf(w, "  Number:        %s\n", doc.Number)
	}
	if doc.Date != "" {
		fmt.Fprintf(w, "  Date:          %s\n", doc.Date)
	}
	fmt.Fprintf(w, "  Text:          %d characters, %d tokens\n", doc.TextLength, doc.TokenCount)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Entities (%d)\n", len(doc.Entities))
	for _, e := range doc.Entities {
		label := e.Type
		if label == "" {
			label = "(no type)"
		}
		text := clip(e.Text, 60)
		if e.Malformed {
			text = "(malformed span)"
		}
		fmt.Fprintf(w, "  #%-5d %-22s [%d,%d) %-9s %q\n", e.ID, label, e.Begin, e.End, e.Validation, text)
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Relations (%d)\n", len(doc.Relations))
	for _, r := range doc.Relations {
		status := "✓"
		if !r.Resolved() {
			status = "✗"
		}
		fmt.Fprintf(w, "  %s #%-5d %-16s %d -> %d", status, r.ID, r.Type, r.SourceRef, r.TargetRef)
		if r.Posicionamento != "" {
			fmt.Fprintf(w, "  posicionamento=%q", r.Posicionamento)
		}
		if r.Resultado != "" {
			fmt.Fprintf(w, "  resultado=%q", r.Resultado)
		}
		fmt.Fprintf(w, "\n")
	}
	fmt.Fprintf(w, "\n")

	if len(doc.Sections) > 0 {
		fmt.Fprintf(w, "Sections (%d)\n", len(doc.Sections))
		for _, s := range doc.Sections {
			fmt.Fprintf(w, "  %d. [%d,%d) %d tokens, %d keywords: %q\n",
				s.Number, s.Begin, s.End, s.TokenCount, len(s.Keywords), clip(s.Text, 50))
		}
		fmt.Fprintf(w, "\n")
	}

	if len(issues) == 0 {
		fmt.Fprintf(w, "✓ No quality issues\n")
		return
	}
	fmt.Fprintf(w, "Issues (%d)\n", len(issues))
	for _, i := range issues {
		fmt.Fprintf(w, "  ✗ [%s] %s: %s\n", i.Severity, i.Kind, i.Message)
	}
}

// clip shortens s to n runes on one line
func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
