package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/annostat/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")).Width(22)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CDD6F4"))
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1)
)

// summaryView renders the headline numbers of a run as a bordered block
func summaryView(result *pipeline.RunResult) string {
	o := result.Summary.Overview
	score := result.Summary.Score

	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
	}

	rows := []string{
		titleStyle.Render("Analysis Complete"),
		"",
		row("Documents", fmt.Sprintf("%d of %d files", o.Documents, o.FilesFound)),
		row("Municipalities", fmt.Sprintf("%d (%s)", len(o.Municipalities), strings.Join(o.Municipalities, ", "))),
		row("Entities", fmt.Sprintf("%d in %d types", o.Entities, o.EntityTypes)),
		row("Validated", fmt.Sprintf("%d", o.ValidatedEntities)),
		row("Relations", fmt.Sprintf("%d", o.Relations)),
		row("Sections", fmt.Sprintf("%d", o.Sections)),
	}
	if o.EarliestDate != "" {
		rows = append(rows, row("Date range", o.EarliestDate+" .. "+o.LatestDate))
	}

	failed := labelStyle.Render("Skipped files") + goodStyle.Render("0")
	if o.FilesFailed > 0 {
		failed = labelStyle.Render("Skipped files") + badStyle.Render(fmt.Sprintf("%d", o.FilesFailed))
	}
	rows = append(rows, failed)

	issues := len(result.Corpus.Report.Issues)
	issueStyle := goodStyle
	if issues > 0 {
		issueStyle = warnStyle
	}
	rows = append(rows, labelStyle.Render("Quality issues")+issueStyle.Render(fmt.Sprintf("%d", issues)))
	rows = append(rows, labelStyle.Render("Quality index")+
		indexStyle(score.Index).Render(fmt.Sprintf("%d/100 (confidence: %s)", score.Index, score.Confidence)))

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func indexStyle(index int) lipgloss.Style {
	switch {
	case index >= 80:
		return goodStyle
	case index >= 60:
		return warnStyle
	default:
		return badStyle
	}
}
