package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ppiankov/annostat/internal/model"
	"github.com/ppiankov/annostat/internal/stats"
)

// Markdown renders the human-readable run report
func Markdown(corpus *model.Corpus, summary *stats.Summary) string {
	var b strings.Builder
	o := summary.Overview

	b.WriteString("# Annotation corpus report\n\n")
	fmt.Fprintf(&b, "Run `%s` over `%s`.\n\n", o.RunID, corpus.Report.Directory)

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- Files: %d found, %d loaded, %d skipped\n", o.FilesFound, o.Documents, o.FilesFailed)
	fmt.Fprintf(&b, "- Municipalities: %d (%s)\n", len(o.Municipalities), strings.Join(o.Municipalities, ", "))
	fmt.Fprintf(&b, "- Entities: %d across %d types, %d without a type\n", o.Entities, o.EntityTypes, o.EmptyTypeEntities)
	fmt.Fprintf(&b, "- Validated entities: %d\n", o.ValidatedEntities)
	fmt.Fprintf(&b, "- Relations: %d\n", o.Relations)
	fmt.Fprintf(&b, "- Subject sections: %d\n", o.Sections)
	fmt.Fprintf(&b, "- Text: %d characters, %d tokens\n", o.TotalTextLength, o.TotalTokens)
	fmt.Fprintf(&b, "- Per document: %.1f entities, %.1f relations\n", o.EntitiesPerDocument, o.RelationsPerDocument)
	if o.EarliestDate != "" {
		fmt.Fprintf(&b, "- Meeting dates: %s to %s\n", o.EarliestDate, o.LatestDate)
	}
	b.WriteString("\n")

	if len(summary.Score.Signals) > 0 {
		b.WriteString("## Annotation quality\n\n")
		fmt.Fprintf(&b, "Quality index **%d/100** (confidence: %s)\n\n", summary.Score.Index, summary.Score.Confidence)
		rows := [][]string{{"signal", "severity", "description"}}
		for _, s := range summary.Score.Signals {
			rows = append(rows, []string{string(s.Type), string(s.Severity), s.Description})
		}
		writeTable(&b, rows)
	}

	writeSection(&b, "Entity types", entityTypeRows(summary))
	writeSection(&b, "Municipalities", municipalityRows(summary))
	writeSection(&b, "Validation status", countTable("status", summary.Validation))
	writeSection(&b, "Relation types", countTable("relation_type", summary.RelationTypes))
	writeSection(&b, "Vote positions", countTable("posicionamento", summary.Posicionamento))
	writeSection(&b, "Vote results", countTable("resultado", summary.Resultado))
	writeSection(&b, "Fronteira markers", countTable("fronteira", summary.Fronteira))
	writeSection(&b, "Documents by year", countTable("year", summary.Temporal.DocumentsByYear))
	writeSection(&b, "Vote positions by municipality", matrixTable("municipality", summary.PosicionamentoByMuni))
	writeSection(&b, "Vote positions by result", matrixTable("posicionamento", summary.PosicionamentoResultado))
	writeSection(&b, "Parties", countTable("partido", summary.Metadata.Partido))
	writeSection(&b, "Attendance", countTable("presenca", summary.Metadata.Presenca))
	writeSection(&b, "Meeting types", countTable("tipo_reuniao", summary.Metadata.TipoReuniao))

	if len(summary.Voting) > 0 {
		complete := 0
		for _, v := range summary.Voting {
			if v.Complete {
				complete++
			}
		}
		b.WriteString("## Voting records\n\n")
		fmt.Fprintf(&b, "%d votes identified, %d with both a position and a result.\n\n", len(summary.Voting), complete)
	}

	if len(summary.TopTexts) > 0 {
		b.WriteString("## Most frequent texts\n\n")
		for _, tt := range summary.TopTexts {
			fmt.Fprintf(&b, "### %s\n\n", tt.Type)
			writeTable(&b, countTable("text", tt.Texts))
		}
	}

	if len(summary.Cooccurrence) > 0 {
		rows := [][]string{{"type", "type", "documents"}}
		for _, p := range summary.Cooccurrence {
			rows = append(rows, []string{p.A, p.B, itoa(p.Documents)})
		}
		writeSection(&b, "Type co-occurrence", rows)
	}

	if s := summary.Sections; s.Sections > 0 {
		b.WriteString("## Subject sections\n\n")
		fmt.Fprintf(&b, "%d sections in %d documents, %.1f tokens on average (min %d, max %d); %d contain a tagged subject.\n\n",
			s.Sections, s.Documents, s.MeanTokens, s.MinTokens, s.MaxTokens, s.WithKeywords)
		if len(s.Temas) > 0 {
			writeTable(&b, countTable("tema", s.Temas))
		}
	}

	b.WriteString("## Load and quality issues\n\n")
	if len(corpus.Report.Failures) == 0 && len(corpus.Report.Issues) == 0 {
		b.WriteString("No issues recorded.\n\n")
	} else {
		writeTable(&b, countTable("kind", summary.Quality.ByKind))
		if len(corpus.Report.Failures) > 0 {
			b.WriteString("Skipped files:\n\n")
			for _, f := range corpus.Report.Failures {
				fmt.Fprintf(&b, "- `%s`: %s\n", f.File, f.Message)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func writeSection(b *strings.Builder, title string, rows [][]string) {
	if len(rows) < 2 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	writeTable(b, rows)
}

// writeTable writes a GitHub-flavoured markdown table; the first row is the header
func writeTable(b *strings.Builder, rows [][]string) {
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = escapeCell(c)
		}
		fmt.Fprintf(b, "| %s |\n", strings.Join(cells, " | "))
		if i == 0 {
			b.WriteString("|" + strings.Repeat(" --- |", len(row)) + "\n")
		}
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// MarkdownToHTML converts a markdown report into a standalone HTML page
func MarkdownToHTML(title, source string) ([]byte, error) {
	var converted bytes.Buffer
	if err := markdown.Convert([]byte(source), &converted); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(&converted, context)
	if err != nil {
		return nil, fmt.Errorf("parse converted report: %w", err)
	}

	body := element("body")
	for _, n := range nodes {
		body.AppendChild(n)
	}
	return renderNode(document(title, body))
}
