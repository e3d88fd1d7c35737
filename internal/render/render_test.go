package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/annostat/internal/model"
	"github.com/ppiankov/annostat/internal/stats"
)

func fixture() (*model.Corpus, *stats.Summary) {
	target := 2
	source := 1
	docs := []model.Document{
		{
			ID: "Alandroal_cm_001", Filename: "Alandroal_cm_001.json", Municipality: "Alandroal", Date: "2022-01-03",
			Entities: []model.Entity{
				{DocumentID: "Alandroal_cm_001", Municipality: "Alandroal", ID: 1, Type: "Assunto", Text: "Obras | estradas", Validation: model.ValidationValidated},
				{DocumentID: "Alandroal_cm_001", Municipality: "Alandroal", ID: 2, Type: "Posicionamento", Text: "a favor", Validation: model.ValidationUnset},
			},
			Relations: []model.Relation{
				{DocumentID: "Alandroal_cm_001", Municipality: "Alandroal", ID: 3, Type: "posicionamento", Source: &source, Target: &target, SourceRef: 1, TargetRef: 2},
				{DocumentID: "Alandroal_cm_001", Municipality: "Alandroal", ID: 4, Type: "resultado", Source: &source, SourceRef: 1, TargetRef: 77},
			},
		},
		{
			ID: "Borba_cm_002", Filename: "Borba_cm_002.json", Municipality: "Borba",
			Entities: []model.Entity{
				{DocumentID: "Borba_cm_002", Municipality: "Borba", ID: 1, Type: "", Text: "x", Validation: model.ValidationUnset},
			},
		},
	}

	corpus := &model.Corpus{Report: model.LoadReport{RunID: "run-1", Directory: "data", FilesFound: 3, FilesLoaded: 2}}
	for _, d := range docs {
		corpus.Append(d)
	}
	corpus.Report.Add(model.NewIssue(model.IssueInvalidFormat, "broken.json", "invalid CAS JSON"))
	corpus.Report.Add(model.NewIssue(model.IssueEmptyType, "Borba_cm_002.json", "entity 1 has no type label"))

	return corpus, stats.NewAggregator(5).Aggregate(corpus)
}

func testConfig(t *testing.T) *model.Config {
	dir := t.TempDir()
	cfg := model.DefaultConfig()
	cfg.Output.TablesDir = filepath.Join(dir, "statistics")
	cfg.Output.ChartsDir = filepath.Join(dir, "figures")
	return cfg
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

// findAll walks a parsed document and returns elements with the given tag
func findAll(n *html.Node, tag string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

func parseFile(t *testing.T, path string) *html.Node {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	doc, err := html.Parse(f)
	require.NoError(t, err)
	return doc
}

func TestRenderer_WritesAllOutputs(t *testing.T) {
	corpus, summary := fixture()
	cfg := testConfig(t)

	out := NewRenderer(cfg).Render(corpus, summary)
	require.False(t, out.Failed(), "%v", out.Errors)

	for _, name := range []string{
		"entities.csv", "relations.csv", "documents.csv", "entity_types.csv", "municipalities.csv",
		"municipality_entity_types.csv", "validation.csv", "relation_types.csv", "quality_issues.csv",
		"voting.csv", "sections.csv", "documents_by_year.csv", "entities_by_year.csv", "posicionamento_by_year.csv",
		"posicionamento_by_municipality.csv", "resultado_by_municipality.csv", "posicionamento_resultado.csv",
		"metadata.csv", "party_by_municipality.csv", "summary.json", "summary.yaml", "load_report.json", "report.md", "report.html",
	} {
		assert.FileExists(t, filepath.Join(cfg.Output.TablesDir, name))
	}
	for _, name := range []string{"entity_types", "municipalities", "municipality_entity_types", "validation_status", "relation_types", "quality_issues"} {
		assert.FileExists(t, filepath.Join(cfg.Output.ChartsDir, name+".html"))
		assert.FileExists(t, filepath.Join(cfg.Output.ChartsDir, name+".svg"))
	}
	assert.Len(t, out.Files, 24+12)
}

func TestRenderer_EntityTable(t *testing.T) {
	corpus, summary := fixture()
	cfg := testConfig(t)
	require.False(t, NewRenderer(cfg).Render(corpus, summary).Failed())

	rows := readCSV(t, filepath.Join(cfg.Output.TablesDir, "entities.csv"))
	require.Len(t, rows, 1+len(corpus.Entities))
	assert.Equal(t, "document_id", rows[0][0])
	assert.Equal(t, "Obras | estradas", rows[1][7])
	assert.Equal(t, "", rows[3][3])

	relations := readCSV(t, filepath.Join(cfg.Output.TablesDir, "relations.csv"))
	require.Len(t, relations, 3)
	assert.Equal(t, "", relations[2][5], "unresolved target is an empty cell")
	assert.Equal(t, "77", relations[2][7])
	assert.Equal(t, "false", relations[2][8])

	types := readCSV(t, filepath.Join(cfg.Output.TablesDir, "entity_types.csv"))
	require.Len(t, types, 3)
	for _, row := range types[1:] {
		assert.NotEmpty(t, row[0], "empty type has no named group")
	}

	issues := readCSV(t, filepath.Join(cfg.Output.TablesDir, "quality_issues.csv"))
	require.Len(t, issues, 3)
	assert.Equal(t, "invalid_format", issues[1][0])
	assert.Equal(t, "broken.json", issues[1][2])
}

func TestRenderer_PatternTables(t *testing.T) {
	corpus, summary := fixture()
	cfg := testConfig(t)
	require.False(t, NewRenderer(cfg).Render(corpus, summary).Failed())

	years := readCSV(t, filepath.Join(cfg.Output.TablesDir, "documents_by_year.csv"))
	assert.Equal(t, [][]string{{"year", "count", "percent"}, {"2022", "1", "100.00"}}, years)

	byYear := readCSV(t, filepath.Join(cfg.Output.TablesDir, "entities_by_year.csv"))
	assert.Equal(t, []string{"year", "entity_type", "count"}, byYear[0])
	assert.Len(t, byYear, 3)

	municipalities := readCSV(t, filepath.Join(cfg.Output.TablesDir, "municipalities.csv"))
	assert.Equal(t, []string{"municipality", "documents", "entities", "percent", "entities_per_document", "entities_per_1k_tokens"}, municipalities[0])
	assert.Equal(t, "Alandroal", municipalities[1][0])
	assert.Equal(t, "1", municipalities[1][1])
	assert.Equal(t, "2.0", municipalities[1][4])

	metadata := readCSV(t, filepath.Join(cfg.Output.TablesDir, "metadata.csv"))
	assert.Equal(t, [][]string{{"feature", "value", "count", "percent"}}, metadata)
}

func TestMatrixTable(t *testing.T) {
	m := stats.Matrix{Rows: []string{"Borba"}, Columns: []string{"a favor", "contra"}, Values: [][]int{{2, 1}}}
	assert.Equal(t, [][]string{{"municipality", "a favor", "contra"}, {"Borba", "2", "1"}}, matrixTable("municipality", m))
}

func TestRenderer_SummaryFiles(t *testing.T) {
	corpus, summary := fixture()
	cfg := testConfig(t)
	require.False(t, NewRenderer(cfg).Render(corpus, summary).Failed())

	data, err := os.ReadFile(filepath.Join(cfg.Output.TablesDir, "summary.json"))
	require.NoError(t, err)
	var decoded stats.Summary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, summary.Overview, decoded.Overview)

	data, err = os.ReadFile(filepath.Join(cfg.Output.TablesDir, "summary.yaml"))
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, yaml.Unmarshal(data, &generic))
	assert.Contains(t, generic, "overview")
	assert.Contains(t, generic, "municipality_entity_types")

	data, err = os.ReadFile(filepath.Join(cfg.Output.TablesDir, "load_report.json"))
	require.NoError(t, err)
	var report model.LoadReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, []string{"broken.json"}, report.FailedFiles())
}

func TestRenderer_ReportHTML(t *testing.T) {
	corpus, summary := fixture()
	cfg := testConfig(t)
	require.False(t, NewRenderer(cfg).Render(corpus, summary).Failed())

	md, err := os.ReadFile(filepath.Join(cfg.Output.TablesDir, "report.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Annotation corpus report")
	assert.Contains(t, string(md), "`broken.json`")

	doc := parseFile(t, filepath.Join(cfg.Output.TablesDir, "report.html"))
	assert.NotEmpty(t, findAll(doc, "table"), "GFM tables become HTML tables")
	titles := findAll(doc, "title")
	require.Len(t, titles, 1)
	assert.Equal(t, "Annotation corpus report", titles[0].FirstChild.Data)
}

func TestRenderer_ChartFiles(t *testing.T) {
	corpus, summary := fixture()
	cfg := testConfig(t)
	require.False(t, NewRenderer(cfg).Render(corpus, summary).Failed())

	data, err := os.ReadFile(filepath.Join(cfg.Output.ChartsDir, "entity_types.svg"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), xmlHeader))
	assert.Contains(t, string(data), `<svg xmlns="http://www.w3.org/2000/svg"`)

	doc := parseFile(t, filepath.Join(cfg.Output.ChartsDir, "entity_types.html"))
	assert.Len(t, findAll(doc, "rect"), len(summary.EntityTypes))
	assert.Len(t, findAll(doc, "tr"), 1+len(summary.EntityTypes))

	heatmap := parseFile(t, filepath.Join(cfg.Output.ChartsDir, "municipality_entity_types.html"))
	m := summary.MunicipalityTypes
	assert.Len(t, findAll(heatmap, "rect"), len(m.Rows)*len(m.Columns))
}

func TestRenderer_ChartsDisabled(t *testing.T) {
	corpus, summary := fixture()
	cfg := testConfig(t)
	cfg.Output.Charts = false
	cfg.Output.StaticCharts = false

	out := NewRenderer(cfg).Render(corpus, summary)
	require.False(t, out.Failed())
	assert.NoDirExists(t, cfg.Output.ChartsDir)
}

func TestRenderer_TableFailureDoesNotStopCharts(t *testing.T) {
	corpus, summary := fixture()
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Output.TablesDir, []byte("not a directory"), 0o644))

	out := NewRenderer(cfg).Render(corpus, summary)
	assert.True(t, out.Failed())
	assert.FileExists(t, filepath.Join(cfg.Output.ChartsDir, "entity_types.svg"))
}

func TestBarChart_Titles(t *testing.T) {
	chart := BarChart{
		Title:  "Entities by type",
		Unit:   "entities",
		Bars:   []Bar{{Label: "Assunto", Value: 4}, {Label: "Metadados", Value: 2}},
		Width:  800,
		Height: 400,
	}
	data, err := renderNode(chart.SVG())
	require.NoError(t, err)

	doc, err := html.Parse(bytes.NewReader(data))
	require.NoError(t, err)
	rects := findAll(doc, "rect")
	require.Len(t, rects, 2)
	assert.Equal(t, "Assunto: 4 entities", rects[0].FirstChild.FirstChild.Data)
}

func TestBarChart_Empty(t *testing.T) {
	data, err := renderNode(BarChart{Title: "Relations", Width: 400, Height: 300}.SVG())
	require.NoError(t, err)
	assert.Contains(t, string(data), "no data")
	assert.NotContains(t, string(data), "<rect")
}

func TestMarkdown_EscapesCells(t *testing.T) {
	var b strings.Builder
	writeTable(&b, [][]string{{"text", "count"}, {"a | b\nc", "1"}})
	assert.Equal(t, "| text | count |\n| --- | --- |\n| a \\| b c | 1 |\n\n", b.String())
}

func TestPage_ReusesChart(t *testing.T) {
	_, summary := fixture()
	chart := Charts(summary, 600, 300)[0]

	first, err := renderNode(Page(chart))
	require.NoError(t, err)
	second, err := renderNode(Page(chart))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
