package render

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/ppiankov/annostat/internal/stats"
)

// Chart is one figure with the table of values behind it
type Chart struct {
	Name  string // File stem
	Title string
	SVG   *html.Node
	Table [][]string // Header row first
}

const minRowHeight = 24

// Charts builds every figure of a summary. Charts are sized to their row count,
// never smaller than width × height.
func Charts(summary *stats.Summary, width, height int) []Chart {
	barHeight := func(n int) int {
		return max(height, marginTop+marginBottom+n*minRowHeight)
	}
	bar := func(name, title, unit, header string, counts []stats.Count) Chart {
		return Chart{
			Name:  name,
			Title: title,
			SVG: BarChart{
				Title:  title,
				Unit:   unit,
				Bars:   BarsFrom(counts),
				Width:  width,
				Height: barHeight(len(counts)),
			}.SVG(),
			Table: countTable(header, counts),
		}
	}

	matrix := summary.MunicipalityTypes
	heatmap := Chart{
		Name:  "municipality_entity_types",
		Title: "Entities by municipality and type",
		SVG: Heatmap{
			Title:  "Entities by municipality and type",
			Matrix: matrix,
			Width:  width,
			Height: max(height, marginTop+headerHeight+marginBottom+len(matrix.Rows)*minRowHeight),
		}.SVG(),
		Table: matrixTable("municipality", matrix),
	}

	return []Chart{
		bar("entity_types", "Entities by type", "entities", "entity_type", summary.EntityTypes),
		bar("municipalities", "Entities by municipality", "entities", "municipality", summary.Municipalities),
		heatmap,
		bar("validation_status", "Validation status", "entities", "status", summary.Validation),
		bar("relation_types", "Relations by type", "relations", "relation_type", summary.RelationTypes),
		bar("quality_issues", "Quality issues by kind", "issues", "kind", summary.Quality.ByKind),
	}
}

func countTable(header string, counts []stats.Count) [][]string {
	table := [][]string{{header, "count", "percent"}}
	for _, c := range counts {
		table = append(table, []string{c.Key, strconv.Itoa(c.Count), formatPercent(c.Percent)})
	}
	return table
}

// matrixTable lays a Matrix out with one column per Matrix column
func matrixTable(corner string, m stats.Matrix) [][]string {
	header := append([]string{corner}, m.Columns...)
	table := [][]string{header}
	for i, row := range m.Rows {
		line := []string{row}
		for _, v := range m.Values[i] {
			line = append(line, strconv.Itoa(v))
		}
		table = append(table, line)
	}
	return table
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

const pageStyle = `body { font-family: sans-serif; margin: 2em; color: #222; }
table { border-collapse: collapse; margin-top: 1.5em; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
th { background: #f4f4f4; }
rect:hover { stroke: #222; stroke-width: 1; }`

// Page wraps a chart in a standalone HTML document with its data table
func Page(c Chart) *html.Node {
	body := appendAll(element("body"), withText("h1", c.Title), cloneNode(c.SVG))
	if len(c.Table) > 0 {
		body.AppendChild(tableNode(c.Table))
	}
	return document(c.Title, body)
}

// document builds <!DOCTYPE html><html><head>…</head>body</html>
func document(title string, body *html.Node) *html.Node {
	head := appendAll(element("head"),
		element("meta", "charset", "utf-8"),
		withText("title", title),
		withText("style", pageStyle),
	)
	doc := &html.Node{Type: html.DocumentNode}
	appendAll(doc,
		&html.Node{Type: html.DoctypeNode, Data: "html"},
		appendAll(element("html", "lang", "en"), head, body),
	)
	return doc
}

func tableNode(rows [][]string) *html.Node {
	headRow := element("tr")
	for _, cell := range rows[0] {
		headRow.AppendChild(withText("th", cell))
	}

	tbody := element("tbody")
	for _, row := range rows[1:] {
		tr := element("tr")
		for _, cell := range row {
			tr.AppendChild(withText("td", cell))
		}
		tbody.AppendChild(tr)
	}

	return appendAll(element("table"), appendAll(element("thead"), headRow), tbody)
}
