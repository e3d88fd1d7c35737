package render

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/ppiankov/annostat/internal/stats"
)

const svgNamespace = "http://www.w3.org/2000/svg"

// palette cycles through bar colours
var palette = []string{
	"#4c78a8", "#f58518", "#54a24b", "#e45756", "#72b7b2",
	"#eeca3b", "#b279a2", "#ff9da6", "#9d755d", "#bab0ac",
}

// Bar is one labelled value of a bar chart
type Bar struct {
	Label string
	Value int
}

// BarsFrom converts a grouped count into bars
func BarsFrom(counts []stats.Count) []Bar {
	bars := make([]Bar, len(counts))
	for i, c := range counts {
		bars[i] = Bar{Label: c.Key, Value: c.Count}
	}
	return bars
}

// BarChart is a horizontal bar chart
type BarChart struct {
	Title  string
	Unit   string // Value unit shown in hover titles, e.g. "entities"
	Bars   []Bar
	Width  int
	Height int
}

const (
	marginTop    = 48
	marginRight  = 72
	marginBottom = 24
	labelWidth   = 220
)

// SVG builds the chart as an <svg> node tree. Each bar carries a <title> so
// browsers show the exact value on hover.
func (c BarChart) SVG() *html.Node {
	root := svgRoot(c.Width, c.Height)
	appendAll(root, withText("text", c.Title,
		"x", itoa(c.Width/2), "y", "28", "text-anchor", "middle", "font-size", "18", "font-weight", "bold"))

	if len(c.Bars) == 0 {
		appendAll(root, withText("text", "no data",
			"x", itoa(c.Width/2), "y", itoa(c.Height/2), "text-anchor", "middle", "fill", "#888"))
		return root
	}

	highest := 0
	for _, b := range c.Bars {
		highest = max(highest, b.Value)
	}

	plotWidth := c.Width - labelWidth - marginRight
	slot := float64(c.Height-marginTop-marginBottom) / float64(len(c.Bars))
	barHeight := slot * 0.7

	for i, b := range c.Bars {
		y := float64(marginTop) + float64(i)*slot
		width := 0.0
		if highest > 0 {
			width = float64(plotWidth) * float64(b.Value) / float64(highest)
		}

		bar := element("rect",
			"x", itoa(labelWidth), "y", ftoa(y),
			"width", ftoa(width), "height", ftoa(barHeight),
			"fill", palette[i%len(palette)])
		appendAll(bar, withText("title", fmt.Sprintf("%s: %d %s", b.Label, b.Value, c.Unit)))

		middle := ftoa(y + barHeight/2 + 4)
		appendAll(root,
			bar,
			withText("text", truncate(b.Label, 32), "x", itoa(labelWidth-8), "y", middle, "text-anchor", "end", "font-size", "12"),
			withText("text", itoa(b.Value), "x", ftoa(float64(labelWidth)+width+6), "y", middle, "font-size", "12"),
		)
	}
	return root
}

// Heatmap shades a row × column count matrix
type Heatmap struct {
	Title  string
	Matrix stats.Matrix
	Width  int
	Height int
}

const headerHeight = 120

// SVG builds the heatmap as an <svg> node tree
func (h Heatmap) SVG() *html.Node {
	root := svgRoot(h.Width, h.Height)
	appendAll(root, withText("text", h.Title,
		"x", itoa(h.Width/2), "y", "28", "text-anchor", "middle", "font-size", "18", "font-weight", "bold"))

	m := h.Matrix
	if len(m.Rows) == 0 || len(m.Columns) == 0 {
		appendAll(root, withText("text", "no data",
			"x", itoa(h.Width/2), "y", itoa(h.Height/2), "text-anchor", "middle", "fill", "#888"))
		return root
	}

	cellWidth := float64(h.Width-labelWidth-marginRight) / float64(len(m.Columns))
	cellHeight := float64(h.Height-marginTop-headerHeight-marginBottom) / float64(len(m.Rows))
	top := float64(marginTop + headerHeight)
	highest := m.Max()

	for j, col := range m.Columns {
		x := float64(labelWidth) + float64(j)*cellWidth + cellWidth/2
		appendAll(root, withText("text", truncate(col, 24),
			"x", ftoa(x), "y", ftoa(top-8), "font-size", "12",
			"transform", fmt.Sprintf("rotate(-45 %s %s)", ftoa(x), ftoa(top-8))))
	}

	for i, row := range m.Rows {
		y := top + float64(i)*cellHeight
		appendAll(root, withText("text", truncate(row, 32),
			"x", itoa(labelWidth-8), "y", ftoa(y+cellHeight/2+4), "text-anchor", "end", "font-size", "12"))

		for j, col := range m.Columns {
			v := m.Values[i][j]
			opacity := 0.0
			if highest > 0 {
				opacity = 0.1 + 0.9*float64(v)/float64(highest)
			}
			if v == 0 {
				opacity = 0.03
			}

			cell := element("rect",
				"x", ftoa(float64(labelWidth)+float64(j)*cellWidth), "y", ftoa(y),
				"width", ftoa(cellWidth-1), "height", ftoa(cellHeight-1),
				"fill", palette[0], "fill-opacity", fmt.Sprintf("%.2f", opacity))
			appendAll(cell, withText("title", fmt.Sprintf("%s × %s: %d", row, col, v)))
			appendAll(root, cell)
		}
	}
	return root
}

func svgRoot(width, height int) *html.Node {
	return element("svg",
		"xmlns", svgNamespace,
		"width", itoa(width), "height", itoa(height),
		"viewBox", fmt.Sprintf("0 0 %d %d", width, height),
		"font-family", "sans-serif")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
