package report

import (
	"strings"
	"unicode/utf8"

	"github.com/klytics/santekit/internal/stats"
)

// Geometry is the page model, in millimetres. Text widths are estimated
// from average glyph widths so that pagination is deterministic and does
// not depend on the renderer's fonts. The HTML renderer writes its table
// CSS from the same values, so a row takes the height the layout gave it.
type Geometry struct {
	Width        float64
	Height       float64
	Margin       float64
	ContentTop   float64
	BottomMargin float64
	BreakReserve float64
	TitleHeight  float64
	LineHeight   float64
	CellPadding  float64 // vertical padding of a body cell
	HeadPadding  float64 // vertical padding of a header cell
	RuleWidth    float64 // cell border
	Gap          float64
	ImageWidth   float64
	CharWidth    float64
	HeaderChar   float64
}

// A4 returns the report page geometry.
func A4() Geometry {
	return Geometry{
		Width:        210,
		Height:       297,
		Margin:       10,
		ContentTop:   20,
		BottomMargin: 15,
		BreakReserve: 15,
		TitleHeight:  10,
		LineHeight:   5,
		CellPadding:  0.5,
		HeadPadding:  1,
		RuleWidth:    0.2,
		Gap:          5,
		ImageWidth:   180,
		CharWidth:    1.6,
		HeaderChar:   2.0,
	}
}

// PrintableWidth is the page width inside the margins.
func (g Geometry) PrintableWidth() float64 {
	return g.Width - 2*g.Margin
}

// Limit is the lowest y a block may reach before a page break.
func (g Geometry) Limit() float64 {
	return g.Height - g.BottomMargin - g.BreakReserve
}

// ColumnWidths returns the table's column widths, equal shares of the
// printable width by default, scaled down when they overflow it.
func (g Geometry) ColumnWidths(t *stats.Table) []float64 {
	n := len(t.Columns)
	if n == 0 {
		return nil
	}
	widths := make([]float64, n)
	if len(t.Widths) == n {
		copy(widths, t.Widths)
	} else {
		for i := range widths {
			widths[i] = g.PrintableWidth() / float64(n)
		}
	}
	var total float64
	for _, w := range widths {
		total += w
	}
	if total > g.PrintableWidth() {
		scale := g.PrintableWidth() / total
		for i := range widths {
			widths[i] *= scale
		}
	}
	return widths
}

// Lines estimates how many lines text wraps to in a cell of the given
// width. Explicit newlines start new lines.
func (g Geometry) Lines(text string, width, charWidth float64) int {
	usable := width - 2
	if usable <= 0 {
		usable = 1
	}
	lines := 0
	for _, part := range strings.Split(text, "\n") {
		lines += 1 + int(float64(utf8.RuneCountInString(part))*charWidth/usable)
	}
	if lines < 1 {
		return 1
	}
	return lines
}

// HeaderHeight is the height of a table header row. Headers are drawn
// uppercase in bold.
func (g Geometry) HeaderHeight(t *stats.Table, widths []float64) float64 {
	lines := 1
	for i, col := range t.Columns {
		if n := g.Lines(strings.ToUpper(col), widths[i], g.HeaderChar); n > lines {
			lines = n
		}
	}
	return g.LineHeight*float64(lines) + 2*g.HeadPadding + g.RuleWidth
}

// RowHeight is the height of one table row: its lines, the cell padding
// and one collapsed border.
func (g Geometry) RowHeight(r stats.Row, widths []float64) float64 {
	lines := 1
	for i, cell := range r.Cells {
		if i >= len(widths) {
			break
		}
		if n := g.Lines(cell, widths[i], g.CharWidth); n > lines {
			lines = n
		}
	}
	return g.LineHeight*float64(lines) + 2*g.CellPadding + g.RuleWidth
}

// ImageHeight is the height of a chart drawn at ImageWidth.
func (g Geometry) ImageHeight(kind stats.ChartKind) float64 {
	return g.ImageWidth * kind.Aspect()
}

// Part is a section to lay out, with the rendered chart image if any.
type Part struct {
	Section *stats.Section
	Image   string
}

// layoutSections places the parts on content pages, numbered from 1. Every
// part except inline ones starts a new page. A table row that would cross
// Limit moves to a new page under a repeated header, and an image that does
// not fit moves to a new page. It returns the pages and the page each
// section starts on, by section key.
func layoutSections(g Geometry, parts []Part) ([]Page, map[string]int) {
	var (
		pages  []Page
		y      float64
		starts = make(map[string]int)
	)
	newPage := func() {
		pages = append(pages, Page{Number: len(pages) + 1})
		y = g.ContentTop
	}
	current := func() *Page { return &pages[len(pages)-1] }
	ensure := func(h float64) {
		if y+h > g.Limit() {
			newPage()
		}
	}

	for _, part := range parts {
		s := part.Section
		if s == nil || s.Table == nil {
			continue
		}
		if !s.Inline || len(pages) == 0 {
			newPage()
		}

		widths := g.ColumnWidths(s.Table)
		header := g.HeaderHeight(s.Table, widths)
		first := 0.0
		if len(s.Table.Rows) > 0 {
			first = g.RowHeight(s.Table.Rows[0], widths)
		}
		// Keep the title with the header and the first row.
		ensure(g.TitleHeight + g.Gap + header + first)
		starts[s.Key] = current().Number

		current().Blocks = append(current().Blocks, Block{Kind: BlockTitle, Text: s.Title})
		y += g.TitleHeight + g.Gap

		frag := Block{Kind: BlockTable, Table: s.Table, Widths: widths}
		y += header
		for i, row := range s.Table.Rows {
			h := g.RowHeight(row, widths)
			if y+h > g.Limit() && len(frag.Rows) > 0 {
				current().Blocks = append(current().Blocks, frag)
				newPage()
				frag = Block{Kind: BlockTable, Table: s.Table, Widths: widths, Continued: true}
				y += header
			}
			frag.Rows = append(frag.Rows, i)
			y += h
		}
		current().Blocks = append(current().Blocks, frag)
		y += g.Gap

		if part.Image != "" && s.Chart != nil {
			h := g.ImageHeight(s.Chart.Kind)
			ensure(h)
			current().Blocks = append(current().Blocks, Block{Kind: BlockImage, Image: part.Image, Text: s.Chart.Title, Height: h})
			y += h + g.Gap
		}
	}
	return pages, starts
}
