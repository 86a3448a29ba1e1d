// Package render draws an assembled report as print-ready HTML and prints
// that HTML to PDF through a headless Chromium.
package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/klytics/santekit/internal/report"
	"github.com/klytics/santekit/internal/stats"
)

// HTMLRenderer writes the document as a single self-contained HTML page:
// one A4 sheet per page, images inlined as data URIs.
type HTMLRenderer struct {
	md goldmark.Markdown
}

// NewHTMLRenderer returns a renderer converting tables through GFM.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// Ext implements report.Renderer.
func (r *HTMLRenderer) Ext() string { return "html" }

// Render implements report.Renderer.
func (r *HTMLRenderer) Render(_ context.Context, doc *report.Document, _ *report.BuildContext) ([]byte, error) {
	s, err := r.BuildHTML(doc)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// BuildHTML returns the HTML of the whole document.
func (r *HTMLRenderer) BuildHTML(doc *report.Document) (string, error) {
	var b strings.Builder
	b.WriteString("<!doctype html><html lang='fr'><head><meta charset='utf-8'><title>")
	b.WriteString(html.EscapeString(doc.Cover.Title))
	b.WriteString("</title><style>")
	b.WriteString(styleCSS(doc.Geometry))
	b.WriteString("</style></head><body>")

	for _, p := range doc.Pages {
		b.WriteString("<section class='page'>")
		if p.Number > 0 && doc.HeaderLogo != "" {
			img, err := dataURI(doc.HeaderLogo)
			if err == nil {
				b.WriteString("<img class='header-logo' src='" + img + "' alt=''>")
			}
		}
		b.WriteString("<div class='content'>")
		for _, blk := range p.Blocks {
			if err := r.writeBlock(&b, doc, blk); err != nil {
				return "", err
			}
		}
		b.WriteString("</div>")
		if p.Footer != "" {
			b.WriteString("<div class='footer'>" + html.EscapeString(p.Footer) + "</div>")
		}
		b.WriteString("</section>")
	}
	b.WriteString("</body></html>")
	return b.String(), nil
}

func (r *HTMLRenderer) writeBlock(b *strings.Builder, doc *report.Document, blk report.Block) error {
	switch blk.Kind {
	case report.BlockCover:
		writeCover(b, doc.Cover)
	case report.BlockContents:
		writeContents(b, blk.Text, doc.Contents)
	case report.BlockTitle:
		b.WriteString("<h2>" + html.EscapeString(blk.Text) + "</h2>")
	case report.BlockTable:
		t, err := r.table(blk)
		if err != nil {
			return err
		}
		b.WriteString(t)
	case report.BlockImage:
		img, err := dataURI(blk.Image)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "<figure><img src='%s' alt='%s' style='height:%.1fmm'></figure>",
			img, html.EscapeString(blk.Text), blk.Height)
	}
	return nil
}

func writeCover(b *strings.Builder, c report.Cover) {
	b.WriteString("<div class='cover'><div class='logos'>")
	for _, logo := range []string{c.Logo, c.InsurerLogo} {
		if logo == "" {
			continue
		}
		if img, err := dataURI(logo); err == nil {
			b.WriteString("<img src='" + img + "' alt=''>")
		}
	}
	b.WriteString("</div>")
	if c.Title != "" {
		b.WriteString("<h1>" + html.EscapeString(c.Title) + "</h1>")
	}
	b.WriteString("<dl>")
	for _, f := range [][2]string{
		{"Assureur", c.Insurer},
		{"Client", c.Client},
		{"N° Police", c.InsurerPolicy},
		{"Période", c.Period},
		{"Date d'édition", c.EditDate},
	} {
		if f[1] == "" {
			continue
		}
		b.WriteString("<dt>" + html.EscapeString(f[0]) + "</dt><dd>" + html.EscapeString(f[1]) + "</dd>")
	}
	b.WriteString("</dl>")
	if len(c.FooterLines) > 0 {
		b.WriteString("<div class='cover-footer'>")
		for _, l := range c.FooterLines {
			b.WriteString("<p>" + html.EscapeString(l) + "</p>")
		}
		b.WriteString("</div>")
	}
	b.WriteString("</div>")
}

func writeContents(b *strings.Builder, title string, entries []report.ContentsEntry) {
	b.WriteString("<h1 class='contents-title'>" + html.EscapeString(title) + "</h1><ol class='contents'>")
	for _, e := range entries {
		fmt.Fprintf(b, "<li><span class='entry'>%s</span><span class='leader'></span><span class='page-ref'>Page %d</span></li>",
			html.EscapeString(e.Title), e.Page)
	}
	b.WriteString("</ol>")
}

// table converts one table fragment to HTML through a GFM markdown table,
// then applies the column widths and row classes goldmark cannot express.
func (r *HTMLRenderer) table(blk report.Block) (string, error) {
	t := blk.Table
	var md strings.Builder
	md.WriteString("|")
	for _, c := range t.Columns {
		md.WriteString(" " + escapeCell(strings.ToUpper(c)) + " |")
	}
	md.WriteString("\n|")
	for range t.Columns {
		md.WriteString(" --- |")
	}
	md.WriteString("\n")

	classes := make([]string, 0, len(blk.Rows))
	for _, i := range blk.Rows {
		row := t.Rows[i]
		md.WriteString("|")
		for c := range t.Columns {
			cell := ""
			if c < len(row.Cells) {
				cell = row.Cells[c]
			}
			md.WriteString(" " + escapeCell(cell) + " |")
		}
		md.WriteString("\n")
		classes = append(classes, rowClass(row, i))
	}

	var out bytes.Buffer
	if err := r.md.Convert([]byte(md.String()), &out); err != nil {
		return "", fmt.Errorf("could not convert table: %w", err)
	}
	return applyTableHooks(out.String(), blk.Widths, classes, blk.Continued), nil
}

func rowClass(row stats.Row, i int) string {
	switch {
	case row.Total:
		return "total"
	case row.Highlight:
		return "highlight"
	case i%2 == 1:
		return "shaded"
	}
	return ""
}

// applyTableHooks inserts the colgroup and tags body rows with their class.
// Body rows are matched in order after <tbody>.
func applyTableHooks(tableHTML string, widths []float64, classes []string, continued bool) string {
	open := "<table>"
	if continued {
		open = "<table class='continued'>"
	}
	var cols strings.Builder
	if len(widths) > 0 {
		cols.WriteString("<colgroup>")
		for _, w := range widths {
			fmt.Fprintf(&cols, "<col style='width:%.1fmm'>", w)
		}
		cols.WriteString("</colgroup>")
	}
	out := strings.Replace(tableHTML, "<table>", open+cols.String(), 1)

	body := strings.Index(out, "<tbody>")
	if body < 0 {
		return out
	}
	head, rest := out[:body], out[body:]
	var b strings.Builder
	for _, class := range classes {
		i := strings.Index(rest, "<tr>")
		if i < 0 {
			break
		}
		b.WriteString(rest[:i])
		if class == "" {
			b.WriteString("<tr>")
		} else {
			b.WriteString("<tr class='" + class + "'>")
		}
		rest = rest[i+len("<tr>"):]
	}
	b.WriteString(rest)
	return head + b.String()
}

// escapeCell backslash-escapes ASCII punctuation so cell text is never read
// as markdown. Newlines become spaces.
func escapeCell(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r < 128 && strings.ContainsRune("\\`*_{}[]<>()#+-.!|~&\"'", r):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func dataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read image %s: %w", path, err)
	}
	typ := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if typ == "" {
		typ = "image/png"
	}
	return "data:" + typ + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func styleCSS(g report.Geometry) string {
	return fmt.Sprintf(`@page{size:A4;margin:0}
html,body,*{-webkit-print-color-adjust:exact !important;print-color-adjust:exact !important;}
body{margin:0;font-family:Helvetica,Arial,sans-serif;font-size:8pt;color:#222;}
.page{position:relative;width:%[1]gmm;height:%[2]gmm;overflow:hidden;page-break-after:always;break-after:page;}
.page:last-child{page-break-after:auto;break-after:auto;}
.header-logo{position:absolute;top:4mm;left:%[3]gmm;height:12mm;}
.content{position:absolute;top:%[4]gmm;left:%[3]gmm;right:%[3]gmm;}
.footer{position:absolute;bottom:8mm;left:0;right:0;text-align:center;font-size:7pt;color:#666;}
h2{height:%[5]gmm;margin:0 0 %[6]gmm 0;font-size:12pt;color:#%[7]s;}
table{width:100%%;border-collapse:collapse;table-layout:fixed;margin-bottom:%[6]gmm;}
th{background:#%[7]s;color:#fff;font-weight:bold;padding:%[10]gmm 1mm;border:%[12]gmm solid #999;line-height:%[8]gmm;text-align:center;word-wrap:break-word;}
td{padding:%[11]gmm 1mm;border:%[12]gmm solid #999;line-height:%[8]gmm;word-wrap:break-word;}
td:not(:first-child){text-align:right;}
tr.shaded td{background:#f2f2f2;}
tr.highlight td{background:#fde68a;font-weight:bold;}
tr.total td{background:#d9ead3;font-weight:bold;}
figure{margin:0;text-align:center;}
figure img{display:block;margin:0 auto;width:%[9]gmm;}
.cover{display:flex;flex-direction:column;align-items:center;padding-top:30mm;}
.cover .logos{display:flex;gap:20mm;align-items:center;}
.cover .logos img{height:30mm;}
.cover h1{margin-top:25mm;font-size:22pt;color:#%[7]s;text-align:center;}
.cover dl{margin-top:15mm;font-size:12pt;display:grid;grid-template-columns:auto auto;gap:3mm 8mm;}
.cover dt{font-weight:bold;}
.cover dd{margin:0;}
.cover-footer{position:absolute;bottom:15mm;left:0;right:0;text-align:center;font-size:7pt;color:#555;}
.cover-footer p{margin:0.5mm 0;}
.contents-title{text-align:center;font-size:16pt;margin:10mm 0;}
.contents{list-style:none;padding:0;font-size:11pt;}
.contents li{display:flex;align-items:baseline;margin:3mm 0;}
.contents .leader{flex:1;border-bottom:0.3mm dotted #555;margin:0 2mm;}
`, g.Width, g.Height, g.Margin, g.ContentTop, g.TitleHeight, g.Gap,
		strings.TrimPrefix(stats.ColorGreen, "#"), g.LineHeight, g.ImageWidth,
		g.HeadPadding, g.CellPadding, g.RuleWidth)
}
