package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/klytics/santekit/internal/stats"
)

var (
	titleStyle     = color.New(color.FgGreen, color.Bold)
	headerStyle    = color.New(color.Bold, color.Underline)
	highlightStyle = color.New(color.FgBlack, color.BgGreen)
	totalStyle     = color.New(color.Bold)
)

// WriteSection prints a report section as an aligned terminal table. The
// clause row in force is shown on a green background and the total row in
// bold. Cells that look numeric are right-aligned.
func WriteSection(w io.Writer, s *stats.Section) {
	titleStyle.Fprintln(w, s.Title)
	if s.Table == nil || len(s.Table.Columns) == 0 {
		fmt.Fprintln(w)
		return
	}
	t := s.Table
	widths := columnWidths(t)

	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = pad(strings.ToUpper(c), widths[i], false)
	}
	fmt.Fprintln(w, headerStyle.Sprint(strings.Join(headers, "  ")))

	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i := range t.Columns {
			v := cellAt(row.Cells, i)
			cells[i] = pad(v, widths[i], numeric(v))
		}
		line := strings.Join(cells, "  ")
		switch {
		case row.Highlight:
			line = highlightStyle.Sprint(line)
		case row.Total:
			line = totalStyle.Sprint(line)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}

func columnWidths(t *stats.Table) []int {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for _, row := range t.Rows {
		for i := range widths {
			if n := utf8.RuneCountInString(cellAt(row.Cells, i)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

func pad(s string, width int, right bool) string {
	gap := width - utf8.RuneCountInString(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

// numeric reports whether a display value is an amount, count or percent
// such as "1 250 000", "12%" or "-".
func numeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == ' ' || r == '\u00a0' || r == '\u202f' || r == '%' || r == '-' || r == ',' || r == '.':
		default:
			return false
		}
	}
	return true
}
