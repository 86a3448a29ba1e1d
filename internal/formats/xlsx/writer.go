package xlsx

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// HeaderFill is the background color of the header row in written sheets.
const HeaderFill = "279244"

const maxColumnWidth = 50

// WriteFile saves wb at path. In every sheet the first row becomes a bold,
// filled header frozen above the data, columns are sized to their longest
// value and cells that parse as numbers are stored as numbers so that the
// extract stays summable. Rows are streamed.
func WriteFile(wb *Workbook, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{HeaderFill}},
	})
	if err != nil {
		return fmt.Errorf("could not create header style: %w", err)
	}

	for i, sheet := range wb.Sheets {
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			err = f.SetSheetName(f.GetSheetName(0), name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			return fmt.Errorf("could not create sheet %q: %w", name, err)
		}
		if err := streamSheet(f, name, sheet.Rows, header); err != nil {
			return fmt.Errorf("could not write sheet %q: %w", name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("could not save %s: %w", path, err)
	}
	return nil
}

func streamSheet(f *excelize.File, name string, rows [][]string, headerStyle int) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return err
	}

	// Widths and panes must be set before the first row.
	for col, w := range columnWidths(rows) {
		if err := sw.SetColWidth(col+1, col+1, w); err != nil {
			return err
		}
	}
	if len(rows) > 1 {
		if err := sw.SetPanes(&excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return err
		}
	}

	for r, row := range rows {
		values := make([]interface{}, len(row))
		for c, cell := range row {
			if r == 0 {
				values[c] = excelize.Cell{StyleID: headerStyle, Value: cell}
			} else {
				values[c] = cellValue(cell)
			}
		}
		ref, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := sw.SetRow(ref, values); err != nil {
			return fmt.Errorf("row %d: %w", r+1, err)
		}
	}
	return sw.Flush()
}

func columnWidths(rows [][]string) []float64 {
	var widths []float64
	for _, row := range rows {
		for c, cell := range row {
			for len(widths) <= c {
				widths = append(widths, 8)
			}
			w := float64(utf8.RuneCountInString(cell)) + 2
			if w > maxColumnWidth {
				w = maxColumnWidth
			}
			if w > widths[c] {
				widths[c] = w
			}
		}
	}
	return widths
}

func cellValue(s string) interface{} {
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}
