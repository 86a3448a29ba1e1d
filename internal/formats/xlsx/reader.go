// Package xlsx reads claim workbooks and writes the filtered extract.
package xlsx

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound is returned when a workbook has no sheet of the
// requested name, or no sheet at all.
var ErrSheetNotFound = errors.New("sheet not found")

// Sheet is the raw content of one worksheet. Cells hold raw values: dates
// are Excel serial numbers and amounts carry no display formatting.
type Sheet struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// Workbook is a set of sheets, as written by WriteFile.
type Workbook struct {
	Path   string  `json:"path"`
	Sheets []Sheet `json:"sheets"`
}

// ReadSheet reads one sheet of the workbook at path. An empty name selects
// the first sheet. Other sheets are not parsed: claim workbooks often carry
// large pivot sheets next to the data.
func ReadSheet(path, name string) (*Sheet, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	list := f.GetSheetList()
	if name == "" {
		if len(list) == 0 {
			return nil, fmt.Errorf("%s: %w: workbook has no sheets", path, ErrSheetNotFound)
		}
		name = list[0]
	} else if !contains(list, name) {
		return nil, fmt.Errorf("%s: %w: %q (available: %s)", path, ErrSheetNotFound, name, strings.Join(list, ", "))
	}
	return readSheet(f, name)
}

// ReadFile reads every sheet of the workbook at path.
func ReadFile(path string) (*Workbook, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	wb := &Workbook{Path: path}
	for _, name := range f.GetSheetList() {
		s, err := readSheet(f, name)
		if err != nil {
			return nil, fmt.Errorf("could not read %s: %w", path, err)
		}
		wb.Sheets = append(wb.Sheets, *s)
	}
	return wb, nil
}

func open(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s (is it an .xlsx workbook?): %w", path, err)
	}
	return f, nil
}

func readSheet(f *excelize.File, name string) (*Sheet, error) {
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", name, err)
	}
	return &Sheet{Name: name, Rows: rows}, nil
}

// Sheet returns the sheet with the given name.
func (wb *Workbook) Sheet(name string) (*Sheet, error) {
	names := make([]string, len(wb.Sheets))
	for i := range wb.Sheets {
		if wb.Sheets[i].Name == name {
			return &wb.Sheets[i], nil
		}
		names[i] = wb.Sheets[i].Name
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, name, strings.Join(names, ", "))
}

// Header returns the first row with each cell trimmed, or nil for an empty
// sheet.
func (s *Sheet) Header() []string {
	if len(s.Rows) == 0 {
		return nil
	}
	header := make([]string, len(s.Rows[0]))
	for i, h := range s.Rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	return header
}

// Records returns the rows below the header, without blank rows.
func (s *Sheet) Records() [][]string {
	if len(s.Rows) < 2 {
		return nil
	}
	var out [][]string
	for _, row := range s.Rows[1:] {
		if !blank(row) {
			out = append(out, row)
		}
	}
	return out
}

// Cell returns the trimmed row[col], or "" past the end of the row.
// excelize drops trailing empty cells, so short rows are normal.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
