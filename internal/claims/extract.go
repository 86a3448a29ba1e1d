package claims

import (
	"fmt"

	"github.com/klytics/santekit/internal/formats/xlsx"
)

// ExtractSheet is the sheet name of the filtered detail extract.
const ExtractSheet = "DETAIL_FILTRÉ"

// WriteExtract writes the header and the source rows of d to a new workbook
// at path.
func WriteExtract(d *Detail, path string) error {
	if len(d.Claims) == 0 {
		return fmt.Errorf("could not write extract: %w", ErrEmptySelection)
	}
	rows := make([][]string, 0, len(d.Claims)+1)
	rows = append(rows, d.Header)
	for _, c := range d.Claims {
		rows = append(rows, c.Raw)
	}
	wb := &xlsx.Workbook{Sheets: []xlsx.Sheet{{Name: ExtractSheet, Rows: rows}}}
	return xlsx.WriteFile(wb, path)
}
