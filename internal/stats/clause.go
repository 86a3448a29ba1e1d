package stats

import (
	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/normalize"
)

// MatchClause returns the index of the first band whose bounds contain the
// ratio rounded to a whole percent, bounds included, or -1.
func MatchClause(ratio float64, bands []claims.ClauseBand) int {
	r := normalize.Percent(ratio)
	for i, b := range bands {
		if b.Banded && b.Min <= r && r <= b.Max {
			return i
		}
	}
	return -1
}

// ClauseSection renders the clause table with the matching band
// highlighted. It follows the summary on the same page.
func ClauseSection(ct *claims.ClauseTable, ratio float64) (*Section, error) {
	if ct == nil || len(ct.Bands) == 0 {
		return nil, ErrNoData
	}
	active := -1
	if ct.HasBounds {
		active = MatchClause(ratio, ct.Bands)
	}
	t := &Table{Columns: ct.Header}
	for i, b := range ct.Bands {
		t.Rows = append(t.Rows, Row{Cells: b.Cells, Highlight: i == active})
	}
	return &Section{Key: claims.SectionClause, Title: TitleClause, Table: t, Inline: true}, nil
}
