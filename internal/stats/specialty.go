package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/normalize"
)

type specialtyTotals struct {
	name      string
	count     int
	covered   float64
	rejection float64
}

// SpecialtySection groups claims by specialty, alphabetically, with a pie
// chart of the covered amounts. Empty specialties are grouped under
// normalize.Empty.
func SpecialtySection(d *claims.Detail) (*Section, claims.Warnings, error) {
	if len(d.Claims) == 0 {
		return nil, nil, ErrNoData
	}
	rows, hasRejections, warns := withRejections(d, claims.SectionSpecialties)
	if len(rows) == 0 {
		warns.Add(claims.SectionSpecialties, "no claim left after rejection filtering")
		return nil, warns, ErrNoData
	}

	groups := make(map[string]*specialtyTotals)
	var names []string
	for _, c := range rows {
		name := c.Specialty
		if name == "" {
			name = normalize.Empty
		}
		g, ok := groups[name]
		if !ok {
			g = &specialtyTotals{name: name}
			groups[name] = g
			names = append(names, name)
		}
		g.count++
		g.covered += sum(c.Covered)
		if hasRejections {
			g.rejection += sum(c.Rejection)
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToUpper(normalize.Fold(names[i])) < strings.ToUpper(normalize.Fold(names[j]))
	})

	t := &Table{Columns: []string{"Spécialité", "Nombre", "Couvert", "Rejets"}}
	var total specialtyTotals
	total.name = TotalLabel
	for _, name := range names {
		g := groups[name]
		t.Rows = append(t.Rows, Row{Cells: specialtyCells(g)})
		total.count += g.count
		total.covered += g.covered
		total.rejection += g.rejection
	}
	t.Rows = append(t.Rows, Row{Cells: specialtyCells(&total), Total: true})

	c := &Chart{
		Kind:   ChartPie,
		Title:  "Répartition par spécialité",
		File:   FileSpecialtyChart,
		Series: []Series{{Name: "Couvert"}},
	}
	for _, name := range names {
		g := groups[name]
		if g.covered <= 0 {
			continue
		}
		c.Labels = append(c.Labels, PieLabel(name, g.covered, total.covered))
		c.Series[0].Values = append(c.Series[0].Values, g.covered)
	}
	if len(c.Labels) == 0 {
		warns.Add(claims.SectionSpecialties, "no positive covered amount to chart")
		c = nil
	}

	return &Section{Key: claims.SectionSpecialties, Title: TitleSpecialties, Table: t, Chart: c}, warns, nil
}

// PieLabel labels a pie slice with its shortened name and its share of the
// total to one decimal, e.g. "PHARMACIE (42.5%)".
func PieLabel(name string, value, total float64) string {
	share := normalize.Ratio(value, total) * 100
	return fmt.Sprintf("%s (%.1f%%)", normalize.ShortenName(name, 2, 20), share)
}

func specialtyCells(g *specialtyTotals) []string {
	return []string{
		g.name,
		normalize.FormatCount(g.count),
		normalize.FormatAmount(g.covered),
		normalize.FormatAmount(g.rejection),
	}
}
