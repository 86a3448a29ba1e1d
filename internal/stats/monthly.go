package stats

import (
	"fmt"
	"sort"

	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/normalize"
)

// withRejections applies the rejection rule shared by the monthly and
// specialty sections: when the rejection column holds at least one value,
// only claims with a numeric rejection are kept and rejections are
// reported; otherwise every claim is kept, rejections are left out and a
// warning is raised.
func withRejections(d *claims.Detail, section string) ([]claims.Claim, bool, claims.Warnings) {
	var warns claims.Warnings
	if !d.HasRejections() {
		warns.Add(section, "rejection column (column %d) is missing or empty; processing without rejection filtering", claims.ColRejection)
		return d.Claims, false, warns
	}
	var kept []claims.Claim
	for _, c := range d.Claims {
		if !normalize.IsMissing(c.Rejection) {
			kept = append(kept, c)
		}
	}
	return kept, true, warns
}

type monthTotals struct {
	label     string
	count     int
	realCost  float64
	covered   float64
	rejection float64
}

// MonthlySection groups claims by calendar month, in chronological order,
// with a grouped bar chart of covered amounts and rejections.
func MonthlySection(d *claims.Detail) (*Section, claims.Warnings, error) {
	if len(d.Claims) == 0 {
		return nil, nil, ErrNoData
	}
	dated := 0
	for _, c := range d.Claims {
		if c.Dated() {
			dated++
		}
	}
	if dated == 0 {
		return nil, nil, fmt.Errorf("claim date column (column %d) holds no valid date: %w", claims.ColDate, ErrNoData)
	}

	rows, hasRejections, warns := withRejections(d, claims.SectionMonthly)

	groups := make(map[string]*monthTotals)
	var labels []string
	undated := 0
	for _, c := range rows {
		if !c.Dated() {
			undated++
			continue
		}
		label := normalize.MonthLabel(c.Date)
		g, ok := groups[label]
		if !ok {
			g = &monthTotals{label: label}
			groups[label] = g
			labels = append(labels, label)
		}
		g.count++
		g.realCost += sum(c.RealCost)
		g.covered += sum(c.Covered)
		g.rejection += sum(c.Rejection)
	}
	if undated > 0 {
		warns.Add(claims.SectionMonthly, "%d claim(s) without a valid date were ignored", undated)
	}
	if len(labels) == 0 {
		warns.Add(claims.SectionMonthly, "no claim left after rejection filtering")
		return nil, warns, ErrNoData
	}

	sortMonthLabels(labels)

	cols := []string{"MOIS", "Nombre de Sinistres", "Frais réels", "Montant Couvert"}
	if hasRejections {
		cols = append(cols, "Rejets")
	}
	t := &Table{Columns: cols}
	c := &Chart{
		Kind:   ChartGroupedBar,
		Title:  "Montants Couverts et Rejets par Mois",
		XLabel: "Mois",
		YLabel: "Montant (FCFA)",
		File:   FileMonthlyChart,
		Series: []Series{{Name: "Montant Couvert", Color: ColorGreen}},
	}
	if hasRejections {
		c.Series = append(c.Series, Series{Name: "Rejets", Color: ColorOrange})
	}

	var total monthTotals
	total.label = TotalLabel
	for _, label := range labels {
		g := groups[label]
		t.Rows = append(t.Rows, Row{Cells: monthCells(g, hasRejections)})
		c.Labels = append(c.Labels, label)
		c.Series[0].Values = append(c.Series[0].Values, g.covered)
		if hasRejections {
			c.Series[1].Values = append(c.Series[1].Values, g.rejection)
		}
		total.count += g.count
		total.realCost += g.realCost
		total.covered += g.covered
		total.rejection += g.rejection
	}
	t.Rows = append(t.Rows, Row{Cells: monthCells(&total, hasRejections), Total: true})

	return &Section{Key: claims.SectionMonthly, Title: TitleMonthly, Table: t, Chart: c}, warns, nil
}

// sortMonthLabels orders localized month labels chronologically by parsing
// them back into dates. Unparseable labels go last, in input order.
func sortMonthLabels(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		ti, okI := normalize.ParseMonthLabel(labels[i])
		tj, okJ := normalize.ParseMonthLabel(labels[j])
		if okI != okJ {
			return okI
		}
		return okI && ti.Before(tj)
	})
}

func monthCells(g *monthTotals, hasRejections bool) []string {
	cells := []string{
		g.label,
		normalize.FormatCount(g.count),
		normalize.FormatAmount(g.realCost),
		normalize.FormatAmount(g.covered),
	}
	if hasRejections {
		cells = append(cells, normalize.FormatAmount(g.rejection))
	}
	return cells
}
