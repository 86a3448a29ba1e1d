package stats

import (
	"sort"

	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/normalize"
)

// HeadcountSection lists the monthly headcount in chronological order with
// a line chart of the four counts.
func HeadcountSection(recs []claims.HeadcountRecord) (*Section, error) {
	if len(recs) == 0 {
		return nil, ErrNoData
	}
	sorted := append([]claims.HeadcountRecord(nil), recs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Month.Before(sorted[j].Month) })

	t := &Table{Columns: []string{"MOIS", "ADHERENT", "CONJOINTS", "ENFANTS", "TOTAL"}}
	c := &Chart{
		Kind:   ChartLine,
		Title:  "Évolution des effectifs",
		XLabel: "Mois",
		YLabel: "Effectifs",
		File:   FileHeadcountChart,
		Series: []Series{
			{Name: "Adherent", Color: ColorGreen},
			{Name: "Conjoints", Color: ColorOrange},
			{Name: "Enfants", Color: ColorCoral},
			{Name: "Total", Color: ColorTeal},
		},
	}
	for _, r := range sorted {
		label := normalize.MonthLabel(r.Month)
		t.Rows = append(t.Rows, Row{Cells: []string{
			label,
			normalize.FormatAmount(r.Principal),
			normalize.FormatAmount(r.Spouse),
			normalize.FormatAmount(r.Child),
			normalize.FormatAmount(r.Total),
		}})
		c.Labels = append(c.Labels, label)
		for i, v := range []float64{r.Principal, r.Spouse, r.Child, r.Total} {
			c.Series[i].Values = append(c.Series[i].Values, sum(v))
		}
	}
	return &Section{Key: claims.SectionHeadcount, Title: TitleHeadcount, Table: t, Chart: c}, nil
}
