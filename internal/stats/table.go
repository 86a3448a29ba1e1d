// Package stats computes the report sections of a filtered claim detail:
// the claims-ratio summary, the adjustment clause, the headcount evolution
// and the consumption breakdowns.
package stats

import (
	"errors"
	"math"

	"github.com/klytics/santekit/internal/normalize"
)

// ErrNoData is returned by an aggregation whose input is empty. The section
// is skipped.
var ErrNoData = errors.New("no data for section")

// TotalLabel labels the grand-total row of every table.
const TotalLabel = "Total général"

// Section titles, in report order.
const (
	TitleSummary       = "Section I - Sinistralité"
	TitleClause        = "Clause Ajustement Santé"
	TitleHeadcount     = "Section II - Évolution des effectifs"
	TitleBeneficiaries = "Section III - Consommation par type de bénéficiaire"
	TitleMonthly       = "Section IV - Consommation mensuelle"
	TitleSpecialties   = "Section V - Consommation par spécialité"
	TitleProviders     = "Section VI - Top des prestataires"
	TitleFamilies      = "Section VII - Top des Familles de Consommateurs"
)

// Palette used by the charts.
const (
	ColorGreen  = "#279244"
	ColorOrange = "#f77f00"
	ColorCoral  = "#ff6f61"
	ColorTeal   = "#2a9d8f"
	ColorNavy   = "#264653"
)

// Palette lists the chart colors in assignment order.
var Palette = []string{ColorGreen, ColorOrange, ColorCoral, ColorTeal, ColorNavy}

// Row is one table row of display strings.
type Row struct {
	Cells     []string `json:"cells"`
	Highlight bool     `json:"highlight,omitempty"`
	Total     bool     `json:"total,omitempty"`
}

// Table is a formatted result table. Widths are column widths in
// millimetres; nil means equal widths over the printable width.
type Table struct {
	Columns []string  `json:"columns"`
	Widths  []float64 `json:"widths,omitempty"`
	Rows    []Row     `json:"rows"`
}

// ChartKind selects how a chart is drawn.
type ChartKind string

const (
	ChartLine       ChartKind = "line"
	ChartBar        ChartKind = "bar"
	ChartGroupedBar ChartKind = "grouped_bar"
	ChartPie        ChartKind = "pie"
)

// Aspect is the height to width ratio charts of this kind are drawn at.
func (k ChartKind) Aspect() float64 {
	if k == ChartPie {
		return 0.75
	}
	return 0.5
}

// Series is one named value series of a chart, aligned with Chart.Labels.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
	Color  string    `json:"color"`
}

// Chart describes what a chart shows; drawing it is the chart backend's
// job. File is the fixed artifact name the image is written under.
type Chart struct {
	Kind   ChartKind `json:"kind"`
	Title  string    `json:"title"`
	XLabel string    `json:"x_label,omitempty"`
	YLabel string    `json:"y_label,omitempty"`
	Labels []string  `json:"labels"`
	Series []Series  `json:"series"`
	File   string    `json:"file"`
}

// Section is one computed report section. Inline sections continue on the
// current page instead of starting a new one.
type Section struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Table  *Table `json:"table"`
	Chart  *Chart `json:"chart,omitempty"`
	Inline bool   `json:"inline,omitempty"`
}

// Chart artifact names.
const (
	FileHeadcountChart   = "graph_effectif.png"
	FileBeneficiaryChart = "graph_benef.png"
	FileMonthlyChart     = "graph_mensuel.png"
	FileSpecialtyChart   = "graph_specialite.png"
)

// sum adds values, skipping missing ones.
func sum(vals ...float64) float64 {
	var total float64
	for _, v := range vals {
		if !normalize.IsMissing(v) {
			total += v
		}
	}
	return total
}

// maxOf returns the largest non-missing value, or 0.
func maxOf(vals []float64) float64 {
	best := math.Inf(-1)
	for _, v := range vals {
		if !normalize.IsMissing(v) && v > best {
			best = v
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}
