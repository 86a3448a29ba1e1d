package stats

import (
	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/normalize"
)

// Beneficiary categories, in display order.
const (
	CategoryPrincipal = "ASSURÉ PRINCIPAL"
	CategorySpouse    = "CONJOINT"
	CategoryChild     = "ENFANT"
)

var categories = [3]string{CategoryPrincipal, CategorySpouse, CategoryChild}

// filiations maps folded filiation spellings to a category index.
var filiations = map[string]int{
	"ADHERENT":         0,
	"ASSURE PRINCIPAL": 0,
	"CONJOINT":         1,
	"ENFANT":           2,
}

// Category returns the category index of a raw filiation label, or -1 for
// an unknown spelling.
func Category(filiation string) int {
	if i, ok := filiations[claims.CanonicalHeader(filiation)]; ok {
		return i
	}
	return -1
}

// BeneficiaryRow is the consumption of one beneficiary category.
type BeneficiaryRow struct {
	Category    string  `json:"category"`
	Patients    int     `json:"patients"`
	Headcount   float64 `json:"headcount"`
	Utilization float64 `json:"utilization"`
	Covered     float64 `json:"covered"`
	Share       float64 `json:"share"`
}

// Beneficiaries is the numeric consumption breakdown by category.
type Beneficiaries struct {
	Rows  [3]BeneficiaryRow `json:"rows"`
	Total BeneficiaryRow    `json:"total"`
}

// ComputeBeneficiaries counts unique patients per category, the first claim
// of a card deciding its category, and sums covered amounts per category.
// Utilization is patients over the largest headcount seen for the category;
// shares are of the categorized covered total. Both are 0 when their
// denominator is 0.
func ComputeBeneficiaries(rows []claims.Claim, headcount []claims.HeadcountRecord) Beneficiaries {
	var b Beneficiaries
	for i, name := range categories {
		b.Rows[i].Category = name
	}

	seen := make(map[string]bool)
	for _, c := range rows {
		cat := Category(c.Filiation)
		if !seen[c.Card] {
			seen[c.Card] = true
			if cat >= 0 {
				b.Rows[cat].Patients++
			}
		}
		if cat >= 0 {
			b.Rows[cat].Covered += sum(c.Covered)
		}
	}

	counts := [3][]float64{}
	for _, h := range headcount {
		counts[0] = append(counts[0], h.Principal)
		counts[1] = append(counts[1], h.Spouse)
		counts[2] = append(counts[2], h.Child)
	}

	b.Total.Category = TotalLabel
	for i := range b.Rows {
		b.Rows[i].Headcount = maxOf(counts[i])
		b.Total.Patients += b.Rows[i].Patients
		b.Total.Headcount += b.Rows[i].Headcount
		b.Total.Covered += b.Rows[i].Covered
	}
	for i := range b.Rows {
		r := &b.Rows[i]
		r.Utilization = normalize.Ratio(float64(r.Patients), r.Headcount)
		r.Share = normalize.Ratio(r.Covered, b.Total.Covered)
	}
	b.Total.Utilization = normalize.Ratio(float64(b.Total.Patients), b.Total.Headcount)
	b.Total.Share = 1
	return b
}

// BeneficiarySection renders the breakdown with a bar chart of covered
// amounts per category. Without headcount data utilization is 0 and a
// warning is raised.
func BeneficiarySection(rows []claims.Claim, headcount []claims.HeadcountRecord) (*Section, Beneficiaries, claims.Warnings, error) {
	var warns claims.Warnings
	if len(rows) == 0 {
		return nil, Beneficiaries{}, nil, ErrNoData
	}
	if len(headcount) == 0 {
		warns.Add(claims.SectionBeneficiaries, "no headcount for the selection; utilization rates are 0")
	}
	unknown := 0
	for _, c := range rows {
		if Category(c.Filiation) < 0 {
			unknown++
		}
	}
	if unknown > 0 {
		warns.Add(claims.SectionBeneficiaries, "%d claim(s) with an unknown filiation are not counted", unknown)
	}

	b := ComputeBeneficiaries(rows, headcount)
	t := &Table{Columns: []string{
		"Type de bénéficiaire", "Nombre de patients", "Effectif Total",
		"Taux d'utilisation", "Montant couvert", "Part de consommation",
	}}
	c := &Chart{
		Kind:   ChartBar,
		Title:  "Montants couverts par bénéficiaire",
		XLabel: "Type de bénéficiaire",
		YLabel: "Montant (FCFA)",
		File:   FileBeneficiaryChart,
		Series: []Series{{Name: "Montant couvert", Color: ColorGreen}},
	}
	for _, r := range b.Rows {
		t.Rows = append(t.Rows, Row{Cells: beneficiaryCells(r)})
		c.Labels = append(c.Labels, r.Category)
		c.Series[0].Values = append(c.Series[0].Values, r.Covered)
	}
	t.Rows = append(t.Rows, Row{Cells: beneficiaryCells(b.Total), Total: true})
	return &Section{Key: claims.SectionBeneficiaries, Title: TitleBeneficiaries, Table: t, Chart: c}, b, warns, nil
}

func beneficiaryCells(r BeneficiaryRow) []string {
	return []string{
		r.Category,
		normalize.FormatCount(r.Patients),
		normalize.FormatAmount(r.Headcount),
		normalize.FormatPercent(r.Utilization),
		normalize.FormatAmount(r.Covered),
		normalize.FormatPercent(r.Share),
	}
}
