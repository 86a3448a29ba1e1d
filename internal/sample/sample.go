// Package sample writes a synthetic but realistic set of input workbooks:
// a DETAIL claim listing, the PRODUCTION premiums, the monthly EFFECTIF
// headcount and an adjustment clause table. The data is generated from a
// seed so that two runs with the same options produce the same files.
package sample

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strconv"
	"time"

	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/formats/xlsx"
	"github.com/klytics/santekit/internal/report"
)

// File names written by Write.
const (
	DetailFile     = "DETAIL.xlsx"
	ProductionFile = "PRODUCTION.xlsx"
	HeadcountFile  = "EFFECTIF.xlsx"
	ClauseFile     = "CLAUSE_AJUSTEMENT_SANTE.xlsx"
)

// Options shapes the generated data.
type Options struct {
	Insurer       string
	Client        string
	Policy        string
	InsurerPolicy string
	Families      int
	Months        int
	Start         time.Time
	Seed          int64
	// Noise adds claims of another client under the same insurer.
	Noise int
}

// Defaults returns a one-year contract of 40 families.
func Defaults() Options {
	return Options{
		Insurer:       "NSIA ASSURANCES",
		Client:        "ACME INDUSTRIES CI",
		Policy:        "ANK-2024-0001",
		InsurerPolicy: "NS-SANTE-2024-118",
		Families:      40,
		Months:        12,
		Start:         time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Seed:          1,
		Noise:         50,
	}
}

// Selection is the contract the generated data is about.
func (o Options) Selection() claims.Selection {
	return claims.Selection{Insurer: o.Insurer, Client: o.Client, Policy: o.Policy}
}

var (
	lastNames  = []string{"KOUASSI", "YAO", "TRAORE", "KONE", "DIALLO", "BAMBA", "N'GUESSAN", "OUATTARA", "COULIBALY", "AKA"}
	firstNames = []string{"JEAN", "MARIE", "ALI", "AWA", "SERGE", "AMINATA", "PAUL", "FATOU", "ERIC", "MARIAM"}
	providers  = []struct{ name, city, commune string }{
		{"CLINIQUE SAINTE ANNE MARIE", "ABIDJAN", "COCODY"},
		{"PHARMACIE DU PLATEAU", "ABIDJAN", "PLATEAU"},
		{"LABORATOIRE CENTRAL DE BIOLOGIE MEDICALE", "ABIDJAN", "MARCORY"},
		{"POLYCLINIQUE INTERNATIONALE", "ABIDJAN", "COCODY"},
		{"PHARMACIE DES ROSES", "BOUAKE", "KOKO"},
		{"CENTRE MEDICAL LES GRACES", "YAMOUSSOUKRO", "HABITAT"},
		{"CABINET DENTAIRE DU LAC", "ABIDJAN", "RIVIERA"},
		{"OPTIQUE VISION PLUS", "ABIDJAN", "TREICHVILLE"},
	}
	specialties = []struct {
		name     string
		min, max int
	}{
		{"CONSULTATION", 10000, 25000},
		{"PHARMACIE", 3000, 60000},
		{"ANALYSES", 8000, 45000},
		{"HOSPITALISATION", 150000, 900000},
		{"DENTAIRE", 20000, 120000},
		{"OPTIQUE", 40000, 180000},
		{"IMAGERIE", 25000, 90000},
	}
)

type member struct {
	filiation string
}

type family struct {
	card, principal string
	members         []member
}

// Write generates the four workbooks in dir and returns their paths.
func Write(dir string, o Options) (report.Inputs, error) {
	if o.Families <= 0 || o.Months <= 0 {
		return report.Inputs{}, fmt.Errorf("sample needs families and months, got %d and %d", o.Families, o.Months)
	}
	r := rand.New(rand.NewSource(o.Seed))
	families := makeFamilies(r, o.Families, "C")

	in := report.Inputs{
		Detail:     filepath.Join(dir, DetailFile),
		Production: filepath.Join(dir, ProductionFile),
		Headcount:  filepath.Join(dir, HeadcountFile),
		Clause:     filepath.Join(dir, ClauseFile),
	}

	detail, covered := detailRows(r, o, families)
	if err := xlsx.WriteFile(&xlsx.Workbook{Sheets: []xlsx.Sheet{{Name: claims.DetailSheet, Rows: detail}}}, in.Detail); err != nil {
		return in, err
	}

	// Premiums are set so that the ratio lands between 55% and 95%.
	earned := covered / (0.55 + r.Float64()*0.4)
	production := [][]string{
		{claims.HeaderPolicyID, claims.HeaderInsurerPolicy, claims.HeaderInsurer, claims.HeaderClient,
			claims.HeaderNetWritten, claims.HeaderEarned, claims.HeaderClaims, claims.HeaderRatio},
		{o.Policy, o.InsurerPolicy, o.Insurer, o.Client, amount(earned * 1.1), amount(earned), amount(covered), ""},
		{"ANK-2024-0099", "XX-01", o.Insurer, "AUTRE CLIENT", "1000000", "900000", "", ""},
	}
	if err := xlsx.WriteFile(&xlsx.Workbook{Sheets: []xlsx.Sheet{{Name: "PRODUCTION", Rows: production}}}, in.Production); err != nil {
		return in, err
	}

	if err := xlsx.WriteFile(&xlsx.Workbook{Sheets: []xlsx.Sheet{{Name: "EFFECTIF", Rows: headcountRows(o, families)}}}, in.Headcount); err != nil {
		return in, err
	}

	clauses := [][]string{
		{"Tranche Min", "Tranche Max", "Ajustement de prime"},
		{"0", "0.6", "Ristourne de 10%"},
		{"0.61", "0.75", "Aucun ajustement"},
		{"0.76", "0.9", "Majoration de 10%"},
		{"0.91", "5", "Majoration de 25%"},
	}
	if err := xlsx.WriteFile(&xlsx.Workbook{Sheets: []xlsx.Sheet{{Name: "CLAUSE", Rows: clauses}}}, in.Clause); err != nil {
		return in, err
	}
	return in, nil
}

func makeFamilies(r *rand.Rand, n int, prefix string) []family {
	families := make([]family, n)
	for i := range families {
		f := family{
			card:      fmt.Sprintf("%s%05d", prefix, i+1),
			principal: lastNames[r.Intn(len(lastNames))] + " " + firstNames[r.Intn(len(firstNames))],
			members:   []member{{"ADHERENT"}},
		}
		if r.Intn(3) > 0 {
			f.members = append(f.members, member{"CONJOINT"})
		}
		for k := r.Intn(4); k > 0; k-- {
			f.members = append(f.members, member{"ENFANT"})
		}
		families[i] = f
	}
	return families
}

func detailHeader() []string {
	header := make([]string, claims.ColInsurer+1)
	for i := range header {
		header[i] = "Champ " + strconv.Itoa(i+1)
	}
	header[claims.ColDate] = "Date Soins"
	header[claims.ColClient] = "Client"
	header[claims.ColPolicy] = "Police"
	header[claims.ColCard] = "N° Carte Assuré Principal"
	header[claims.ColFiliation] = "Filiation"
	header[claims.ColPrincipal] = "Nom Assuré Principal"
	header[claims.ColProvider] = "Prestataire"
	header[claims.ColCity] = "Ville"
	header[claims.ColCommune] = "Commune"
	header[claims.ColSpecialty] = "Spécialité"
	header[claims.ColRealCost] = "Frais Réels"
	header[claims.ColCovered] = "Montant Couvert"
	header[claims.ColRejection] = "Montant Rejeté"
	header[claims.ColInsurer] = "Assureur"
	return header
}

func detailRows(r *rand.Rand, o Options, families []family) ([][]string, float64) {
	rows := [][]string{detailHeader()}
	var covered float64
	for m := 0; m < o.Months; m++ {
		month := o.Start.AddDate(0, m, 0)
		days := month.AddDate(0, 1, -1).Day()
		for _, f := range families {
			for c := r.Intn(3); c > 0; c-- {
				row, cov := claimRow(r, o.Insurer, o.Client, o.Policy, f, month.AddDate(0, 0, r.Intn(days)))
				rows = append(rows, row)
				covered += cov
			}
		}
	}

	others := makeFamilies(r, 5, "X")
	for i := 0; i < o.Noise; i++ {
		f := others[r.Intn(len(others))]
		day := o.Start.AddDate(0, r.Intn(o.Months), r.Intn(28))
		row, _ := claimRow(r, o.Insurer, "AUTRE CLIENT", "ANK-2024-0099", f, day)
		rows = append(rows, row)
	}
	return rows, covered
}

func claimRow(r *rand.Rand, insurer, client, policy string, f family, day time.Time) ([]string, float64) {
	p := providers[r.Intn(len(providers))]
	s := specialties[r.Intn(len(specialties))]
	cost := float64(s.min + r.Intn(s.max-s.min))
	covered := cost * 0.8
	rejection := 0.0
	if r.Intn(10) == 0 {
		rejection = cost * 0.2
		covered = cost * 0.6
	}

	row := make([]string, claims.ColInsurer+1)
	row[claims.ColDate] = day.Format("02/01/2006")
	row[claims.ColClient] = client
	row[claims.ColPolicy] = policy
	row[claims.ColCard] = f.card
	row[claims.ColFiliation] = f.members[r.Intn(len(f.members))].filiation
	row[claims.ColPrincipal] = f.principal
	row[claims.ColProvider] = p.name
	row[claims.ColCity] = p.city
	row[claims.ColCommune] = p.commune
	row[claims.ColSpecialty] = s.name
	row[claims.ColRealCost] = amount(cost)
	row[claims.ColCovered] = amount(covered)
	row[claims.ColRejection] = amount(rejection)
	row[claims.ColInsurer] = insurer
	return row, covered
}

func headcountRows(o Options, families []family) [][]string {
	rows := [][]string{{"MOIS", "ASSUREUR", "CLIENT", "ADHERENT", "CONJOINT", "ENFANT", "TOTAL"}}
	var spouses, children int
	for _, f := range families {
		for _, m := range f.members {
			switch m.filiation {
			case "CONJOINT":
				spouses++
			case "ENFANT":
				children++
			}
		}
	}
	principals := len(families)
	for m := 0; m < o.Months; m++ {
		// One family joins every quarter.
		if m > 0 && m%3 == 0 {
			principals++
			children++
		}
		rows = append(rows, []string{
			o.Start.AddDate(0, m, 0).Format("02/01/2006"),
			o.Insurer, o.Client,
			strconv.Itoa(principals), strconv.Itoa(spouses), strconv.Itoa(children),
			strconv.Itoa(principals + spouses + children),
		})
	}
	return rows
}

func amount(v float64) string {
	return strconv.FormatFloat(float64(int64(v+0.5)), 'f', 0, 64)
}
