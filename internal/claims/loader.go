package claims

import (
	"errors"
	"fmt"
	"strings"

	"github.com/klytics/santekit/internal/formats/xlsx"
	"github.com/klytics/santekit/internal/normalize"
)

// DetailSheet is the sheet the claim detail must be stored in.
const DetailSheet = "DETAIL"

// ErrMissingColumns is wrapped by loader errors when required columns are
// absent.
var ErrMissingColumns = errors.New("missing required columns")

// Production workbook headers, matched exactly.
const (
	HeaderPolicyID      = "Id Police Ankara"
	HeaderInsurerPolicy = "N° Police Assureur"
	HeaderInsurer       = "Assureur"
	HeaderClient        = "Client"
	HeaderNetWritten    = "Primes Émises Nettes"
	HeaderEarned        = "Primes Acquises"
	HeaderClaims        = "Sinistres"
	HeaderRatio         = "S/P"
)

var productionHeaders = []string{
	HeaderPolicyID, HeaderInsurerPolicy, HeaderInsurer, HeaderClient,
	HeaderNetWritten, HeaderEarned, HeaderClaims, HeaderRatio,
}

var headcountHeaders = []string{"MOIS", "ASSUREUR", "CLIENT", "ADHERENT", "CONJOINT", "ENFANT", "TOTAL"}

// LoadDetail reads the DETAIL sheet of the claim workbook at path.
func LoadDetail(path string) (*Detail, error) {
	sheet, err := xlsx.ReadSheet(path, DetailSheet)
	if err != nil {
		return nil, fmt.Errorf("could not load claim detail: %w", err)
	}
	return ParseDetail(sheet)
}

// ParseDetail converts an already read DETAIL sheet.
func ParseDetail(sheet *xlsx.Sheet) (*Detail, error) {
	header := sheet.Header()
	if len(header) < MinDetailColumns {
		return nil, fmt.Errorf("%w: sheet %q has %d columns, at least %d expected",
			ErrMissingColumns, sheet.Name, len(header), MinDetailColumns)
	}

	d := &Detail{Header: header}
	for _, row := range sheet.Records() {
		d.Claims = append(d.Claims, parseClaim(row))
	}
	return d, nil
}

func parseClaim(row []string) Claim {
	rejection := xlsx.Cell(row, ColRejection)
	c := Claim{
		Client:       normalize.Key(xlsx.Cell(row, ColClient)),
		Policy:       normalize.Key(xlsx.Cell(row, ColPolicy)),
		Card:         xlsx.Cell(row, ColCard),
		Filiation:    xlsx.Cell(row, ColFiliation),
		Principal:    xlsx.Cell(row, ColPrincipal),
		Provider:     xlsx.Cell(row, ColProvider),
		City:         xlsx.Cell(row, ColCity),
		Commune:      xlsx.Cell(row, ColCommune),
		Specialty:    xlsx.Cell(row, ColSpecialty),
		Insurer:      normalize.Key(xlsx.Cell(row, ColInsurer)),
		RealCost:     normalize.ParseAmount(xlsx.Cell(row, ColRealCost)),
		Covered:      normalize.ParseAmount(xlsx.Cell(row, ColCovered)),
		Rejection:    normalize.ParseAmount(rejection),
		RejectionSet: rejection != "",
		Raw:          append([]string(nil), row...),
	}
	if t, ok := normalize.ParseDate(xlsx.Cell(row, ColDate)); ok {
		c.Date = t
	}
	return c
}

// LoadProduction reads the production workbook at path.
func LoadProduction(path string) (*Production, error) {
	sheet, err := xlsx.ReadSheet(path, "")
	if err != nil {
		return nil, fmt.Errorf("could not load production: %w", err)
	}
	return ParseProduction(sheet)
}

// ParseProduction converts an already read production sheet. Every header
// of the production layout must be present, spelled exactly.
func ParseProduction(sheet *xlsx.Sheet) (*Production, error) {
	idx := make(map[string]int)
	for i, h := range sheet.Header() {
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	var missing []string
	for _, h := range productionHeaders {
		if _, ok := idx[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w in production sheet: %s (expected %s)",
			ErrMissingColumns, strings.Join(missing, ", "), strings.Join(productionHeaders, ", "))
	}

	p := &Production{}
	for _, row := range sheet.Records() {
		p.Rows = append(p.Rows, ProductionRow{
			PolicyID:      normalize.Key(xlsx.Cell(row, idx[HeaderPolicyID])),
			InsurerPolicy: xlsx.Cell(row, idx[HeaderInsurerPolicy]),
			Insurer:       normalize.Key(xlsx.Cell(row, idx[HeaderInsurer])),
			Client:        normalize.Key(xlsx.Cell(row, idx[HeaderClient])),
			NetWritten:    xlsx.Cell(row, idx[HeaderNetWritten]),
			Earned:        xlsx.Cell(row, idx[HeaderEarned]),
		})
	}
	return p, nil
}

// LoadHeadcount reads the headcount workbook at path. Rows whose month does
// not parse are dropped with a warning.
func LoadHeadcount(path string) ([]HeadcountRecord, Warnings, error) {
	sheet, err := xlsx.ReadSheet(path, "")
	if err != nil {
		return nil, nil, fmt.Errorf("could not load headcount: %w", err)
	}
	return ParseHeadcount(sheet)
}

// ParseHeadcount converts an already read headcount sheet. Headers are
// matched ignoring case, accents and spacing.
func ParseHeadcount(sheet *xlsx.Sheet) ([]HeadcountRecord, Warnings, error) {
	idx := make(map[string]int)
	for i, h := range sheet.Header() {
		key := CanonicalHeader(h)
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	var missing []string
	for _, h := range headcountHeaders {
		if _, ok := idx[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w in headcount sheet: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var (
		out     []HeadcountRecord
		warns   Warnings
		dropped int
	)
	for _, row := range sheet.Records() {
		month, ok := normalize.ParseDate(xlsx.Cell(row, idx["MOIS"]))
		if !ok {
			dropped++
			continue
		}
		out = append(out, HeadcountRecord{
			Month:     month,
			Insurer:   normalize.Key(xlsx.Cell(row, idx["ASSUREUR"])),
			Client:    normalize.Key(xlsx.Cell(row, idx["CLIENT"])),
			Principal: normalize.ParseAmount(xlsx.Cell(row, idx["ADHERENT"])),
			Spouse:    normalize.ParseAmount(xlsx.Cell(row, idx["CONJOINT"])),
			Child:     normalize.ParseAmount(xlsx.Cell(row, idx["ENFANT"])),
			Total:     normalize.ParseAmount(xlsx.Cell(row, idx["TOTAL"])),
		})
	}
	if dropped > 0 {
		warns.Add(SectionHeadcount, "%d row(s) with an unreadable MOIS were ignored", dropped)
	}
	return out, warns, nil
}

// LoadClauses reads the adjustment clause workbook at path.
func LoadClauses(path string) (*ClauseTable, Warnings, error) {
	sheet, err := xlsx.ReadSheet(path, "")
	if err != nil {
		return nil, nil, fmt.Errorf("could not load clauses: %w", err)
	}
	ct, warns := ParseClauses(sheet)
	return ct, warns, nil
}

// ParseClauses converts an already read clause sheet. The band bounds are
// fractions in the file and become whole-percent display strings. Without
// both bound columns the table is kept as is and never highlighted.
func ParseClauses(sheet *xlsx.Sheet) (*ClauseTable, Warnings) {
	var warns Warnings
	header := sheet.Header()
	minCol := ClauseMinColumn.Resolve(header)
	maxCol := ClauseMaxColumn.Resolve(header)

	ct := &ClauseTable{Header: header, HasBounds: minCol.Found() && maxCol.Found()}
	if !ct.HasBounds {
		warns.Add(SectionClause, "columns 'Rapport S/P min' or 'Rapport S/P max' (or equivalent) not found; the clause table is shown without highlighting")
	}

	for _, row := range sheet.Records() {
		cells := make([]string, len(header))
		for i := range cells {
			cells[i] = xlsx.Cell(row, i)
		}
		band := ClauseBand{Cells: cells}
		minOK, maxOK := false, false
		if minCol.Found() {
			band.Min, minOK = percentCell(cells, minCol.Index)
		}
		if maxCol.Found() {
			band.Max, maxOK = percentCell(cells, maxCol.Index)
		}
		band.Banded = minOK && maxOK
		ct.Bands = append(ct.Bands, band)
	}
	return ct, warns
}

// percentCell rewrites a fractional cell as a whole percent in place and
// returns that percent. Cells already written as "NN%" are accepted.
func percentCell(cells []string, col int) (int, bool) {
	raw := cells[col]
	var ratio float64
	if strings.HasSuffix(raw, "%") {
		ratio = normalize.ParseAmount(strings.TrimSuffix(raw, "%")) / 100
	} else {
		ratio = normalize.ParseAmount(raw)
	}
	if normalize.IsMissing(ratio) {
		return 0, false
	}
	cells[col] = normalize.FormatPercent(ratio)
	return normalize.Percent(ratio), true
}

// Choices lists the selection values offered for a claim detail.
type Choices struct {
	Insurers []string            `json:"insurers"`
	Clients  []string            `json:"clients"`
	Policies map[string][]string `json:"policies"`
}

// Options collects the distinct insurers, clients and policies per client,
// each in order of first appearance.
func Options(d *Detail) Choices {
	ch := Choices{Policies: make(map[string][]string)}
	seenInsurer := make(map[string]bool)
	seenClient := make(map[string]bool)
	seenPolicy := make(map[[2]string]bool)
	for _, c := range d.Claims {
		if c.Insurer != "" && !seenInsurer[c.Insurer] {
			seenInsurer[c.Insurer] = true
			ch.Insurers = append(ch.Insurers, c.Insurer)
		}
		if c.Client == "" {
			continue
		}
		if !seenClient[c.Client] {
			seenClient[c.Client] = true
			ch.Clients = append(ch.Clients, c.Client)
		}
		key := [2]string{c.Client, c.Policy}
		if c.Policy != "" && !seenPolicy[key] {
			seenPolicy[key] = true
			ch.Policies[c.Client] = append(ch.Policies[c.Client], c.Policy)
		}
	}
	return ch
}
