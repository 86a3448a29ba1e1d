package claims

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/klytics/santekit/internal/formats/xlsx"
)

func TestLoadDetail(t *testing.T) {
	path := writeWorkbook(t, "detail.xlsx", *detailSheet(
		claimRow{date: "45306", client: "  acme  sarl", policy: "p1", card: "C1", filiation: "ADHERENT",
			covered: "1500", realCost: "2000", rejection: "0", insurer: "allianz"},
		claimRow{date: "16/02/2024", client: "ACME SARL", policy: "P1", card: "C2", filiation: "ENFANT",
			covered: "abc", insurer: "ALLIANZ"},
	))

	d, err := LoadDetail(path)
	if err != nil {
		t.Fatalf("LoadDetail failed: %v", err)
	}
	if len(d.Claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(d.Claims))
	}

	c := d.Claims[0]
	if c.Client != "ACME SARL" || c.Policy != "P1" || c.Insurer != "ALLIANZ" {
		t.Errorf("keys not normalized: %+v", c)
	}
	if want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC); !c.Date.Equal(want) {
		t.Errorf("expected date %v, got %v", want, c.Date)
	}
	if c.Covered != 1500 || c.RealCost != 2000 {
		t.Errorf("unexpected amounts: covered=%v real=%v", c.Covered, c.RealCost)
	}
	if !c.RejectionSet || c.Rejection != 0 {
		t.Errorf("expected rejection 0 set, got %v set=%v", c.Rejection, c.RejectionSet)
	}

	c = d.Claims[1]
	if !math.IsNaN(c.Covered) {
		t.Errorf("expected NaN for non-numeric covered, got %v", c.Covered)
	}
	if c.RejectionSet {
		t.Error("expected empty rejection to be unset")
	}
	if c.Date.Month() != time.February {
		t.Errorf("expected February, got %v", c.Date)
	}
	if !d.HasRejections() {
		t.Error("expected HasRejections")
	}
}

func TestLoadDetailMissingSheet(t *testing.T) {
	sheet := *detailSheet()
	sheet.Name = "Feuil1"
	path := writeWorkbook(t, "detail.xlsx", sheet)

	_, err := LoadDetail(path)
	if !errors.Is(err, xlsx.ErrSheetNotFound) {
		t.Errorf("expected ErrSheetNotFound, got %v", err)
	}
}

func TestParseDetailTooNarrow(t *testing.T) {
	sheet := &xlsx.Sheet{Name: DetailSheet, Rows: [][]string{{"A", "B", "C"}}}
	_, err := ParseDetail(sheet)
	if !errors.Is(err, ErrMissingColumns) {
		t.Errorf("expected ErrMissingColumns, got %v", err)
	}
}

func TestParseDetailWithoutOptionalColumns(t *testing.T) {
	header := detailHeader()[:MinDetailColumns]
	row := make([]string, MinDetailColumns)
	row[ColClient] = "ACME"
	row[ColCovered] = "10"
	d, err := ParseDetail(&xlsx.Sheet{Name: DetailSheet, Rows: [][]string{header, row}})
	if err != nil {
		t.Fatalf("ParseDetail failed: %v", err)
	}
	if d.HasRejectionColumn() || d.HasRejections() {
		t.Error("expected no rejection column")
	}
	if d.Claims[0].Insurer != "" {
		t.Errorf("expected empty insurer, got %q", d.Claims[0].Insurer)
	}
}

func TestParseProduction(t *testing.T) {
	sheet := &xlsx.Sheet{Rows: [][]string{
		productionHeaders,
		{"p1", "AX-9", " allianz ", "acme", "1000000", "800000", "0", "0"},
	}}
	p, err := ParseProduction(sheet)
	if err != nil {
		t.Fatalf("ParseProduction failed: %v", err)
	}
	row := p.Rows[0]
	if row.PolicyID != "P1" || row.Insurer != "ALLIANZ" || row.Client != "ACME" || row.Earned != "800000" {
		t.Errorf("unexpected row %+v", row)
	}
}

func TestParseProductionMissingHeaders(t *testing.T) {
	sheet := &xlsx.Sheet{Rows: [][]string{{"Id Police Ankara", "Assureur", "Client"}}}
	_, err := ParseProduction(sheet)
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}
}

func TestParseHeadcount(t *testing.T) {
	sheet := &xlsx.Sheet{Rows: [][]string{
		{"Mois", " assureur", "CLIENT ", "Adhérent", "Conjoint", "Enfant", "Total"},
		{"01/03/2024", "Allianz", "Acme", "10", "4", "6", "20"},
		{"pas une date", "Allianz", "Acme", "1", "1", "1", "3"},
		{"45292", "Allianz", "Acme", "9", "4", "5", "18"},
	}}
	recs, warns, err := ParseHeadcount(sheet)
	if err != nil {
		t.Fatalf("ParseHeadcount failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if len(warns) != 1 || warns[0].Section != SectionHeadcount {
		t.Errorf("expected one headcount warning, got %v", warns)
	}
	if recs[0].Month.Month() != time.March || recs[0].Principal != 10 || recs[0].Client != "ACME" {
		t.Errorf("unexpected first record %+v", recs[0])
	}
	if recs[1].Month.Month() != time.January {
		t.Errorf("expected serial month January, got %v", recs[1].Month)
	}
}

func TestParseHeadcountMissingColumns(t *testing.T) {
	sheet := &xlsx.Sheet{Rows: [][]string{{"MOIS", "ASSUREUR", "CLIENT"}}}
	if _, _, err := ParseHeadcount(sheet); !errors.Is(err, ErrMissingColumns) {
		t.Errorf("expected ErrMissingColumns, got %v", err)
	}
}

func TestParseClauses(t *testing.T) {
	sheet := &xlsx.Sheet{Rows: [][]string{
		{"Rapport S/P min", "Rapport S/P max", "Ajustement"},
		{"0", "0.6", "Ristourne 10%"},
		{"0.61", "0.8", "Aucun"},
		{"81%", "", "Majoration"},
	}}
	ct, warns := ParseClauses(sheet)
	if len(warns) != 0 {
		t.Errorf("unexpected warnings %v", warns)
	}
	if !ct.HasBounds {
		t.Fatal("expected bounds to be located")
	}
	b := ct.Bands[0]
	if b.Cells[0] != "0%" || b.Cells[1] != "60%" || b.Min != 0 || b.Max != 60 || !b.Banded {
		t.Errorf("unexpected first band %+v", b)
	}
	if ct.Bands[1].Cells[2] != "Aucun" {
		t.Errorf("other columns must be verbatim, got %q", ct.Bands[1].Cells[2])
	}
	if b := ct.Bands[2]; b.Banded || b.Min != 81 {
		t.Errorf("band without max must not be banded: %+v", b)
	}
}

func TestParseClausesWithoutBounds(t *testing.T) {
	sheet := &xlsx.Sheet{Rows: [][]string{
		{"Borne basse", "Borne haute"},
		{"0", "0.6"},
	}}
	ct, warns := ParseClauses(sheet)
	if ct.HasBounds {
		t.Error("expected HasBounds false")
	}
	if len(warns) != 1 || warns[0].Section != SectionClause {
		t.Errorf("expected a clause warning, got %v", warns)
	}
	if ct.Bands[0].Cells[1] != "0.6" {
		t.Errorf("cells must stay verbatim without bounds, got %q", ct.Bands[0].Cells[1])
	}
}

func TestOptions(t *testing.T) {
	d, err := ParseDetail(detailSheet(
		claimRow{client: "beta", policy: "P2", insurer: "SUNU"},
		claimRow{client: "acme", policy: "P1", insurer: "ALLIANZ"},
		claimRow{client: "ACME", policy: "P3", insurer: "allianz"},
		claimRow{client: "acme", policy: "P1", insurer: "ALLIANZ"},
	))
	if err != nil {
		t.Fatalf("ParseDetail failed: %v", err)
	}
	ch := Options(d)
	if len(ch.Insurers) != 2 || ch.Insurers[0] != "SUNU" {
		t.Errorf("unexpected insurers %v", ch.Insurers)
	}
	if len(ch.Clients) != 2 || ch.Clients[1] != "ACME" {
		t.Errorf("unexpected clients %v", ch.Clients)
	}
	if p := ch.Policies["ACME"]; len(p) != 2 || p[0] != "P1" || p[1] != "P3" {
		t.Errorf("unexpected policies %v", p)
	}
}
