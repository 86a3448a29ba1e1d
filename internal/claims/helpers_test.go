package claims

import (
	"path/filepath"
	"testing"

	"github.com/klytics/santekit/internal/formats/xlsx"
)

// detailHeader returns a DETAIL header reaching the insurer column.
func detailHeader() []string {
	h := make([]string, ColInsurer+1)
	for i := range h {
		h[i] = "COL" + string(rune('A'+i%26))
	}
	h[ColDate] = "Date Soins"
	h[ColClient] = "Client"
	h[ColPolicy] = "Police"
	h[ColCard] = "N° Carte Assuré Principal"
	h[ColFiliation] = "Filiation"
	h[ColPrincipal] = "Nom Assuré Principal"
	h[ColProvider] = "Prestataire"
	h[ColCity] = "Ville"
	h[ColCommune] = "Commune"
	h[ColSpecialty] = "Spécialité"
	h[ColRealCost] = "Frais Réels"
	h[ColCovered] = "Montant Couvert"
	h[ColRejection] = "Rejet"
	h[ColInsurer] = "Assureur"
	return h
}

type claimRow struct {
	date, client, policy, card, filiation, principal string
	provider, city, commune, specialty               string
	realCost, covered, rejection, insurer            string
}

func (r claimRow) cells() []string {
	row := make([]string, ColInsurer+1)
	row[ColDate] = r.date
	row[ColClient] = r.client
	row[ColPolicy] = r.policy
	row[ColCard] = r.card
	row[ColFiliation] = r.filiation
	row[ColPrincipal] = r.principal
	row[ColProvider] = r.provider
	row[ColCity] = r.city
	row[ColCommune] = r.commune
	row[ColSpecialty] = r.specialty
	row[ColRealCost] = r.realCost
	row[ColCovered] = r.covered
	row[ColRejection] = r.rejection
	row[ColInsurer] = r.insurer
	return row
}

func detailSheet(rows ...claimRow) *xlsx.Sheet {
	s := &xlsx.Sheet{Name: DetailSheet, Rows: [][]string{detailHeader()}}
	for _, r := range rows {
		s.Rows = append(s.Rows, r.cells())
	}
	return s
}

func writeWorkbook(t *testing.T, name string, sheets ...xlsx.Sheet) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := xlsx.WriteFile(&xlsx.Workbook{Sheets: sheets}, path); err != nil {
		t.Fatalf("could not write fixture %s: %v", name, err)
	}
	return path
}
