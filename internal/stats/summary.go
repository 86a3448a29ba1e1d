package stats

import (
	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/normalize"
)

// SummarySection renders the single-row claims-ratio table.
func SummarySection(s claims.Summary) *Section {
	return &Section{
		Key:   claims.SectionSummary,
		Title: TitleSummary,
		Table: &Table{
			Columns: []string{
				claims.HeaderPolicyID, claims.HeaderInsurerPolicy, claims.HeaderInsurer, claims.HeaderClient,
				claims.HeaderNetWritten, claims.HeaderEarned, claims.HeaderClaims, claims.HeaderRatio,
			},
			Rows: []Row{{Cells: []string{
				s.PolicyID,
				s.InsurerPolicy,
				s.Insurer,
				s.Client,
				normalize.FormatAmount(s.NetWritten),
				normalize.FormatAmount(s.Earned),
				normalize.FormatAmount(s.Claims),
				normalize.FormatPercent(s.Ratio),
			}}},
		},
	}
}
