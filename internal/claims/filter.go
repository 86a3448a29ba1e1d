package claims

import (
	"github.com/klytics/santekit/internal/normalize"
)

// Filter returns the claims of the selected client. With matchPolicy the
// policy id must match as well. Keys are compared after normalize.Key, and
// filtering an already filtered detail with the same selection returns the
// same rows.
func Filter(d *Detail, sel Selection, matchPolicy bool) *Detail {
	sel = sel.Normalized()
	out := &Detail{Header: d.Header}
	for _, c := range d.Claims {
		if c.Client != sel.Client {
			continue
		}
		if matchPolicy && c.Policy != sel.Policy {
			continue
		}
		out.Claims = append(out.Claims, c)
	}
	return out
}

// LookupProduction returns the premiums of the selection. Rows are matched
// on insurer and client; when several match, the one carrying the selected
// policy id wins, otherwise the first. A missing row or non-numeric
// premiums yield zero premiums and a warning.
func LookupProduction(p *Production, sel Selection) (Premiums, ProductionRow, Warnings) {
	var warns Warnings
	sel = sel.Normalized()

	var (
		match ProductionRow
		found bool
	)
	for _, row := range p.Rows {
		if row.Insurer != sel.Insurer || row.Client != sel.Client {
			continue
		}
		if !found {
			match, found = row, true
		}
		if row.PolicyID == sel.Policy {
			match = row
			break
		}
	}
	if !found {
		warns.Add(SectionProduction, "no production row for insurer %q and client %q; premiums set to 0", sel.Insurer, sel.Client)
		return Premiums{}, ProductionRow{}, warns
	}

	net := normalize.ParseAmount(match.NetWritten)
	earned := normalize.ParseAmount(match.Earned)
	if normalize.IsMissing(net) || normalize.IsMissing(earned) {
		warns.Add(SectionProduction, "premiums %q / %q are not numbers; set to 0", match.NetWritten, match.Earned)
		return Premiums{Found: true}, match, warns
	}
	return Premiums{NetWritten: net, Earned: earned, Found: true}, match, warns
}

// FilterHeadcount returns the headcount rows of the selected insurer and
// client.
func FilterHeadcount(recs []HeadcountRecord, sel Selection) []HeadcountRecord {
	sel = sel.Normalized()
	var out []HeadcountRecord
	for _, r := range recs {
		if r.Insurer == sel.Insurer && r.Client == sel.Client {
			out = append(out, r)
		}
	}
	return out
}

// CoveredTotal sums the covered amounts, skipping missing values.
func CoveredTotal(claims []Claim) float64 {
	var total float64
	for _, c := range claims {
		if !normalize.IsMissing(c.Covered) {
			total += c.Covered
		}
	}
	return total
}

// ClaimsRatio is covered / earned, or 0 when earned is not positive.
func ClaimsRatio(covered, earned float64) float64 {
	if normalize.IsMissing(earned) || earned <= 0 || normalize.IsMissing(covered) {
		return 0
	}
	return covered / earned
}

// Summary is the claims-ratio record of a selection.
type Summary struct {
	PolicyID      string  `json:"policy_id"`
	InsurerPolicy string  `json:"insurer_policy"`
	Insurer       string  `json:"insurer"`
	Client        string  `json:"client"`
	NetWritten    float64 `json:"net_written_premium"`
	Earned        float64 `json:"earned_premium"`
	Claims        float64 `json:"claims"`
	Ratio         float64 `json:"ratio"`
}

// Summarize builds the claims-ratio record. Names are shortened for display
// and an empty insurer policy number shows as normalize.Empty.
func Summarize(sel Selection, prem Premiums, claims []Claim) Summary {
	covered := CoveredTotal(claims)
	insurerPolicy := sel.InsurerPolicy
	if insurerPolicy == "" {
		insurerPolicy = normalize.Empty
	}
	return Summary{
		PolicyID:      normalize.Key(sel.Policy),
		InsurerPolicy: insurerPolicy,
		Insurer:       normalize.ShortenName(sel.Insurer, normalize.DisplayWords, normalize.DisplayChars),
		Client:        normalize.ShortenName(sel.Client, normalize.DisplayWords, normalize.DisplayChars),
		NetWritten:    prem.NetWritten,
		Earned:        prem.Earned,
		Claims:        covered,
		Ratio:         ClaimsRatio(covered, prem.Earned),
	}
}

// Period describes the claim date range, e.g. "Du 03/01/2024 au 28/06/2024".
// It is false when no claim is dated.
func Period(claims []Claim) (string, bool) {
	var first, last Claim
	found := false
	for _, c := range claims {
		if !c.Dated() {
			continue
		}
		if !found || c.Date.Before(first.Date) {
			first = c
		}
		if !found || c.Date.After(last.Date) {
			last = c
		}
		found = true
	}
	if !found {
		return "", false
	}
	return "Du " + normalize.FormatDate(first.Date) + " au " + normalize.FormatDate(last.Date), true
}
