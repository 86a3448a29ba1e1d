// Package claims loads the four health-contract workbooks (claim detail,
// production, headcount, adjustment clauses) and scopes them to one contract
// selection.
package claims

import (
	"errors"
	"fmt"
	"time"

	"github.com/klytics/santekit/internal/normalize"
)

// ErrEmptySelection is returned when no claim row matches the selection.
var ErrEmptySelection = errors.New("no claim matches the selection")

// Zero-based positions of the DETAIL sheet columns.
const (
	ColDate      = 1
	ColClient    = 5
	ColPolicy    = 6
	ColCard      = 9
	ColFiliation = 10
	ColPrincipal = 11
	ColProvider  = 13
	ColCity      = 14
	ColCommune   = 15
	ColSpecialty = 17
	ColRealCost  = 20
	ColCovered   = 22
	ColRejection = 24
	ColInsurer   = 27

	// MinDetailColumns is the narrowest DETAIL header accepted: every
	// required position up to the covered amount must exist.
	MinDetailColumns = ColCovered + 1
)

// Claim is one row of the DETAIL sheet.
type Claim struct {
	Date      time.Time
	Client    string
	Policy    string
	Card      string
	Filiation string
	Principal string
	Provider  string
	City      string
	Commune   string
	Specialty string
	Insurer   string

	RealCost float64
	Covered  float64
	// Rejection is NaN when the cell is empty or not a number. RejectionSet
	// reports whether the cell held anything at all.
	Rejection    float64
	RejectionSet bool

	// Raw is the source row, kept for the filtered extract and for columns
	// located by header name.
	Raw []string
}

// Dated reports whether the claim date parsed.
func (c Claim) Dated() bool {
	return !c.Date.IsZero()
}

// Detail is the parsed DETAIL sheet.
type Detail struct {
	Header []string
	Claims []Claim
}

// HasRejectionColumn reports whether the header reaches the rejection column.
func (d *Detail) HasRejectionColumn() bool {
	return len(d.Header) > ColRejection
}

// HasRejections reports whether the rejection column exists and holds at
// least one non-empty cell.
func (d *Detail) HasRejections() bool {
	if !d.HasRejectionColumn() {
		return false
	}
	for _, c := range d.Claims {
		if c.RejectionSet {
			return true
		}
	}
	return false
}

// Selection identifies one contract: the insurer, the client and the
// internal policy id. InsurerPolicy is the insurer's own policy number,
// displayed in the summary only.
type Selection struct {
	Insurer       string `json:"insurer" yaml:"insurer"`
	Client        string `json:"client" yaml:"client"`
	Policy        string `json:"policy" yaml:"policy"`
	InsurerPolicy string `json:"insurer_policy,omitempty" yaml:"insurer_policy"`
}

// Normalized returns the selection with its join keys passed through
// normalize.Key.
func (s Selection) Normalized() Selection {
	return Selection{
		Insurer:       normalize.Key(s.Insurer),
		Client:        normalize.Key(s.Client),
		Policy:        normalize.Key(s.Policy),
		InsurerPolicy: s.InsurerPolicy,
	}
}

// Validate checks that the join keys are present.
func (s Selection) Validate() error {
	var missing []string
	if normalize.Key(s.Insurer) == "" {
		missing = append(missing, "insurer")
	}
	if normalize.Key(s.Client) == "" {
		missing = append(missing, "client")
	}
	if normalize.Key(s.Policy) == "" {
		missing = append(missing, "policy")
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete selection: missing %v", missing)
	}
	return nil
}

// ProductionRow is one row of the production workbook.
type ProductionRow struct {
	PolicyID      string
	InsurerPolicy string
	Insurer       string
	Client        string
	NetWritten    string
	Earned        string
}

// Production is the parsed production workbook.
type Production struct {
	Rows []ProductionRow
}

// Premiums are the production figures of one selection. Found is false when
// no production row matched.
type Premiums struct {
	NetWritten float64
	Earned     float64
	Found      bool
}

// HeadcountRecord is one month of the headcount workbook.
type HeadcountRecord struct {
	Month     time.Time
	Insurer   string
	Client    string
	Principal float64
	Spouse    float64
	Child     float64
	Total     float64
}

// ClauseBand is one row of the adjustment clause table. Cells hold the
// display values, with the band bounds already rendered as whole percents.
// Min and Max are whole percents; Banded is false when either bound is
// missing or unparseable, so the row can never be highlighted.
type ClauseBand struct {
	Cells  []string
	Min    int
	Max    int
	Banded bool
}

// ClauseTable is the parsed adjustment clause workbook. HasBounds is false
// when the min or max column could not be located.
type ClauseTable struct {
	Header    []string
	Bands     []ClauseBand
	HasBounds bool
}

// Section keys, used to attribute warnings and to identify report sections.
const (
	SectionDetail        = "detail"
	SectionProduction    = "production"
	SectionSummary       = "sinistralite"
	SectionClause        = "clause"
	SectionHeadcount     = "effectifs"
	SectionBeneficiaries = "beneficiaires"
	SectionMonthly       = "mensuel"
	SectionSpecialties   = "specialites"
	SectionProviders     = "prestataires"
	SectionFamilies      = "familles"
)

// Warning is a non-fatal problem attached to the section it affects.
type Warning struct {
	Section string `json:"section"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Section == "" {
		return w.Message
	}
	return w.Section + ": " + w.Message
}

// Warnings accumulates warnings in the order they were raised.
type Warnings []Warning

// Add appends a formatted warning for section.
func (ws *Warnings) Add(section, format string, args ...any) {
	*ws = append(*ws, Warning{Section: section, Message: fmt.Sprintf(format, args...)})
}
