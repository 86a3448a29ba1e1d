package claims

import (
	"strings"

	"github.com/klytics/santekit/internal/normalize"
)

// Matcher tests one canonical header (accent-folded, uppercased, single
// spaced).
type Matcher interface {
	Match(header string) bool
}

// Exact matches headers equal to one of the given names.
type Exact []string

// Match implements Matcher.
func (e Exact) Match(header string) bool {
	for _, name := range e {
		if header == CanonicalHeader(name) {
			return true
		}
	}
	return false
}

// AllTokens matches headers containing every token as a substring and none
// of the excluded ones.
type AllTokens struct {
	Tokens  []string
	Exclude []string
}

// Match implements Matcher.
func (a AllTokens) Match(header string) bool {
	for _, tok := range a.Tokens {
		if !strings.Contains(header, CanonicalHeader(tok)) {
			return false
		}
	}
	for _, tok := range a.Exclude {
		if strings.Contains(header, CanonicalHeader(tok)) {
			return false
		}
	}
	return true
}

// Resolver locates a column by trying its matchers in priority order. The
// first matcher that hits any header wins; headers are scanned left to
// right. Fallback is the documented position used when nothing matches, or
// -1 for none.
type Resolver struct {
	Name     string
	Matchers []Matcher
	Fallback int
}

// Resolution is the outcome of Resolver.Resolve.
type Resolution struct {
	Index    int
	FellBack bool
}

// Found reports whether a usable column was located.
func (r Resolution) Found() bool {
	return r.Index >= 0
}

// Resolve returns the column index for header. A fallback position beyond
// the header width is treated as not found.
func (r Resolver) Resolve(header []string) Resolution {
	canon := make([]string, len(header))
	for i, h := range header {
		canon[i] = CanonicalHeader(h)
	}
	for _, m := range r.Matchers {
		for i, h := range canon {
			if h != "" && m.Match(h) {
				return Resolution{Index: i}
			}
		}
	}
	if r.Fallback >= 0 && r.Fallback < len(header) {
		return Resolution{Index: r.Fallback, FellBack: true}
	}
	return Resolution{Index: -1, FellBack: true}
}

// CanonicalHeader folds accents and applies normalize.Key.
func CanonicalHeader(s string) string {
	return normalize.Key(normalize.Fold(s))
}

// Column resolvers for the clause table and the family grouping.
var (
	ClauseMinColumn = Resolver{
		Name:     "tranche min",
		Matchers: []Matcher{Exact{"tranche min", "minimum", "min", "tranche_min", "rapport s/p min"}},
		Fallback: -1,
	}
	ClauseMaxColumn = Resolver{
		Name:     "tranche max",
		Matchers: []Matcher{Exact{"tranche max", "maximum", "max", "tranche_max", "rapport s/p max"}},
		Fallback: -1,
	}
	FamilyCardColumn = Resolver{
		Name: "carte assuré principal",
		Matchers: []Matcher{
			AllTokens{Tokens: []string{"CARTE", "ASSURE", "PRINCIPAL"}},
		},
		Fallback: ColCard,
	}
	FamilyNameColumn = Resolver{
		Name: "nom assuré principal",
		Matchers: []Matcher{
			AllTokens{Tokens: []string{"NOM", "ASSURE", "PRINCIPAL"}},
			AllTokens{Tokens: []string{"ASSURE", "PRINCIPAL"}, Exclude: []string{"CARTE"}},
		},
		Fallback: ColPrincipal,
	}
)
