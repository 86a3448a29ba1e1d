// Package normalize canonicalizes the free-text, numeric and date values
// found in the claim spreadsheets.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Empty is the placeholder displayed for empty names.
const Empty = "(vide)"

// Display budget for insurer and client names in headers, footers and file
// names.
const (
	DisplayWords = 4
	DisplayChars = 30
)

var (
	multiSpace   = regexp.MustCompile(`\s+`)
	unsafeInName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// Key trims, uppercases and collapses internal whitespace runs to one space.
// Every join and filter key (insurer, client) goes through Key so that
// lookups across files survive casing and spacing differences.
func Key(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return multiSpace.ReplaceAllString(strings.ToUpper(s), " ")
}

// Fold removes diacritics ("ASSURÉ" becomes "ASSURE").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ShortenName shortens a display name to at most maxChars runes.
//
// Whole trailing words are dropped before anything is cut mid-word: when the
// first two words already use more than half of the budget only two are kept,
// when the first three use more than two thirds only three are kept,
// otherwise up to maxWords. A first word that alone exceeds maxChars-5 is cut
// and suffixed with "...". Empty input yields Empty.
func ShortenName(s string, maxWords, maxChars int) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	if s == "" {
		return Empty
	}
	if maxWords < 1 {
		maxWords = 1
	}
	if maxChars < 4 {
		maxChars = 4
	}

	words := strings.Fields(s)
	if utf8.RuneCountInString(words[0]) > maxChars-5 {
		return ellipsize(words[0], maxChars)
	}

	n := maxWords
	switch {
	case len(words) >= 2 && runeLen(words[:2]) > maxChars/2:
		n = 2
	case len(words) >= 3 && runeLen(words[:3]) > maxChars*2/3:
		n = 3
	}
	if n > maxWords {
		n = maxWords
	}
	if n > len(words) {
		n = len(words)
	}

	out := strings.Join(words[:n], " ")
	if utf8.RuneCountInString(out) > maxChars {
		return ellipsize(out, maxChars)
	}
	return out
}

// FileName builds the suggested report file name from the insurer and client
// names, e.g. "ALLIANZ_ACME_SARL_rapport_sante.pdf".
func FileName(insurer, client, ext string) string {
	part := func(s string) string {
		s = Fold(ShortenName(s, DisplayWords, DisplayChars))
		s = unsafeInName.ReplaceAllString(s, "_")
		return strings.Trim(s, "_")
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "pdf"
	}
	return part(insurer) + "_" + part(client) + "_rapport_sante." + ext
}

func runeLen(words []string) int {
	return utf8.RuneCountInString(strings.Join(words, " "))
}

func ellipsize(s string, maxChars int) string {
	r := []rune(s)
	keep := maxChars - 3
	if keep > len(r) {
		keep = len(r)
	}
	return strings.TrimRightFunc(string(r[:keep]), unicode.IsSpace) + "..."
}
