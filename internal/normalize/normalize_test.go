package normalize

import (
	"math"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  acme   sarl ", "ACME SARL"},
		{"Allianz\tCôte  d'Ivoire", "ALLIANZ CÔTE D'IVOIRE"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Key(tt.in); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFold(t *testing.T) {
	if got := Fold("ASSURÉ PRINCIPAL"); got != "ASSURE PRINCIPAL" {
		t.Errorf("Fold = %q", got)
	}
	if got := Fold("Février"); got != "Fevrier" {
		t.Errorf("Fold = %q", got)
	}
}

func TestShortenName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", Empty},
		{"whitespace only", "   \t ", Empty},
		{"short kept whole", "ACME SARL", "ACME SARL"},
		{"four words max", "SOCIETE IVOIRIENNE DE BANQUE ET FINANCE", "SOCIETE IVOIRIENNE"},
		{"three words when first three are long", "LA COMPAGNIE IVOIRIENNE D'ELECTRICITE", "LA COMPAGNIE IVOIRIENNE"},
		{"apostrophe kept inside word", "L'AFRICAINE DES ASSURANCES", "L'AFRICAINE DES ASSURANCES"},
		{"two words when first two are long", "ETABLISSEMENTS GENERAUX DU NORD", "ETABLISSEMENTS GENERAUX"},
		{"long first word cut", "ABCDEFGHIJKLMNOPQRSTUVWXYZABCDEFGH", "ABCDEFGHIJKLMNOPQRSTUVWXYZA..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortenName(tt.in, 4, 30); got != tt.want {
				t.Errorf("ShortenName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestShortenNameNeverExceedsBudget(t *testing.T) {
	inputs := []string{
		"A",
		"ÉTABLISSEMENTS PUBLICS NATIONAUX DE CÔTE D'IVOIRE",
		"NSIA ASSURANCES",
		"SUNU ASSURANCES VIE COTE D'IVOIRE SA",
		strings.Repeat("É", 80),
		"UN DEUX TROIS QUATRE CINQ SIX SEPT HUIT",
		"A B C D E F G H I J K L M N O P Q R S T U V W X Y Z",
	}
	for _, in := range inputs {
		got := ShortenName(in, 4, 30)
		if n := utf8.RuneCountInString(got); n > 30 {
			t.Errorf("ShortenName(%q) = %q has %d runes", in, got, n)
		}
	}
}

func TestFileName(t *testing.T) {
	got := FileName("Allianz Côte d'Ivoire", "ACME / SARL", "pdf")
	if got != "Allianz_Cote_d_Ivoire_ACME_SARL_rapport_sante.pdf" {
		t.Errorf("FileName = %q", got)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1234.5", 1234.5},
		{"1 234", 1234},
		{"1 234,5", 1234.5},
		{"1,234.5", 1234.5},
		{"-50", -50},
	}
	for _, tt := range tests {
		if got := ParseAmount(tt.in); got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	for _, in := range []string{"", "abc", "N/A", "  "} {
		if got := ParseAmount(in); !IsMissing(got) {
			t.Errorf("ParseAmount(%q) = %v, want NaN", in, got)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1 000"},
		{1234567.6, "1 234 568"},
		{-1500, "-1 500"},
		{math.NaN(), "0"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{150.0 / 350.0, "43%"},
		{200.0 / 350.0, "57%"},
		{0.125, "13%"},
		{1, "100%"},
		{0, "0%"},
		{math.NaN(), "0%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRatioZeroSafe(t *testing.T) {
	if got := Ratio(10, 0); got != 0 {
		t.Errorf("Ratio(10, 0) = %v", got)
	}
	if got := Ratio(math.NaN(), 5); got != 0 {
		t.Errorf("Ratio(NaN, 5) = %v", got)
	}
	if got := Ratio(1, 4); got != 0.25 {
		t.Errorf("Ratio(1, 4) = %v", got)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"45306", "15/01/2024", "2024-01-15"} {
		got, ok := ParseDate(in)
		if !ok {
			t.Errorf("ParseDate(%q) failed", in)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}
	for _, in := range []string{"", "hier", "-4"} {
		if _, ok := ParseDate(in); ok {
			t.Errorf("ParseDate(%q) should fail", in)
		}
	}
}

func TestMonthLabelRoundTrip(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		d := time.Date(2024, m, 17, 0, 0, 0, 0, time.UTC)
		label := MonthLabel(d)
		back, ok := ParseMonthLabel(label)
		if !ok {
			t.Fatalf("ParseMonthLabel(%q) failed", label)
		}
		if back.Month() != m || back.Year() != 2024 {
			t.Errorf("ParseMonthLabel(%q) = %v", label, back)
		}
	}
	if got := MonthLabel(time.Date(2023, time.August, 1, 0, 0, 0, 0, time.UTC)); got != "Août 2023" {
		t.Errorf("MonthLabel = %q", got)
	}
	if _, ok := ParseMonthLabel("fevrier 2024"); !ok {
		t.Error("accent-insensitive label should parse")
	}
	if _, ok := ParseMonthLabel("Total général"); ok {
		t.Error("non-month label should not parse")
	}
}
