package normalize

import (
	"math"
	"strconv"
	"strings"
)

var amountCleaner = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "")

// ParseAmount parses a spreadsheet amount. Space and no-break-space thousands
// separators and a lone decimal comma are accepted. Unparseable or empty
// values return NaN, the missing-value sentinel excluded from sums.
func ParseAmount(s string) float64 {
	s = amountCleaner.Replace(strings.TrimSpace(s))
	if s == "" {
		return math.NaN()
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// IsMissing reports whether v is the missing-value sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Ratio returns part/total, or 0 when total is zero or either side is missing.
func Ratio(part, total float64) float64 {
	if total == 0 || math.IsNaN(total) || math.IsNaN(part) {
		return 0
	}
	return part / total
}

// Percent rounds a ratio to the nearest whole percent (half away from zero).
func Percent(ratio float64) int {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0
	}
	return int(math.Round(ratio * 100))
}

// FormatPercent renders a ratio as a whole percent, e.g. 0.4286 -> "43%".
func FormatPercent(ratio float64) string {
	return strconv.Itoa(Percent(ratio)) + "%"
}

// FormatAmount renders an amount as a rounded integer with a space as the
// thousands separator, e.g. 1234567.6 -> "1 234 568". Missing values render
// as "0".
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return groupThousands(int64(math.Round(v)))
}

// FormatCount renders an integer count with the same grouping as amounts.
func FormatCount(n int) string {
	return groupThousands(int64(n))
}

func groupThousands(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(' ')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
