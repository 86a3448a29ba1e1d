package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// monthNames is the display language of every month label in the report.
// It is a static table so labels never depend on the host locale.
var monthNames = [12]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// Day-first layouts come before ISO ones: the source files are French.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"2006/01/02",
}

// Excel serials outside this range are not dates (9999-12-31 is 2958465).
const (
	minDateSerial = 1
	maxDateSerial = 2958465
)

// ParseDate parses a spreadsheet date: an Excel date serial (raw cell value)
// or one of the text layouts above. The second result is false when the value
// is empty or unparseable.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < minDateSerial || serial > maxDateSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders t as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// MonthName returns the display name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// MonthLabel renders the calendar month of t, e.g. "Février 2024".
func MonthLabel(t time.Time) string {
	return MonthName(t.Month()) + " " + strconv.Itoa(t.Year())
}

// ParseMonthLabel reverses MonthLabel, returning the first day of the month.
// Matching ignores case and accents ("fevrier 2024" is accepted).
func ParseMonthLabel(label string) (time.Time, bool) {
	fields := strings.Fields(label)
	if len(fields) < 2 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return time.Time{}, false
	}
	name := Fold(strings.ToUpper(strings.Join(fields[:len(fields)-1], " ")))
	for i, m := range monthNames {
		if Fold(strings.ToUpper(m)) == name {
			return time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
