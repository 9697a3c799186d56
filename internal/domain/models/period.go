package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a fiscal month as the ERP reports it.
type Period struct {
	Name        string // canonical "Mon YYYY" form, e.g. "Jan 2025"
	ID          int64
	StartDate   time.Time
	EndDate     time.Time
	FiscalYear  int
	IsYear      bool
	IsQuarter   bool
}

// monthAbbrev holds the canonical three-letter month names the ERP uses.
var monthAbbrev = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// FormatPeriodName renders a year/month pair in canonical "Mon YYYY" form.
func FormatPeriodName(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", monthAbbrev[month-1], year)
}

// spreadsheetEpoch is the day spreadsheet date serials count from (1899-12-30,
// matching the common Excel/Google Sheets 1900-date-system epoch).
var spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// NormalizePeriodName converts a caller-supplied period representation into
// the canonical "Mon YYYY" form. Accepted inputs: an already-canonical name
// (returned unchanged), an ISO date ("2025-01-31" or "2025-01-01"), or a
// spreadsheet date serial ("45678"). Any other input is an error.
func NormalizePeriodName(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", fmt.Errorf("normalize period: empty input")
	}

	if name, ok := parseCanonicalPeriodName(trimmed); ok {
		return name, nil
	}

	if t, err := time.Parse("2006-01-02", trimmed); err == nil {
		return FormatPeriodName(t.Year(), t.Month()), nil
	}

	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
		days := int(serial)
		t := spreadsheetEpoch.AddDate(0, 0, days)
		return FormatPeriodName(t.Year(), t.Month()), nil
	}

	return "", fmt.Errorf("normalize period: unrecognized period %q", input)
}

// parseCanonicalPeriodName reports whether s is already "Mon YYYY" and, if
// so, returns it reformatted to the exact canonical spelling (fixing case).
func parseCanonicalPeriodName(s string) (string, bool) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return "", false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil || year < 1900 || year > 2200 {
		return "", false
	}
	monName := capitalize(strings.ToLower(parts[0]))
	for i, m := range monthAbbrev {
		if m == monName {
			return FormatPeriodName(year, time.Month(i+1)), true
		}
	}
	return "", false
}

// capitalize upper-cases the first rune of s and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// LastDayOfYear returns the canonical period name for December of year.
func LastDayOfYear(year int) string {
	return FormatPeriodName(year, time.December)
}

// FirstMonthOfYear returns the canonical period name for January of year.
func FirstMonthOfYear(year int) string {
	return FormatPeriodName(year, time.January)
}

// EndDateOf returns the last calendar day of the month named by a
// canonical "Mon YYYY" period name.
func EndDateOf(periodName string) (time.Time, error) {
	parts := strings.Fields(periodName)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("end date of %q: not a canonical period name", periodName)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("end date of %q: bad year: %w", periodName, err)
	}
	month := -1
	for i, m := range monthAbbrev {
		if m == parts[0] {
			month = i + 1
			break
		}
	}
	if month < 0 {
		return time.Time{}, fmt.Errorf("end date of %q: bad month", periodName)
	}
	firstOfNext := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1), nil
}

// FiscalYearOf extracts the year component from a canonical period name.
func FiscalYearOf(periodName string) (int, error) {
	parts := strings.Fields(periodName)
	if len(parts) != 2 {
		return 0, fmt.Errorf("fiscal year of %q: not a canonical period name", periodName)
	}
	return strconv.Atoi(parts[1])
}

// LatestPeriod returns the chronologically latest of the given canonical
// period names. Spec §4.2 requires the cumulative WHERE bound to use this,
// not the last-listed period — a well-known hazard when callers submit
// periods out of order.
func LatestPeriod(periodNames []string) (string, error) {
	if len(periodNames) == 0 {
		return "", fmt.Errorf("latest period: empty set")
	}
	best := periodNames[0]
	bestEnd, err := EndDateOf(best)
	if err != nil {
		return "", err
	}
	for _, name := range periodNames[1:] {
		end, err := EndDateOf(name)
		if err != nil {
			return "", err
		}
		if end.After(bestEnd) {
			best = name
			bestEnd = end
		}
	}
	return best, nil
}
