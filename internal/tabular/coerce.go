package tabular

import (
	"strconv"
	"strings"
	"time"
)

// ParseNumber parses a cell as a float, tolerating thousands separators,
// currency symbols, percent signs and accounting-style negatives.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || strings.EqualFold(s, "n/a") || strings.EqualFold(s, "na") {
		return 0, false
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// dateLayouts are tried in order. Period-style values (2024-01, 2024Q1,
// Jan-2024) are accepted because financial exports often carry periods
// rather than full dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2-Jan-2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"2006-01",
	"Jan-2006",
	"January 2006",
	"2006",
}

// ParseDate parses a cell as a date in one of the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if q := parseQuarter(s); !q.IsZero() {
		return q, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	// Excel serial date numbers show up when cells lose their format.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 20000 && serial < 80000 {
		epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
		return epoch.AddDate(0, 0, int(serial)), true
	}
	return time.Time{}, false
}

// parseQuarter handles 2024Q1 / 2024-Q1 / Q1 2024 style periods, mapping
// each quarter to its first day.
func parseQuarter(s string) time.Time {
	s = strings.ToUpper(strings.ReplaceAll(s, "-", ""))
	s = strings.ReplaceAll(s, " ", "")
	var year, quarter int
	if n, _ := parseQuarterParts(s, &year, &quarter); n != 2 {
		return time.Time{}
	}
	if quarter < 1 || quarter > 4 || year < 1900 || year > 2200 {
		return time.Time{}
	}
	return time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
}

func parseQuarterParts(s string, year, quarter *int) (int, error) {
	if i := strings.Index(s, "Q"); i > 0 && i == len(s)-2 {
		y, err1 := strconv.Atoi(s[:i])
		q, err2 := strconv.Atoi(s[i+1:])
		if err1 == nil && err2 == nil {
			*year, *quarter = y, q
			return 2, nil
		}
	}
	if strings.HasPrefix(s, "Q") && len(s) >= 6 {
		q, err1 := strconv.Atoi(s[1:2])
		y, err2 := strconv.Atoi(s[2:])
		if err1 == nil && err2 == nil {
			*year, *quarter = y, q
			return 2, nil
		}
	}
	return 0, nil
}
