package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the machine-parseable formats tried first, most
// specific to least.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
}

// slashDateRe matches M/D/YY and M/D/YYYY business dates.
var slashDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)

// ParseBusinessDate parses a free-form business date. Standard layouts
// are tried first, then the numeric M/D/YY pattern where a two-digit
// year means 2000+YY. Anything else is reported as unparseable, never
// as an error.
func ParseBusinessDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	if m := slashDateRe.FindStringSubmatch(raw); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
