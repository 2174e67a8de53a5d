package validate

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are the accepted input formats, tried in order
var dateLayouts = []string{"02/01/2006", "02-01-2006", "2006-01-02"}

// CanonicalDateLayout is the normalized output format (DD/MM/YYYY)
const CanonicalDateLayout = "02/01/2006"

// Date checks a date against the accepted layouts. On success the
// message is the date normalized to DD/MM/YYYY.
func Date(raw string) (bool, string) {
	t, err := ParseDate(raw)
	if err != nil {
		return false, err.Error()
	}
	return true, t.Format(CanonicalDateLayout)
}

// ParseDate parses a date in any accepted layout.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format: %s (expected DD/MM/YYYY)", s)
}

// DatesCoherent requires start strictly before end when both are given.
func DatesCoherent(startRaw, endRaw string) (bool, string) {
	start, err := ParseDate(startRaw)
	if err != nil {
		return false, fmt.Sprintf("invalid start date: %s", startRaw)
	}
	end, err := ParseDate(endRaw)
	if err != nil {
		return false, fmt.Sprintf("invalid end date: %s", endRaw)
	}

	if start.Before(end) {
		return true, "dates coherent"
	}
	return false, fmt.Sprintf("incoherent dates: start (%s) is not before end (%s)",
		start.Format(CanonicalDateLayout), end.Format(CanonicalDateLayout))
}
