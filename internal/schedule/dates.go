package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CanonicalDateLayout is the date form used for all matching and sorting.
const CanonicalDateLayout = "2006-01-02"

var (
	canonicalDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dayFirstDatePattern  = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
)

// fallbackDateLayouts are tried in order when the input matches neither the
// canonical form nor the day-first pattern. Spreadsheet exports have shown up
// in every one of these.
var fallbackDateLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02-Jan-2006",
}

// NormalizeDate converts an arbitrary date string to YYYY-MM-DD. The second
// return value reports whether the result is canonical; when false the
// original string is returned unchanged and the record will not match or sort
// reliably.
//
// Day-first inputs like 23/01/2026 are interpreted as day/month/year, never
// month/day/year.
func NormalizeDate(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return raw, false
	}
	if canonicalDatePattern.MatchString(value) {
		return value, true
	}
	if parts := dayFirstDatePattern.FindStringSubmatch(value); parts != nil {
		day, _ := strconv.Atoi(parts[1])
		month, _ := strconv.Atoi(parts[2])
		year, _ := strconv.Atoi(parts[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
		}
		return raw, false
	}
	for _, layout := range fallbackDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format(CanonicalDateLayout), true
		}
	}
	return raw, false
}

// NormalizeTimeRange collapses whitespace and unifies the separator of a
// "10:00-12:00" style range so ranges written with an en-dash or padded
// hyphen compare equal.
func NormalizeTimeRange(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.ReplaceAll(value, "–", "-")
	start, end, ok := strings.Cut(value, "-")
	if !ok {
		return value
	}
	return strings.TrimSpace(start) + "-" + strings.TrimSpace(end)
}

// SplitTimeRange breaks a range into start and end parts. Without a
// separator the whole string becomes the start and the end is empty.
func SplitTimeRange(raw string) (string, string) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), "–", "-")
	start, end, ok := strings.Cut(value, "-")
	if !ok {
		return strings.TrimSpace(value), ""
	}
	return strings.TrimSpace(start), strings.TrimSpace(end)
}
