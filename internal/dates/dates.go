// Package dates parses the date and time arguments accepted on the command
// line.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsValidDate checks if a string is a valid YYYY-MM-DD date.
func IsValidDate(s string) bool {
	if !dateRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// ParseDatetime parses RFC3339, YYYY-MM-DDTHH:MM or YYYY-MM-DDTHH:MM:SS.
// Values without a zone are read in loc.
func ParseDatetime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("invalid datetime: empty")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, format := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(format, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime: %q", s)
}

// ParseSince parses the lower bound of a time filter. It accepts:
// - "today" or "yesterday" (start of that day)
// - "YYYY-MM-DD" (start of that day in now's location)
// - a datetime accepted by ParseDatetime
// - a Go duration such as "90m" or "48h", counted back from now
func ParseSince(arg string, now time.Time) (time.Time, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	switch arg {
	case "":
		return time.Time{}, fmt.Errorf("invalid time: empty")
	case "today":
		return startOfDay(now), nil
	case "yesterday":
		return startOfDay(now).AddDate(0, 0, -1), nil
	}

	if IsValidDate(arg) {
		return time.ParseInLocation("2006-01-02", arg, now.Location())
	}
	if t, err := ParseDatetime(strings.ToUpper(arg), now.Location()); err == nil {
		return t, nil
	}
	if d, err := time.ParseDuration(arg); err == nil && d > 0 {
		return now.Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("invalid time '%s', use today, yesterday, YYYY-MM-DD, a datetime or a duration like 48h", arg)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
