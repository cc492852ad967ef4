package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTimestamp = errors.New("model: invalid timestamp")

const dateOnlyLayout = "2006-01-02"

// Layouts without a zone are interpreted in the caller's location.
var zonedLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04Z07:00"}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp accepts the ISO-8601 forms seen in stored and remote tasks.
// dateOnly is true for plain calendar dates, which callers compare at day
// granularity.
func ParseTimestamp(s string, loc *time.Location) (ts time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range zonedLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, false, nil
		}
	}
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, false, nil
		}
	}
	if ts, err := time.ParseInLocation(dateOnlyLayout, s, loc); err == nil {
		return ts, true, nil
	}
	return time.Time{}, false, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// FormatTimestamp is the canonical wire form for instants this client writes.
func FormatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}

// StartOfDay truncates ts to midnight in its own location.
func StartOfDay(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}
