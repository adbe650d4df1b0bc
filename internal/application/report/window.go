package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultHours is the look-back used when a request does not name one.
const DefaultHours = 6

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
	// Hours is the requested look-back. It is still reported when an
	// explicit range overrides it.
	Hours int
}

// LastHours returns the window [now-hours, now).
func LastHours(now time.Time, hours int) Window {
	now = now.UTC()
	return Window{Start: now.Add(-time.Duration(hours) * time.Hour), End: now, Hours: hours}
}

// ParseHours reads the hours parameter. An empty value yields def.
func ParseHours(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	hours, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: hours must be an integer, got %q", ErrInvalidInput, raw)
	}
	if hours < 1 {
		return 0, fmt.Errorf("%w: hours must be at least 1, got %d", ErrInvalidInput, hours)
	}
	return hours, nil
}

// ResolveWindow builds the report window. When both start and end are
// given they win over hours; otherwise the window covers the last hours.
func ResolveWindow(now time.Time, hours int, start, end string) (Window, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return LastHours(now, hours), nil
	}

	from, err := ParseTimestamp(start)
	if err != nil {
		return Window{}, fmt.Errorf("%w: start_time: %v", ErrInvalidInput, err)
	}
	to, err := ParseTimestamp(end)
	if err != nil {
		return Window{}, fmt.Errorf("%w: end_time: %v", ErrInvalidInput, err)
	}
	if !to.After(from) {
		return Window{}, fmt.Errorf("%w: end_time must be after start_time", ErrInvalidInput)
	}
	return Window{Start: from, End: to, Hours: hours}, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339, a zone-less date-time (read as UTC)
// or a bare date (UTC midnight).
func ParseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}
