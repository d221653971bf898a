package schedule

import (
	"fmt"
	"time"

	"github.com/lcastiglione/go-schedule/internal/config"
)

// ToMillis returns t as milliseconds since the Unix epoch.
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// ParseToMillis parses s with ParseDate and returns epoch milliseconds.
// Dates without an offset are read in the default zone, so
// "2023-05-19" yields 1684465200000.
func ParseToMillis(s string) (int64, error) {
	t, err := ParseDate(s)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// FromMillis converts epoch milliseconds to a time in the default zone.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).In(defaultLocation)
}

// SecondsOfDay returns the whole seconds elapsed since midnight on t's wall clock.
func SecondsOfDay(t time.Time) int {
	hh, mm, ss := t.Clock()
	return hh*3600 + mm*60 + ss
}

// FormatSeconds renders a number of seconds as H:MM:SS. Hours are not capped at 24.
func FormatSeconds(seconds int) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%d:%02d:%02d", sign, seconds/3600, seconds%3600/60, seconds%60)
}

// ParseDate parses s in the default zone using the first matching layout.
func ParseDate(s string) (time.Time, error) {
	return ParseDateIn(s, defaultLocation)
}

// ParseDateIn tries each layout of config.DateLayouts in order. Values
// carrying their own offset (or Z) keep it; others are read in loc.
func ParseDateIn(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range config.DateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableDate, s)
}

// ParseDates parses every entry of values, failing on the first bad one.
func ParseDates(values []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(values))
	for i, v := range values {
		t, err := ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}
