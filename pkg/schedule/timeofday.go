package schedule

import (
	"fmt"
	"time"
)

const dayLength = 24 * time.Hour

// TimeOfDay is a wall-clock time within a day, from 00:00:00 up to 23:59:59.999999999.
// The zero value is midnight. Arithmetic wraps around midnight.
type TimeOfDay struct {
	sinceMidnight time.Duration
}

var timeOfDayLayouts = []string{"15:04:05", "15:04"}

// NewTimeOfDay builds a TimeOfDay; out of range values wrap (25:00 is 01:00).
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	d := time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second
	return TimeOfDay{}.AddDuration(d)
}

// TimeOfDayOf extracts the wall-clock part of t.
func TimeOfDayOf(t time.Time) TimeOfDay {
	hh, mm, ss := t.Clock()
	return TimeOfDay{
		sinceMidnight: time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute +
			time.Duration(ss)*time.Second + time.Duration(t.Nanosecond()),
	}
}

// ParseTimeOfDay accepts "15:04:05" or "15:04".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range timeOfDayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("%w: %q", ErrUnparsableDate, s)
}

// Hour returns the hour, 0 to 23.
func (t TimeOfDay) Hour() int { return int(t.sinceMidnight / time.Hour) }

// Minute returns the minute within the hour.
func (t TimeOfDay) Minute() int { return int(t.sinceMidnight % time.Hour / time.Minute) }

// Second returns the second within the minute.
func (t TimeOfDay) Second() int { return int(t.sinceMidnight % time.Minute / time.Second) }

// Seconds returns whole seconds elapsed since midnight.
func (t TimeOfDay) Seconds() int {
	return int(t.sinceMidnight / time.Second)
}

// Add shifts the time by the given hours, minutes and seconds, wrapping at midnight.
func (t TimeOfDay) Add(hours, minutes, seconds int) TimeOfDay {
	return t.AddDuration(time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second)
}

// AddDuration shifts the time by d, wrapping at midnight.
func (t TimeOfDay) AddDuration(d time.Duration) TimeOfDay {
	v := (t.sinceMidnight + d%dayLength) % dayLength
	if v < 0 {
		v += dayLength
	}
	return TimeOfDay{sinceMidnight: v}
}

// Sub returns t-u on the same day; it is negative when u is later than t.
func (t TimeOfDay) Sub(u TimeOfDay) time.Duration {
	return t.sinceMidnight - u.sinceMidnight
}

// On places the time of day on the civil date of date, in date's zone.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(t.sinceMidnight)
}

// String formats the time as HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// MarshalText implements encoding.TextMarshaler using String.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; it accepts the layouts of ParseTimeOfDay.
func (t *TimeOfDay) UnmarshalText(text []byte) (err error) {
	*t, err = ParseTimeOfDay(string(text))
	return
}

// MinutesBetween returns the minutes from start to end on the same day.
func MinutesBetween(start, end TimeOfDay) float64 {
	return end.Sub(start).Minutes()
}

// SlotsBetween returns how many slots of the given length fit between start and end.
func SlotsBetween(start, end TimeOfDay, slot time.Duration) float64 {
	if slot <= 0 {
		return 0
	}
	return float64(end.Sub(start)) / float64(slot)
}
