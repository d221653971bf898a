package schedule

import (
	"sort"
	"time"

	"github.com/jinzhu/now"
	"github.com/lcastiglione/go-schedule/internal/config"
)

// Holiday is a named non-working civil date.
type Holiday struct {
	Date time.Time
	Name string
}

// civil identifies a calendar day independently of time of day and zone.
type civil struct {
	year  int
	month time.Month
	day   int
}

func civilOf(t time.Time) civil {
	y, m, d := t.Date()
	return civil{y, m, d}
}

// Calendar decides which days are business days: Monday to Friday, minus
// holidays. A Calendar is immutable once built and safe for concurrent use.
type Calendar struct {
	holidays map[civil]string
	rules    []HolidayRule
}

// CalendarOption configures a Calendar.
type CalendarOption func(*Calendar)

// WithHolidays marks the civil dates of ts as holidays.
func WithHolidays(ts ...time.Time) CalendarOption {
	return func(c *Calendar) {
		for _, t := range ts {
			c.holidays[civilOf(t)] = config.FallbackName
		}
	}
}

// WithNamedHolidays adds holidays carrying a display name.
func WithNamedHolidays(hs ...Holiday) CalendarOption {
	return func(c *Calendar) {
		for _, h := range hs {
			name := h.Name
			if name == "" {
				name = config.FallbackName
			}
			c.holidays[civilOf(h.Date)] = name
		}
	}
}

// WithRules adds recurring holidays.
func WithRules(rules ...HolidayRule) CalendarOption {
	return func(c *Calendar) {
		c.rules = append(c.rules, rules...)
	}
}

// NewCalendar builds a Calendar. Without options only weekends are non-working.
func NewCalendar(opts ...CalendarOption) *Calendar {
	c := &Calendar{holidays: make(map[civil]string)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var weekdaysOnly = NewCalendar()

// HolidayName reports whether t falls on a holiday and its name.
func (c *Calendar) HolidayName(t time.Time) (string, bool) {
	if name, ok := c.holidays[civilOf(t)]; ok {
		return name, true
	}
	for _, r := range c.rules {
		if r.Occurs(t) {
			return r.Name, true
		}
	}
	return "", false
}

// IsBusinessDay reports whether t is a weekday that is not a holiday.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	_, holiday := c.HolidayName(t)
	return !holiday
}

// PrevBusinessDay returns the closest business day before t, keeping the time
// of day. With keep set, t itself is returned when it is a business day.
// The zero time is returned if none is found within ten years.
func (c *Calendar) PrevBusinessDay(t time.Time, keep bool) time.Time {
	return c.walk(t, keep, -1)
}

// NextBusinessDay is the forward counterpart of PrevBusinessDay.
func (c *Calendar) NextBusinessDay(t time.Time, keep bool) time.Time {
	return c.walk(t, keep, 1)
}

func (c *Calendar) walk(t time.Time, keep bool, step int) time.Time {
	if keep && c.IsBusinessDay(t) {
		return t
	}
	candidate := t
	for i := 0; i < config.MaxBusinessDaySteps; i++ {
		candidate = candidate.AddDate(0, 0, step)
		if c.IsBusinessDay(candidate) {
			return candidate
		}
	}
	return time.Time{}
}

// BusinessDaysBetween lists the business days in (start, end], each at midnight
// in start's zone.
func (c *Calendar) BusinessDaysBetween(start, end time.Time) []time.Time {
	var days []time.Time
	for day := start.AddDate(0, 0, 1); !day.After(end); day = day.AddDate(0, 0, 1) {
		if c.IsBusinessDay(day) {
			days = append(days, now.With(day).BeginningOfDay())
		}
	}
	return days
}

// LastBusinessDay returns the latest business day up to and including the day
// of ref, at midnight.
func (c *Calendar) LastBusinessDay(ref time.Time) time.Time {
	day := c.PrevBusinessDay(ref, true)
	if day.IsZero() {
		return day
	}
	return now.With(day).BeginningOfDay()
}

// Holidays lists holidays whose date lies in [from, to], sorted by date.
// Rule occurrences are reported at midnight in from's zone.
func (c *Calendar) Holidays(from, to time.Time) []Holiday {
	start := civilOf(from)
	end := civilOf(to)
	inRange := func(d civil) bool {
		return !before(d, start) && !before(end, d)
	}

	seen := make(map[civil]bool)
	var out []Holiday
	for d, name := range c.holidays {
		if inRange(d) {
			seen[d] = true
			out = append(out, Holiday{
				Date: time.Date(d.year, d.month, d.day, 0, 0, 0, 0, from.Location()),
				Name: name,
			})
		}
	}
	for _, r := range c.rules {
		for _, t := range r.Between(from, to) {
			d := civilOf(t)
			if seen[d] {
				continue
			}
			seen[d] = true
			out = append(out, Holiday{
				Date: time.Date(d.year, d.month, d.day, 0, 0, 0, 0, from.Location()),
				Name: r.Name,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func before(a, b civil) bool {
	if a.year != b.year {
		return a.year < b.year
	}
	if a.month != b.month {
		return a.month < b.month
	}
	return a.day < b.day
}

// IsBusinessDay reports whether t is a weekday not listed in holidays.
func IsBusinessDay(t time.Time, holidays ...time.Time) bool {
	if len(holidays) == 0 {
		return weekdaysOnly.IsBusinessDay(t)
	}
	return NewCalendar(WithHolidays(holidays...)).IsBusinessDay(t)
}

// PrevBusinessDay returns the weekday before t (or t itself with keep).
func PrevBusinessDay(t time.Time, keep bool) time.Time {
	return weekdaysOnly.PrevBusinessDay(t, keep)
}

// NextBusinessDay returns the weekday after t (or t itself with keep).
func NextBusinessDay(t time.Time, keep bool) time.Time {
	return weekdaysOnly.NextBusinessDay(t, keep)
}

// BusinessDaysBetween lists the weekdays in (start, end] at midnight.
func BusinessDaysBetween(start, end time.Time) []time.Time {
	return weekdaysOnly.BusinessDaysBetween(start, end)
}

// LastBusinessDay returns the latest weekday up to today, at midnight in the
// default zone.
func LastBusinessDay() time.Time {
	return weekdaysOnly.LastBusinessDay(Today())
}
