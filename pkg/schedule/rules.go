package schedule

import (
	"fmt"
	"time"

	"github.com/lcastiglione/go-schedule/internal/config"
	"github.com/teambition/rrule-go"
)

// ruleEpoch anchors rules that carry no DTSTART so that past years expand too.
var ruleEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// HolidayRule is a recurring holiday described by an RFC 5545 RRULE, such as
// "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25". Occurrences are matched on civil date.
type HolidayRule struct {
	Name string
	Expr string

	rule *rrule.RRule
}

// ParseHolidayRule compiles expr. Rules without DTSTART start in 1900.
func ParseHolidayRule(name, expr string) (HolidayRule, error) {
	opt, err := rrule.StrToROption(expr)
	if err != nil {
		return HolidayRule{}, fmt.Errorf("%w %q: %w", ErrInvalidRule, expr, err)
	}
	if opt.Dtstart.IsZero() {
		opt.Dtstart = ruleEpoch
	}
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return HolidayRule{}, fmt.Errorf("%w %q: %w", ErrInvalidRule, expr, err)
	}
	if name == "" {
		name = config.FallbackName
	}
	return HolidayRule{Name: name, Expr: expr, rule: r}, nil
}

// Occurs reports whether the rule fires on the civil date of t.
func (r HolidayRule) Occurs(t time.Time) bool {
	if r.rule == nil {
		return false
	}
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Nanosecond)
	return len(r.rule.Between(start, end, true)) > 0
}

// Between returns the occurrences whose civil date lies in [from, to].
func (r HolidayRule) Between(from, to time.Time) []time.Time {
	if r.rule == nil {
		return nil
	}
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)
	return r.rule.Between(start, end, true)
}
