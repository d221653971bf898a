package schedule

import (
	"fmt"
	"time"

	"github.com/lcastiglione/go-schedule/internal/config"
	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NextBusinessRun returns the first firing of the cron expression after from
// that falls on a business day. Expressions use the standard five fields
// (or descriptors such as "@daily") and are evaluated in from's zone.
func (c *Calendar) NextBusinessRun(expr string, from time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %w", ErrInvalidCron, expr, err)
	}

	next := from
	for i := 0; i < config.MaxCronFirings; i++ {
		next = sched.Next(next)
		if next.IsZero() {
			break
		}
		if c.IsBusinessDay(next) {
			return next, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q after %s", ErrNoOccurrence, expr, from.Format(time.RFC3339))
}

// NextBusinessRun evaluates expr against the weekdays-only calendar.
func NextBusinessRun(expr string, from time.Time) (time.Time, error) {
	return weekdaysOnly.NextBusinessRun(expr, from)
}
