package schedule

import (
	"fmt"
	"time"

	"github.com/lcastiglione/go-schedule/internal/config"
)

// AddDate shifts ref by years and months, then by days.
//
// Unlike time.Time.AddDate, a day that does not exist in the target month is not
// normalized forward by the overflow: the result moves to the first day of the
// following month (Jan 31 + 1 month = Mar 1). Time of day and zone are kept.
func AddDate(ref time.Time, years, months, days int) time.Time {
	if years == 0 && months == 0 && days == 0 {
		return ref
	}

	y, m, d := ref.Date()
	total := int(m) - 1 + months
	y += years + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)

	if d > daysIn(y, month) {
		d = 1
		month++
		if month > time.December {
			month = time.January
			y++
		}
	}

	hh, mm, ss := ref.Clock()
	shifted := time.Date(y, month, d, hh, mm, ss, ref.Nanosecond(), ref.Location())
	return shifted.AddDate(0, 0, days)
}

// AdjustDate parses s as "2006-01-02T15:04:05", adds days and formats it back.
func AdjustDate(s string, days int) (string, error) {
	t, err := time.Parse(config.DateLayoutAdjust, s)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrUnparsableDate, s, err)
	}
	return t.AddDate(0, 0, days).Format(config.DateLayoutAdjust), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
