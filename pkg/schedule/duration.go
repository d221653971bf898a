package schedule

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatDuration renders d with the most fitting unit: nS, uS, mS, S or min.
// Values are rounded to three decimals, e.g. 1500ns is "1.5uS" and one hour
// is "60.0min".
func FormatDuration(d time.Duration) string {
	return FormatNanos(float64(d))
}

// FormatNanos is FormatDuration for fractional nanosecond counts such as averages.
func FormatNanos(ns float64) string {
	switch {
	case ns < 1e3:
		return trimFloat(round3(ns)) + "nS"
	case ns < 1e6:
		return decimalFloat(round3(ns/1e3)) + "uS"
	case ns < 1e9:
		return decimalFloat(round3(ns/1e6)) + "mS"
	case ns < 60e9:
		return decimalFloat(round3(ns/1e9)) + "S"
	}
	return decimalFloat(round3(ns/60e9)) + "min"
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// decimalFloat always shows at least one decimal place.
func decimalFloat(v float64) string {
	s := trimFloat(v)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
