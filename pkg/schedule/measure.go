package schedule

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/lcastiglione/go-schedule/internal/config"
)

// Measurement is the outcome of Measure.
type Measurement struct {
	Name   string
	Repeat int
	Number int

	// Trials holds the total time of each trial.
	Trials []time.Duration

	// Average is the per-call time of the best trial, in nanoseconds.
	Average float64
}

// Best returns Average as a duration, truncated to whole nanoseconds.
func (m Measurement) Best() time.Duration {
	return time.Duration(m.Average)
}

// Report renders the English summary line.
func (m Measurement) Report() string {
	return fmt.Sprintf(config.FallbackMeasureReport, m.Name, FormatNanos(m.Average), m.Repeat, m.Number)
}

type measureOptions struct {
	repeat int
	number int
	name   string
	out    io.Writer
	format func(Measurement) string
}

// MeasureOption configures Measure.
type MeasureOption func(*measureOptions)

// WithRepeat sets the number of trials.
func WithRepeat(n int) MeasureOption {
	return func(o *measureOptions) {
		if n > 0 {
			o.repeat = n
		}
	}
}

// WithNumber sets the number of calls per trial.
func WithNumber(n int) MeasureOption {
	return func(o *measureOptions) {
		if n > 0 {
			o.number = n
		}
	}
}

// WithName overrides the function name shown in the report.
func WithName(name string) MeasureOption {
	return func(o *measureOptions) { o.name = name }
}

// WithOutput writes the report to w. A nil writer (the default) stays silent.
func WithOutput(w io.Writer) MeasureOption {
	return func(o *measureOptions) { o.out = w }
}

// WithFormatter replaces Measurement.Report, e.g. with a localized message.
func WithFormatter(f func(Measurement) string) MeasureOption {
	return func(o *measureOptions) { o.format = f }
}

// Measure calls fn Number times per trial for Repeat trials and keeps the best
// trial's per-call average. The garbage collector is disabled while timing and
// restored afterwards, so concurrent Measure calls interfere with each other.
// The result of the last call is returned.
func Measure[T any](fn func() T, opts ...MeasureOption) (T, Measurement) {
	o := measureOptions{
		repeat: config.DefaultMeasureRepeat,
		number: config.DefaultMeasureNumber,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = funcName(fn)
	}

	prev := debug.SetGCPercent(-1)
	defer debug.SetGCPercent(prev)

	var result T
	trials := make([]time.Duration, 0, o.repeat)
	for r := 0; r < o.repeat; r++ {
		var total time.Duration
		for n := 0; n < o.number; n++ {
			start := time.Now()
			result = fn()
			total += time.Since(start)
		}
		trials = append(trials, total)
	}

	best := trials[0]
	for _, t := range trials[1:] {
		if t < best {
			best = t
		}
	}

	m := Measurement{
		Name:    o.name,
		Repeat:  o.repeat,
		Number:  o.number,
		Trials:  trials,
		Average: float64(best) / float64(o.number),
	}

	slog.Debug(config.MsgMeasureDone,
		config.LogKeyComponent, config.CompSchedule,
		config.LogKeyName, m.Name,
		config.LogKeyAverage, FormatNanos(m.Average),
		config.LogKeyRepeat, m.Repeat,
		config.LogKeyNumber, m.Number)

	if o.out != nil {
		msg := m.Report()
		if o.format != nil {
			msg = o.format(m)
		}
		_, _ = fmt.Fprintf(o.out, "\n%s\n\n", msg)
	}
	return result, m
}

func funcName(fn any) string {
	if f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()); f != nil {
		return f.Name()
	}
	return "?"
}
