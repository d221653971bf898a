package schedule

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
	_ "time/tzdata" // zone lookups must not depend on the host

	"github.com/jinzhu/now"
	"github.com/lcastiglione/go-schedule/internal/config"
)

var (
	defaultLocation = mustLoadLocation(config.DefaultTimeZone)
	defaultProvider = newProvider(SystemClock{}, defaultLocation)
)

// unobserved marks a Provider that has not handed out any value yet; 0 is the
// Unix epoch.
const unobserved = math.MinInt64

func mustLoadLocation(name string) *time.Location {
	loc, err := LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// LoadLocation resolves an IANA zone name. An empty name selects host local time.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrUnknownZone, name, err)
	}
	return loc, nil
}

// DefaultLocation returns the zone used when callers do not pass one.
func DefaultLocation() *time.Location {
	return defaultLocation
}

// Today returns the current date and time in the default zone.
func Today() time.Time {
	return defaultProvider.Today()
}

// TodayIn returns the current date and time in loc. A nil loc means host local time.
func TodayIn(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return defaultProvider.Today().In(loc)
}

// Provider reads a Clock and reports its time in a fixed zone.
//
// Successive values returned by one Provider never decrease: if the wall clock
// steps backwards, the last observed instant is returned until the clock catches
// up. A Provider is safe for concurrent use.
type Provider struct {
	clock Clock
	loc   *time.Location

	// last holds the UnixNano of the latest value handed out, or unobserved.
	last atomic.Int64
}

// NewProvider creates a Provider. A nil loc means host local time.
func NewProvider(clock Clock, loc *time.Location) (*Provider, error) {
	if clock == nil {
		return nil, ErrClockUnavailable
	}
	if loc == nil {
		loc = time.Local
	}
	return newProvider(clock, loc), nil
}

func newProvider(clock Clock, loc *time.Location) *Provider {
	p := &Provider{clock: clock, loc: loc}
	p.last.Store(unobserved)
	return p
}

// NewProviderForZone creates a Provider on the system clock for a zone name.
func NewProviderForZone(zone string) (*Provider, error) {
	loc, err := LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	return NewProvider(SystemClock{}, loc)
}

// Location returns the zone the provider reports in.
func (p *Provider) Location() *time.Location {
	return p.loc
}

// Now reads the clock. It fails with ErrClockUnavailable when the clock
// reports the zero time.
func (p *Provider) Now() (time.Time, error) {
	t := p.clock.Now()
	if t.IsZero() {
		return time.Time{}, ErrClockUnavailable
	}
	return p.hold(t).In(p.loc), nil
}

// Today returns the current date and time. If the clock cannot be read the
// last observed value is returned (the zero time if there is none).
func (p *Provider) Today() time.Time {
	t, err := p.Now()
	if err != nil {
		slog.Error(config.ErrClockUnavailable,
			config.LogKeyComponent, config.CompSchedule,
			config.LogKeyError, err)
		if last := p.last.Load(); last != unobserved {
			return time.Unix(0, last).In(p.loc)
		}
		return time.Time{}
	}
	return t
}

// Date returns today at midnight in the provider zone.
func (p *Provider) Date() time.Time {
	return now.With(p.Today()).BeginningOfDay()
}

// In returns the current instant in loc. A nil loc means host local time.
func (p *Provider) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return p.Today().In(loc)
}

// hold enforces non-decreasing results across calls.
func (p *Provider) hold(t time.Time) time.Time {
	n := t.UnixNano()
	for {
		prev := p.last.Load()
		if n >= prev {
			if p.last.CompareAndSwap(prev, n) {
				return t
			}
			continue
		}
		slog.Warn(config.MsgClockBackward,
			config.LogKeyComponent, config.CompSchedule,
			config.LogKeyNow, t,
			config.LogKeyLast, time.Unix(0, prev))
		return time.Unix(0, prev)
	}
}
