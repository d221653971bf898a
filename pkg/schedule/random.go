package schedule

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jinzhu/now"
	"github.com/lcastiglione/go-schedule/internal/config"
)

// Randomizer generates date fixtures. It is not safe for concurrent use.
type Randomizer struct {
	rnd   *rand.Rand
	clock Clock
}

// NewRandomizer uses src for randomness and clock for "now". A nil src is
// seeded randomly; a nil clock means the system clock.
func NewRandomizer(src rand.Source, clock Clock) *Randomizer {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Randomizer{rnd: rand.New(src), clock: clock}
}

// daysBack returns an offset in [-RandomDaysBack, 0].
func (r *Randomizer) daysBack() int {
	return r.rnd.IntN(config.RandomDaysBack+1) - config.RandomDaysBack
}

// Date returns origin shifted by days (a random offset within the last year
// when days is 0), formatted as midnight: "2006-01-02T00:00:00".
func (r *Randomizer) Date(origin time.Time, days int) string {
	if days == 0 {
		days = r.daysBack()
	}
	return now.With(origin.AddDate(0, 0, days)).BeginningOfDay().Format(config.DateLayoutRandom)
}

// DateWithTime returns a random instant within the last year with microsecond
// precision. With truncate the sub-millisecond digits are zeroed.
func (r *Randomizer) DateWithTime(truncate bool) string {
	t := r.clock.Now().AddDate(0, 0, r.daysBack())
	if truncate {
		t = t.Truncate(time.Millisecond)
	}
	return t.Format(config.DateLayoutRandomFrac)
}

// TimeMillis returns a random time of day in milliseconds, in [0, 86400000).
func (r *Randomizer) TimeMillis() int {
	return r.rnd.IntN(config.MillisPerDay)
}

// FullDate returns the given civil date with a random time of day, formatted
// as "2006-01-02 15:04:05.000000" so that ParseDate accepts it.
func (r *Randomizer) FullDate(day int, month time.Month, year int) string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%06d",
		year, int(month), day,
		r.rnd.IntN(24), r.rnd.IntN(60), r.rnd.IntN(60), r.rnd.IntN(1000000))
}
