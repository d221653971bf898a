package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lcastiglione/go-schedule/internal/config"
	"github.com/lcastiglione/go-schedule/internal/feed"
	"github.com/lcastiglione/go-schedule/pkg/schedule"
)

// Publisher receives the outcome of each synchronization.
type Publisher interface {
	Update(data []byte)
	SetCalendar(cal *schedule.Calendar, holidays int)
	RecordSync(err error)
}

// HolidayStore supplies the user's persisted holidays.
type HolidayStore interface {
	Holidays(ctx context.Context, loc *time.Location) ([]schedule.Holiday, error)
}

// Worker periodically rebuilds the business calendar and hands it to a Publisher.
type Worker struct {
	Clock     schedule.Clock
	Fetcher   feed.Fetcher
	Publisher Publisher
	Store     HolidayStore // optional

	mu         sync.Mutex
	settings   config.Settings
	configChan chan struct{}
}

// New creates a Worker for the given settings.
func New(s config.Settings, fetcher feed.Fetcher, pub Publisher, st HolidayStore) *Worker {
	return &Worker{
		Clock:      schedule.SystemClock{},
		Fetcher:    fetcher,
		Publisher:  pub,
		Store:      st,
		settings:   s,
		configChan: make(chan struct{}, config.ChannelBufferSize),
	}
}

// Reload swaps the settings and asks the running loop to resync. It never blocks.
func (w *Worker) Reload(s config.Settings) {
	w.mu.Lock()
	w.settings = s
	w.mu.Unlock()

	select {
	case w.configChan <- struct{}{}:
	default:
	}
}

func (w *Worker) current() config.Settings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settings
}

// Run syncs once, then again on every refresh tick or settings reload, until
// ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	_ = w.Sync(ctx, false)

	currentDuration := w.current().RefreshInterval()
	ticker := time.NewTicker(currentDuration)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, currentDuration)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-w.configChan:
			newDuration := w.current().RefreshInterval()
			if newDuration != currentDuration {
				log.Info(config.MsgUpdateSync, config.LogKeyOld, currentDuration, config.LogKeyNew, newDuration)
				currentDuration = newDuration
				ticker.Reset(currentDuration)
			}
			_ = w.Sync(ctx, true)

		case <-ticker.C:
			_ = w.Sync(ctx, false)
		}
	}
}

// Sync runs one fetch, merge and render pass and publishes the result.
// manual marks syncs triggered by a settings change rather than the timer.
func (w *Worker) Sync(ctx context.Context, manual bool) error {
	slog.Info(config.MsgSyncReq,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyManual, manual)

	s := w.current()
	loc, err := schedule.LoadLocation(s.TimeZone)
	if err != nil {
		slog.Warn(config.ErrUnknownZone,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyZone, s.TimeZone,
			config.LogKeyError, err)
		loc = schedule.DefaultLocation()
	}

	cfg := feed.ConfigFromSettings(s, loc)
	if w.Store != nil {
		stored, err := w.Store.Holidays(ctx, loc)
		if err != nil {
			w.fail(err)
			return err
		}
		cfg.Holidays = append(cfg.Holidays, stored...)
	}

	gen := &feed.Generator{
		Clock:   schedule.ClockFunc(func() time.Time { return w.Clock.Now().In(loc) }),
		Fetcher: w.Fetcher,
	}

	res, err := gen.RunSync(ctx, cfg)
	if err != nil {
		w.fail(err)
		return err
	}

	w.Publisher.Update(res.ICS)
	w.Publisher.SetCalendar(res.Calendar, len(res.Holidays))
	w.Publisher.RecordSync(nil)
	return nil
}

func (w *Worker) fail(err error) {
	slog.Error(config.MsgSyncFailed,
		config.LogKeyError, err,
		config.LogKeyComponent, config.CompWorker)
	w.Publisher.RecordSync(err)
}
