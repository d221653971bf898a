package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lcastiglione/go-schedule/internal/config"
	"github.com/lcastiglione/go-schedule/pkg/schedule"
)

// SyncConfig contains all parameters required to build a business calendar.
type SyncConfig struct {
	Mode      string // config.SourceModeNone, config.SourceModeLocal or config.SourceModeWeb
	LocalPath string // Path to an .ics holiday file
	URL       string // Remote holiday feed
	User      string // HTTP Basic Auth username
	Pass      string // HTTP Basic Auth password

	// Holidays and Rules come from settings and the store; feed holidays are
	// merged on top of them.
	Holidays []schedule.Holiday
	Rules    []schedule.HolidayRule
}

// Result is the outcome of one synchronization.
type Result struct {
	ICS      []byte
	Calendar *schedule.Calendar
	Imported []schedule.Holiday // holidays read from the feed
	Holidays []schedule.Holiday // every holiday inside the rendered window
}

// Generator fetches holiday feeds and renders the business calendar.
type Generator struct {
	Clock   schedule.Clock
	Fetcher Fetcher
}

// Window returns the date range covered by a feed rendered at now.
func Window(now time.Time) (time.Time, time.Time) {
	day := midnight(now, now.Location())
	return day.AddDate(0, 0, -config.FeedHorizonDays), day.AddDate(0, 0, config.FeedHorizonDays)
}

// RunSync reads the configured feed, merges it with the static holidays and
// renders the resulting calendar.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) (*Result, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompFeed,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	now := g.Clock.Now()
	from, to := Window(now)

	var imported []schedule.Holiday
	if cfg.Mode != config.SourceModeNone {
		reader, err := g.acquireStream(ctx, cfg)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%s: %w", config.ErrICalParse, err)
		}
		defer func() { _ = reader.Close() }()

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		imported, err = DecodeHolidays(reader, from, to)
		if err != nil {
			return nil, err
		}
	}

	holidays := make([]schedule.Holiday, 0, len(cfg.Holidays)+len(imported))
	holidays = append(holidays, cfg.Holidays...)
	holidays = append(holidays, imported...)

	cal := schedule.NewCalendar(
		schedule.WithNamedHolidays(holidays...),
		schedule.WithRules(cfg.Rules...),
	)

	inWindow := cal.Holidays(from, to)
	ics, err := Render(inWindow, now)
	if err != nil {
		return nil, err
	}

	log.Info(config.MsgGenSuccess,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, len(inWindow)),
			slog.Int(config.LogKeyFound, len(imported)),
		),
	)
	log.Debug("Sync finished", config.LogKeyDuration, time.Since(start).Milliseconds())

	return &Result{
		ICS:      ics,
		Calendar: cal,
		Imported: imported,
		Holidays: inWindow,
	}, nil
}

// acquireStream opens the data source selected by cfg.Mode.
func (g *Generator) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.URL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, cfg.URL, cfg.User, cfg.Pass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}
