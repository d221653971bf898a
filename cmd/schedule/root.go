package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/lcastiglione/go-schedule/internal/config"
	"github.com/lcastiglione/go-schedule/internal/feed"
	"github.com/lcastiglione/go-schedule/internal/i18n"
	"github.com/lcastiglione/go-schedule/internal/store"
	"github.com/lcastiglione/go-schedule/pkg/schedule"
	"github.com/spf13/cobra"
)

// app carries the state shared by every command of one invocation.
type app struct {
	in    io.Reader
	out   io.Writer
	clock schedule.Clock

	configPath string
	debug      bool
	lang       string

	settings  config.Settings
	tr        *i18n.Translator
	logCloser io.Closer
}

func newApp(in io.Reader, out io.Writer) *app {
	return &app{
		in:       in,
		out:      out,
		clock:    schedule.SystemClock{},
		settings: config.DefaultSettings(),
	}
}

func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

// newRootCommand creates the root cobra command with all subcommands.
func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.CommandName,
		Short: "Business-day aware date and time utilities",
		Long: `schedule answers calendar questions that depend on business days:
the current date in a configured zone, the next or previous working day,
date arithmetic, parsing and timing. It can also keep a holiday store,
import iCalendar holiday feeds and serve the resulting calendar over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, config.FlagConfig, "", config.FlagDescCfg)
	flags.BoolVar(&a.debug, config.FlagDebug, false, config.FlagDescDebug)
	flags.StringVar(&a.lang, config.FlagLang, "", config.FlagDescLang)

	cmd.AddCommand(
		newTodayCommand(a),
		newBusinessCommand(a),
		newAddDateCommand(a),
		newParseCommand(a),
		newFormatDurationCommand(a),
		newTimeitCommand(a),
		newHolidaysCommand(a),
		newLoginCommand(a),
		newServeCommand(a),
		newVersionCommand(),
	)

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersion(cmd.OutOrStdout())
			return nil
		},
	}
}

// setup initializes logging, settings and translations before any command runs.
func (a *app) setup(cmd *cobra.Command) error {
	a.logCloser = setupLogging(a.debug, cmd.ErrOrStderr())
	logStartupInfo()

	if a.configPath != "" {
		s, err := config.LoadSettings(a.configPath)
		if err != nil {
			return err
		}
		a.settings = s
	}

	lang := a.lang
	if lang == "" {
		lang = a.settings.Language
	}
	a.tr = i18n.New(lang)
	return nil
}

func (a *app) location() (*time.Location, error) {
	return schedule.LoadLocation(a.settings.TimeZone)
}

func (a *app) provider() (*schedule.Provider, error) {
	loc, err := a.location()
	if err != nil {
		return nil, err
	}
	return schedule.NewProvider(a.clock, loc)
}

// dbPath returns the holiday database location.
func (a *app) dbPath() (string, error) {
	if a.settings.DatabasePath != "" {
		return a.settings.DatabasePath, nil
	}
	return appCachePath(config.DBFileName)
}

// openStore opens the holiday store. Without create, a missing database
// yields a nil store rather than an empty new file.
func (a *app) openStore(ctx context.Context, create bool) (*store.Store, error) {
	path, err := a.dbPath()
	if err != nil {
		return nil, err
	}
	if !create {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
	}
	return store.Open(ctx, path)
}

// calendar builds the calendar from the settings file, the holiday store and
// any extra dates given on the command line. Remote feeds are not fetched.
func (a *app) calendar(ctx context.Context, loc *time.Location, extra []string) (*schedule.Calendar, error) {
	holidays, rules := feed.StaticHolidays(a.settings, loc)

	st, err := a.openStore(ctx, false)
	if err != nil {
		return nil, err
	}
	if st != nil {
		defer func() { _ = st.Close() }()
		stored, err := st.Holidays(ctx, loc)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, stored...)
	}

	for _, s := range extra {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		t, err := time.ParseInLocation(config.DateLayoutISO, s, loc)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", schedule.ErrUnparsableDate, s, err)
		}
		holidays = append(holidays, schedule.Holiday{Date: t, Name: config.FallbackName})
	}

	return schedule.NewCalendar(
		schedule.WithNamedHolidays(holidays...),
		schedule.WithRules(rules...),
	), nil
}

// msg translates key, using fallback when no catalog has it.
func (a *app) msg(key string, data map[string]any, fallback string) string {
	if s := a.tr.Msg(key, data); s != key {
		return s
	}
	return fallback
}

func (a *app) println(s string) {
	fmt.Fprintln(a.out, s)
}
