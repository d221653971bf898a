package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lcastiglione/go-schedule/internal/config"
	"github.com/lcastiglione/go-schedule/internal/feed"
	"github.com/lcastiglione/go-schedule/pkg/schedule"
	"github.com/spf13/cobra"
)

func newHolidaysCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "Manage the holiday store",
	}

	parseDay := func(s string) (time.Time, error) {
		loc, err := a.location()
		if err != nil {
			return time.Time{}, err
		}
		t, err := time.ParseInLocation(config.DateLayoutISO, s, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w %q: %w", schedule.ErrUnparsableDate, s, err)
		}
		return t, nil
	}

	var name string
	addCmd := &cobra.Command{
		Use:   "add DATE",
		Short: "Store a holiday (YYYY-MM-DD); an existing date is renamed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			h, err := st.Add(cmd.Context(), day, name, config.HolidaySourceManual)
			if err != nil {
				return err
			}
			a.println(a.msg(config.TKeyHolidayAdded,
				map[string]any{"Date": h.Day, "Name": h.Name},
				fmt.Sprintf(config.FallbackHolidayAdded, h.Name, h.Day)))
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, config.FlagName, config.FallbackName, config.FlagDescName)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored holidays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			if st == nil {
				a.println(a.msg(config.TKeyHolidaysNone, nil, config.FallbackHolidaysNone))
				return nil
			}
			defer func() { _ = st.Close() }()

			rows, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				a.println(a.msg(config.TKeyHolidaysNone, nil, config.FallbackHolidaysNone))
				return nil
			}
			for _, h := range rows {
				a.println(strings.Join([]string{h.Day, h.Name, h.Source}, "\t"))
			}
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove DATE",
		Short: "Delete the holiday stored on DATE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.Remove(cmd.Context(), day); err != nil {
				return err
			}
			date := day.Format(config.DateLayoutISO)
			a.println(a.msg(config.TKeyHolidayRemoved, map[string]any{"Date": date}, fmt.Sprintf(config.FallbackHolidayRemove, date)))
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the feed holidays in the store with the configured feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.settings.Feed.Mode == config.SourceModeNone {
				return errors.New(config.ErrNoFeedSource)
			}
			loc, err := a.location()
			if err != nil {
				return err
			}

			cfg := feed.ConfigFromSettings(a.settings, loc)
			cfg.Holidays, cfg.Rules = nil, nil

			gen := &feed.Generator{
				Clock:   schedule.ClockFunc(func() time.Time { return a.clock.Now().In(loc) }),
				Fetcher: feed.NewHTTPFetcher(),
			}
			res, err := gen.RunSync(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			st, err := a.openStore(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			n, err := st.ReplaceSource(cmd.Context(), config.HolidaySourceFeed, res.Imported)
			if err != nil {
				return err
			}
			a.println(a.tr.Plural(config.TKeyHolidaysImport, n, nil))
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd, removeCmd, importCmd)
	return cmd
}

func newLoginCommand(a *app) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save the feed password in the system keyring",
		Long: `Login reads the feed password from standard input and stores it in the
system keyring under the feed username.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				user = a.settings.Feed.User
			}
			if user == "" {
				return errors.New(config.ErrUserMissing)
			}

			fmt.Fprint(cmd.ErrOrStderr(), config.MsgPasswordPrompt)
			line, err := bufio.NewReader(a.in).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("%s: %w", config.ErrArgs, err)
			}

			if err := feed.SavePassword(user, strings.TrimRight(line, "\r\n")); err != nil {
				return err
			}
			a.println(a.msg(config.TKeyLoginSaved, map[string]any{"User": user}, fmt.Sprintf(config.FallbackLoginSaved, user)))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, config.FlagUser, "", config.FlagDescUser)
	return cmd
}
