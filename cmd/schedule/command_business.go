package main

import (
	"context"
	"fmt"
	"time"

	"github.com/lcastiglione/go-schedule/internal/config"
	"github.com/lcastiglione/go-schedule/pkg/schedule"
	"github.com/spf13/cobra"
)

func newBusinessCommand(a *app) *cobra.Command {
	var extra []string

	cmd := &cobra.Command{
		Use:   "business",
		Short: "Business day queries",
		Long: `Business day queries skip Saturdays, Sundays and holidays. Holidays come
from the settings file, the holiday store and --holidays.`,
	}

	cmd.PersistentFlags().StringSliceVar(&extra, config.FlagHolidays, nil, config.FlagDescHol)

	// load resolves the zone and the calendar shared by every subcommand.
	load := func(ctx context.Context) (*time.Location, *schedule.Calendar, error) {
		loc, err := a.location()
		if err != nil {
			return nil, nil, err
		}
		cal, err := a.calendar(ctx, loc, extra)
		if err != nil {
			return nil, nil, err
		}
		return loc, cal, nil
	}

	isCmd := &cobra.Command{
		Use:   "is DATE",
		Short: "Report whether DATE is a business day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, cal, err := load(cmd.Context())
			if err != nil {
				return err
			}
			t, err := schedule.ParseDateIn(args[0], loc)
			if err != nil {
				return err
			}

			date := t.Format(config.DateLayoutISO)
			data := map[string]any{"Date": date}
			if cal.IsBusinessDay(t) {
				a.println(a.msg(config.TKeyBusinessYes, data, fmt.Sprintf(config.FallbackBusinessYes, date)))
			} else {
				a.println(a.msg(config.TKeyBusinessNo, data, fmt.Sprintf(config.FallbackBusinessNo, date)))
			}
			return nil
		},
	}

	walk := func(use, short string, next bool) *cobra.Command {
		var keep bool
		c := &cobra.Command{
			Use:   use + " DATE",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				loc, cal, err := load(cmd.Context())
				if err != nil {
					return err
				}
				t, err := schedule.ParseDateIn(args[0], loc)
				if err != nil {
					return err
				}
				from := t
				if next {
					t = cal.NextBusinessDay(t, keep)
				} else {
					t = cal.PrevBusinessDay(t, keep)
				}
				if t.IsZero() {
					return fmt.Errorf("%w: %s", schedule.ErrNoOccurrence, from.Format(config.DateLayoutISO))
				}
				a.println(t.Format(config.DateLayoutISO))
				return nil
			},
		}
		c.Flags().BoolVar(&keep, config.FlagKeep, false, config.FlagDescKeep)
		return c
	}

	betweenCmd := &cobra.Command{
		Use:   "between START END",
		Short: "List the business days in (START, END]",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, cal, err := load(cmd.Context())
			if err != nil {
				return err
			}
			start, err := schedule.ParseDateIn(args[0], loc)
			if err != nil {
				return err
			}
			end, err := schedule.ParseDateIn(args[1], loc)
			if err != nil {
				return err
			}
			for _, d := range cal.BusinessDaysBetween(start, end) {
				a.println(d.Format(config.DateLayoutISO))
			}
			return nil
		},
	}

	lastCmd := &cobra.Command{
		Use:   "last",
		Short: "Print the latest business day up to today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cal, err := load(cmd.Context())
			if err != nil {
				return err
			}
			p, err := a.provider()
			if err != nil {
				return err
			}
			today := p.Today()
			last := cal.LastBusinessDay(today)
			if last.IsZero() {
				return fmt.Errorf("%w: %s", schedule.ErrNoOccurrence, today.Format(config.DateLayoutISO))
			}
			a.println(last.Format(config.DateLayoutISO))
			return nil
		},
	}

	var expr string
	runCmd := &cobra.Command{
		Use:   "run [FROM]",
		Short: "Print the next cron firing that falls on a business day",
		Long: `Run finds the first firing of --cron strictly after FROM (default now)
whose date is a business day.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, cal, err := load(cmd.Context())
			if err != nil {
				return err
			}

			var from time.Time
			if len(args) == 1 {
				if from, err = schedule.ParseDateIn(args[0], loc); err != nil {
					return err
				}
			} else {
				p, err := a.provider()
				if err != nil {
					return err
				}
				from = p.Today()
			}

			next, err := cal.NextBusinessRun(expr, from)
			if err != nil {
				return err
			}
			a.println(next.Format(time.RFC3339))
			return nil
		},
	}
	runCmd.Flags().StringVar(&expr, config.FlagCron, "", config.FlagDescCron)
	_ = runCmd.MarkFlagRequired(config.FlagCron)

	cmd.AddCommand(
		isCmd,
		walk("next", "Print the next business day", true),
		walk("prev", "Print the previous business day", false),
		betweenCmd,
		lastCmd,
		runCmd,
	)
	return cmd
}
