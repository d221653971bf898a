package main

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/lcastiglione/go-schedule/internal/config"
	"github.com/lcastiglione/go-schedule/pkg/schedule"
	"github.com/spf13/cobra"
)

// outputLayout is the default layout for printed instants.
var outputLayout = config.DateLayouts[0]

func newTodayCommand(a *app) *cobra.Command {
	var tz, layout string

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Print the current date and time",
		Long: `Today prints the current date and time in the configured zone
(America/Argentina/Buenos_Aires unless the settings file says otherwise).
--tz overrides the zone; an empty --tz means host local time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.provider()
			if err != nil {
				return err
			}
			current := p.Today()

			if cmd.Flags().Changed(config.FlagTZ) {
				loc, err := schedule.LoadLocation(tz)
				if err != nil {
					return err
				}
				current = p.In(loc)
			}

			a.println(current.Format(layout))
			return nil
		},
	}

	cmd.Flags().StringVar(&tz, config.FlagTZ, "", config.FlagDescTZ)
	cmd.Flags().StringVar(&layout, config.FlagFormat, time.RFC3339, config.FlagDescFmt)
	return cmd
}

func newAddDateCommand(a *app) *cobra.Command {
	var years, months, days int
	var layout string

	cmd := &cobra.Command{
		Use:   "add-date DATE",
		Short: "Add years, months and days to a date",
		Long: `Add-date adds years and months first; when the resulting day does not
exist in the target month the date rolls to the first day of the following
month. Days are added last. The time of day is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.location()
			if err != nil {
				return err
			}
			ref, err := schedule.ParseDateIn(args[0], loc)
			if err != nil {
				return err
			}
			a.println(schedule.AddDate(ref, years, months, days).Format(layout))
			return nil
		},
	}

	cmd.Flags().IntVar(&years, config.FlagYears, 0, config.FlagDescYears)
	cmd.Flags().IntVar(&months, config.FlagMonths, 0, config.FlagDescMons)
	cmd.Flags().IntVar(&days, config.FlagDays, 0, config.FlagDescDays)
	cmd.Flags().StringVar(&layout, config.FlagFormat, outputLayout, config.FlagDescFmt)
	return cmd
}

func newParseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse DATE...",
		Short: "Parse free-form dates into RFC 3339 and epoch milliseconds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.location()
			if err != nil {
				return err
			}
			for i, s := range args {
				t, err := schedule.ParseDateIn(s, loc)
				if err != nil {
					return fmt.Errorf("entry %d: %w", i, err)
				}
				a.println(fmt.Sprintf("%s\t%d\t%s",
					t.Format(time.RFC3339Nano), schedule.ToMillis(t), schedule.FormatSeconds(schedule.SecondsOfDay(t))))
			}
			return nil
		},
	}
}

func newFormatDurationCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "format-duration DURATION",
		Short: "Render a Go duration (e.g. 1.5ms) with an adaptive unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrArgs, err)
			}
			a.println(schedule.FormatDuration(d))
			return nil
		},
	}
}

func newTimeitCommand(a *app) *cobra.Command {
	var repeat, number int

	cmd := &cobra.Command{
		Use:   "timeit -- COMMAND [ARG...]",
		Short: "Time an external command",
		Long: `Timeit runs COMMAND --number times per trial for --repeat trials and
reports the best per-call average. Command output is discarded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New(config.ErrCommandMissing)
			}

			run := func() error {
				c := exec.CommandContext(cmd.Context(), args[0], args[1:]...)
				c.Stdout = io.Discard
				c.Stderr = io.Discard
				return c.Run()
			}

			err, _ := schedule.Measure(run,
				schedule.WithRepeat(repeat),
				schedule.WithNumber(number),
				schedule.WithName(strings.Join(args, " ")),
				schedule.WithOutput(a.out),
				schedule.WithFormatter(a.measureReport),
			)
			return err
		},
	}

	cmd.Flags().IntVar(&repeat, config.FlagRepeat, config.DefaultMeasureRepeat, config.FlagDescRep)
	cmd.Flags().IntVar(&number, config.FlagNumber, config.DefaultMeasureNumber, config.FlagDescNum)
	return cmd
}

// measureReport localizes a Measurement summary.
func (a *app) measureReport(m schedule.Measurement) string {
	return a.msg(config.TKeyMeasureReport, map[string]any{
		"Name":    m.Name,
		"Average": schedule.FormatNanos(m.Average),
		"Repeat":  m.Repeat,
		"Number":  m.Number,
	}, m.Report())
}
