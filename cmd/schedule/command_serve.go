package main

import (
	"log/slog"

	"github.com/lcastiglione/go-schedule/internal/config"
	"github.com/lcastiglione/go-schedule/internal/feed"
	"github.com/lcastiglione/go-schedule/internal/server"
	"github.com/lcastiglione/go-schedule/internal/worker"
	"github.com/lcastiglione/go-schedule/pkg/schedule"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the holiday calendar and today's status over HTTP",
		Long: `Serve publishes the merged holiday calendar as iCalendar on /, the
current date and business day status as JSON on /today and Prometheus
metrics on /metrics. The calendar is rebuilt on every refresh interval and
whenever the settings file changes. A port change needs a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if port == "" {
				port = a.settings.Server.Port
			}
			if err := config.ValidatePort(port); err != nil {
				return err
			}

			p, err := a.provider()
			if err != nil {
				return err
			}
			srv := server.NewCalendarServer(port, p)

			st, err := a.openStore(ctx, true)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			w := worker.New(a.settings, feed.NewHTTPFetcher(), srv, st)
			w.Clock = a.clock

			if a.configPath != "" {
				watcher, err := config.NewWatcher(ctx, a.configPath)
				if err != nil {
					return err
				}
				watcher.OnUpdate(func(s config.Settings) {
					loc, err := schedule.LoadLocation(s.TimeZone)
					if err != nil {
						slog.Warn(config.ErrUnknownZone,
							config.LogKeyComponent, config.CompMain,
							config.LogKeyZone, s.TimeZone,
							config.LogKeyError, err)
					} else if np, err := schedule.NewProvider(a.clock, loc); err == nil {
						srv.SetProvider(np)
					}
					w.Reload(s)
				})
			}

			go w.Run(ctx)
			err = srv.Start(ctx)
			slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
			return err
		},
	}

	cmd.Flags().StringVar(&port, config.FlagPort, "", config.FlagDescPort)
	return cmd
}
