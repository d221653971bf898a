package feed

import (
	"log/slog"
	"time"

	"github.com/lcastiglione/go-schedule/internal/config"
	"github.com/lcastiglione/go-schedule/pkg/schedule"
)

// ConfigFromSettings builds a SyncConfig from user settings, reading the feed
// password from the keyring.
func ConfigFromSettings(s config.Settings, loc *time.Location) SyncConfig {
	holidays, rules := StaticHolidays(s, loc)
	return SyncConfig{
		Mode:      s.Feed.Mode,
		LocalPath: s.Feed.LocalPath,
		URL:       s.Feed.URL,
		User:      s.Feed.User,
		Pass:      LoadPassword(s.Feed.User),
		Holidays:  holidays,
		Rules:     rules,
	}
}

// StaticHolidays returns the holidays and rules written in the settings file.
// Dates are placed in loc. Entries that do not parse are logged and skipped.
func StaticHolidays(s config.Settings, loc *time.Location) ([]schedule.Holiday, []schedule.HolidayRule) {
	var holidays []schedule.Holiday
	for _, d := range s.Holidays {
		t, err := time.ParseInLocation(config.DateLayoutISO, d, loc)
		if err != nil {
			slog.Warn(config.MsgSkippedEvent,
				config.LogKeyComponent, config.CompFeed,
				config.LogKeyValue, d,
				config.LogKeyError, err)
			continue
		}
		holidays = append(holidays, schedule.Holiday{Date: t, Name: config.FallbackName})
	}

	var rules []schedule.HolidayRule
	for _, expr := range s.HolidayRules {
		rule, err := schedule.ParseHolidayRule(config.FallbackName, expr)
		if err != nil {
			slog.Warn(config.MsgSkippedRule,
				config.LogKeyComponent, config.CompFeed,
				config.LogKeyValue, expr,
				config.LogKeyError, err)
			continue
		}
		rules = append(rules, rule)
	}
	return holidays, rules
}
