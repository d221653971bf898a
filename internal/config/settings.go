package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone lookups must not depend on the host

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Settings holds the user-editable configuration read from the settings file.
type Settings struct {
	// TimeZone is an IANA zone name. Empty means host local time.
	TimeZone string `toml:"timezone" yaml:"timezone"`

	// Language selects the message catalog (see SupportedLanguages).
	Language string `toml:"language" yaml:"language"`

	// Holidays are civil dates (YYYY-MM-DD) excluded from business days.
	Holidays []string `toml:"holidays" yaml:"holidays"`

	// HolidayRules are RRULE strings for yearly holidays, e.g.
	// "FREQ=YEARLY;BYMONTH=5;BYMONTHDAY=25".
	HolidayRules []string `toml:"holiday_rules" yaml:"holiday_rules"`

	// DatabasePath points at the SQLite holiday store. Empty uses the cache dir.
	DatabasePath string `toml:"database" yaml:"database"`

	Feed   FeedSettings   `toml:"feed" yaml:"feed"`
	Server ServerSettings `toml:"server" yaml:"server"`
}

// FeedSettings describes where remote or local holiday feeds come from.
type FeedSettings struct {
	Mode       string `toml:"mode" yaml:"mode"` // SourceModeLocal, SourceModeWeb or empty
	LocalPath  string `toml:"path" yaml:"path"`
	URL        string `toml:"url" yaml:"url"`
	User       string `toml:"user" yaml:"user"`
	RefreshMin int    `toml:"refresh_min" yaml:"refresh_min"`
}

// ServerSettings configures the HTTP feed server.
type ServerSettings struct {
	Port string `toml:"port" yaml:"port"`
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() Settings {
	return Settings{
		TimeZone: DefaultTimeZone,
		Language: DefaultLanguage,
		Feed: FeedSettings{
			RefreshMin: DefaultRefreshMin,
		},
		Server: ServerSettings{
			Port: DefaultPort,
		},
	}
}

// RefreshInterval returns the feed refresh period, falling back to the default
// when the configured value is not positive.
func (s Settings) RefreshInterval() time.Duration {
	val := s.Feed.RefreshMin
	if val <= DisabledInterval {
		val = DefaultRefreshMin
	}
	return time.Duration(val) * time.Minute
}

// LoadSettings reads a settings file, choosing the decoder from its extension.
// Values missing from the file keep their defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	buf, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("%s: %w", ErrSettingsRead, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ExtTOML:
		if _, err := toml.Decode(string(buf), &s); err != nil {
			return s, fmt.Errorf("%s: %w", ErrSettingsDecode, err)
		}
	case ExtYAML, ExtYML:
		if err := yaml.Unmarshal(buf, &s); err != nil {
			return s, fmt.Errorf("%s: %w", ErrSettingsDecode, err)
		}
	default:
		return s, fmt.Errorf("%s: %q", ErrSettingsFormat, ext)
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (s Settings) Validate() error {
	var errs []error

	if s.TimeZone != "" {
		if _, err := time.LoadLocation(s.TimeZone); err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", ErrUnknownZone, s.TimeZone, err))
		}
	}

	for _, h := range s.Holidays {
		if _, err := time.Parse(DateLayoutISO, h); err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", ErrDateParse, h, err))
		}
	}

	switch s.Feed.Mode {
	case SourceModeNone:
	case SourceModeLocal:
		if s.Feed.LocalPath == "" {
			errs = append(errs, errors.New(ErrLocalPathEmpty))
		}
	case SourceModeWeb:
		if s.Feed.URL == "" {
			errs = append(errs, errors.New(ErrWebURLEmpty))
		}
	default:
		errs = append(errs, fmt.Errorf("%s: %q", ErrModeUnsupport, s.Feed.Mode))
	}

	if err := ValidatePort(s.Server.Port); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %w", ErrSettingsInvalid, errors.Join(errs...))
}

// ValidatePort checks that port is a number within the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}
