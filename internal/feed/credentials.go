package feed

import (
	"fmt"
	"log/slog"

	"github.com/lcastiglione/go-schedule/internal/config"
	"github.com/zalando/go-keyring"
)

// SavePassword stores the feed password for user in the OS keyring.
func SavePassword(user, pass string) error {
	if err := keyring.Set(config.KeyringService, user, pass); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCredentials, err)
	}
	return nil
}

// LoadPassword returns the stored password for user, or "" when none is saved.
func LoadPassword(user string) string {
	if user == "" {
		return ""
	}
	pass, err := keyring.Get(config.KeyringService, user)
	if err != nil {
		slog.Debug(config.MsgPassFail,
			config.LogKeyUser, user,
			config.LogKeyError, err,
			config.LogKeyComponent, config.CompFeed)
		return ""
	}
	return pass
}
