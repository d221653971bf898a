package i18n

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/lcastiglione/go-schedule/internal/config"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator resolves message keys for one language.
type Translator struct {
	bundle    *goi18n.Bundle
	localizer *goi18n.Localizer

	// Languages lists the language codes found in the embedded catalogs.
	Languages []string
}

// New loads the embedded catalogs and selects lang, falling back to English.
func New(lang string) *Translator {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	tr := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		tr.SetLanguage(lang)
		return tr
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		tr.Languages = append(tr.Languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	tr.SetLanguage(lang)
	return tr
}

// SetLanguage switches the active language. Unknown or empty codes use the default.
func (t *Translator) SetLanguage(lang string) {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	t.localizer = goi18n.NewLocalizer(t.bundle, lang, config.DefaultLanguage)
}

// Msg translates key with template data. The key itself is returned when no
// translation exists, so callers can detect it and use a fallback.
func (t *Translator) Msg(key string, data map[string]any) string {
	return t.localize(&goi18n.LocalizeConfig{MessageID: key, TemplateData: data})
}

// Plural translates a key whose text depends on count.
func (t *Translator) Plural(key string, count int, data map[string]any) string {
	if data == nil {
		data = map[string]any{}
	}
	data["Count"] = count
	return t.localize(&goi18n.LocalizeConfig{MessageID: key, TemplateData: data, PluralCount: count})
}

func (t *Translator) localize(cfg *goi18n.LocalizeConfig) string {
	if t == nil || t.localizer == nil {
		return cfg.MessageID
	}
	msg, err := t.localizer.Localize(cfg)
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, cfg.MessageID,
			config.LogKeyError, err,
		)
		return cfg.MessageID
	}
	return msg
}
