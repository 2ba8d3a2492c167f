package render

import (
	"context"
	"fmt"
	"strings"
)

// TemplateI18nConfig tunes the template translation helpers.
type TemplateI18nConfig struct {
	// LocaleKey is the map key read when a template passes its data map as
	// the locale source. Defaults to "locale".
	LocaleKey string
	// OnMissing picks the text shown when a key has no translation.
	OnMissing MissingTranslationHandler
}

// TemplateI18nFuncs returns the functions the settings templates call for
// their own strings, ready for gotemplate.WithTemplateFunc:
//
//	{{ translate(locale, "settings.admin.save", "Save changes") }}
//	{{ current_locale(locale) }}
//
// The locale argument may be a locale string, a context from WithLocale or a
// map holding the locale under cfg.LocaleKey.
func TemplateI18nFuncs(t Translator, cfg TemplateI18nConfig) map[string]any {
	h := templateI18n{translator: t, localeKey: strings.TrimSpace(cfg.LocaleKey), onMissing: cfg.OnMissing}
	if h.localeKey == "" {
		h.localeKey = "locale"
	}
	if h.onMissing == nil {
		h.onMissing = missingTranslationDefault
	}
	return map[string]any{
		"translate":      h.translate,
		"current_locale": h.locale,
	}
}

type templateI18n struct {
	translator Translator
	localeKey  string
	onMissing  MissingTranslationHandler
}

func (h templateI18n) translate(src any, key string, fallback ...string) string {
	if key = strings.TrimSpace(key); key == "" {
		return ""
	}
	return translate(h.locale(src), key, strings.Join(fallback, " "), h.translator, h.onMissing)
}

func (h templateI18n) locale(src any) string {
	switch v := src.(type) {
	case string:
		return strings.TrimSpace(v)
	case context.Context:
		return LocaleFromContext(v)
	case map[string]string:
		return strings.TrimSpace(v[h.localeKey])
	case map[string]any:
		if value, ok := v[h.localeKey]; ok && value != nil {
			return strings.TrimSpace(fmt.Sprint(value))
		}
	}
	return ""
}
