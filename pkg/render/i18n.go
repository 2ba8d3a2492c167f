package render

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-settingspage/pkg/model"
)

// Translator resolves a translation key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides the string used when a lookup fails.
// args carries a map with the literal "default" value when one exists.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// ErrMissingTranslator is passed to MissingTranslationHandler when a key must
// be resolved but no Translator was configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	for _, arg := range args {
		values, ok := arg.(map[string]any)
		if !ok {
			continue
		}
		if fallback := strings.TrimSpace(anyToString(values["default"])); fallback != "" {
			return fallback
		}
	}
	return key
}

type localeContextKey struct{}

// WithLocale stores the request locale on ctx.
func WithLocale(ctx context.Context, locale string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, localeContextKey{}, strings.TrimSpace(locale))
}

// LocaleFromContext returns the locale stored by WithLocale, if any.
func LocaleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	locale, _ := ctx.Value(localeContextKey{}).(string)
	return locale
}

// LocalizeLabel resolves key for locale, falling back to the literal label.
func LocalizeLabel(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	return translate(locale, key, fallback, t, onMissing)
}

// LocalizeFields returns a copy of fields with TitleKey/DescriptionKey hints
// replaced by their translated values. Lookups are best-effort; failures are
// routed through opts.OnMissing.
func LocalizeFields(fields []model.Field, opts RenderOptions) []model.Field {
	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	out := model.CloneFields(fields)
	for i := range out {
		if key := strings.TrimSpace(out[i].TitleKey); key != "" {
			out[i].Title = translate(opts.Locale, key, strings.TrimSpace(out[i].Title), opts.Translator, onMissing)
		}
		if key := strings.TrimSpace(out[i].DescriptionKey); key != "" {
			out[i].Description = translate(opts.Locale, key, strings.TrimSpace(out[i].Description), opts.Translator, onMissing)
		}
	}
	return out
}

// LocalizeSections returns a copy of sections with LabelKey hints resolved.
func LocalizeSections(sections []model.Section, locale string, t Translator, onMissing MissingTranslationHandler) []model.Section {
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	out := model.CloneSections(sections)
	for i := range out {
		if key := strings.TrimSpace(out[i].LabelKey); key != "" {
			out[i].Label = translate(locale, key, strings.TrimSpace(out[i].Label), t, onMissing)
		}
	}
	return out
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
		}
		if strings.TrimSpace(fallback) != "" {
			return fallback
		}
		return key
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}

	if onMissing != nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

func anyToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return ""
	}
}
