// Package persist sanitizes submitted settings values by field type and
// writes them to an options store.
package persist

import (
	"context"
	"html"
	"net/http"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-settingspage/pkg/model"
	"github.com/goliatone/go-settingspage/pkg/options"
)

// Text codes attached to saver errors.
const (
	ErrorCodeValidation = "SETTINGS_VALIDATION"
	ErrorCodeStorage    = "SETTINGS_STORAGE"
)

// Checkbox values written to the store.
const (
	CheckboxOn  = "yes"
	CheckboxOff = "no"
)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy

	richPolicyOnce sync.Once
	richPolicy     *bluemonday.Policy
)

type Option func(*Saver)

// WithLogger sets the logger the saver reports writes through.
func WithLogger(logger glog.Logger) Option {
	return func(s *Saver) {
		s.logger = logger
	}
}

// Saver reads the submitted value of every value-bearing field, cleans it
// according to the field type and stores it under the field id. Nothing is
// written when any field fails validation.
type Saver struct {
	store  options.Store
	logger glog.Logger
}

// New builds a saver writing to store.
func New(store options.Store, opts ...Option) *Saver {
	saver := &Saver{store: store}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(saver)
	}
	_, logger := glog.Resolve("settings.persist", nil, saver.logger)
	saver.logger = glog.Ensure(logger)
	return saver
}

type pendingWrite struct {
	name  string
	value string
}

// SaveFields validates every field first and then writes the cleaned values.
func (s *Saver) SaveFields(ctx context.Context, fields []model.Field, submitted url.Values) error {
	if s == nil || s.store == nil {
		return goerrors.New("settings store not configured", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(ErrorCodeStorage)
	}

	var (
		writes      []pendingWrite
		fieldErrors []goerrors.FieldError
	)
	for _, field := range fields {
		if field.ID == "" || field.Type.Structural() {
			continue
		}
		raw, present := lookup(submitted, field.ID)
		if !present && field.Type != model.FieldTypeCheckbox {
			continue
		}
		value, message := Sanitize(field, raw, present)
		if message != "" {
			fieldErrors = append(fieldErrors, goerrors.FieldError{Field: field.ID, Message: message})
			continue
		}
		writes = append(writes, pendingWrite{name: field.ID, value: value})
	}

	if len(fieldErrors) > 0 {
		return goerrors.NewValidation("settings: validation failed", fieldErrors...).
			WithCode(http.StatusBadRequest).
			WithTextCode(ErrorCodeValidation)
	}

	logger := s.logger.WithContext(ctx)
	for _, write := range writes {
		if err := s.store.Set(ctx, write.name, write.value); err != nil {
			logger.Error("settings option write failed", "option", write.name, "error", err)
			return goerrors.Wrap(err, goerrors.CategoryOperation, "settings: store option").
				WithCode(http.StatusInternalServerError).
				WithTextCode(ErrorCodeStorage).
				WithMetadata(map[string]any{"option": write.name})
		}
	}
	logger.Debug("settings options written", "count", len(writes))
	return nil
}

// Sanitize cleans one submitted value for field. present reports whether the
// value was part of the submission. A non-empty message means the value was
// rejected.
func Sanitize(field model.Field, raw string, present bool) (value string, message string) {
	switch field.Type {
	case model.FieldTypeCheckbox:
		if present && checkboxOn(raw) {
			return CheckboxOn, ""
		}
		return CheckboxOff, ""
	case model.FieldTypeTextarea:
		return cleanRich(raw), ""
	case model.FieldTypeSelect:
		cleaned := cleanText(raw)
		for _, option := range field.Options {
			if option.Value == cleaned {
				return cleaned, ""
			}
		}
		return field.Default, ""
	case model.FieldTypeNumber:
		cleaned := cleanText(raw)
		if cleaned == "" {
			return "", ""
		}
		if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
			return "", "must be a number"
		}
		return cleaned, ""
	case model.FieldTypeEmail:
		cleaned := cleanText(raw)
		if cleaned == "" {
			return "", ""
		}
		addr, err := mail.ParseAddress(cleaned)
		if err != nil {
			return "", "must be a valid email address"
		}
		return addr.Address, ""
	default:
		return cleanText(raw), ""
	}
}

func lookup(values url.Values, name string) (string, bool) {
	if values == nil {
		return "", false
	}
	entries, ok := values[name]
	if !ok || len(entries) == 0 {
		return "", false
	}
	return entries[0], true
}

func checkboxOn(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "yes", "on", "true":
		return true
	default:
		return false
	}
}

// maxTextPasses bounds how many entity layers cleanText peels off.
const maxTextPasses = 4

// cleanText strips all markup and surrounding whitespace from single-line
// input. Entities are decoded so "a & b" is stored as typed, and the decoded
// text is stripped again until it stops changing. Entity-encoded tags never
// come back as markup.
func cleanText(raw string) string {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	current := raw
	for range maxTextPasses {
		next := html.UnescapeString(strictPolicy.Sanitize(current))
		if next == current {
			return strings.TrimSpace(next)
		}
		current = next
	}
	// Still unstable: keep the escaped form rather than decoded markup.
	return strings.TrimSpace(strictPolicy.Sanitize(current))
}

// cleanRich keeps the inline markup allowed in user content.
func cleanRich(raw string) string {
	richPolicyOnce.Do(func() {
		richPolicy = bluemonday.UGCPolicy()
	})
	return strings.TrimSpace(richPolicy.Sanitize(raw))
}
