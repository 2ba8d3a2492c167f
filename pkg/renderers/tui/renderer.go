package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-settingspage/pkg/model"
	"github.com/goliatone/go-settingspage/pkg/persist"
	"github.com/goliatone/go-settingspage/pkg/render"
)

// Name is the registry key of the terminal renderer.
const Name = "tui"

const defaultMaxAttempts = 3

var (
	plainPolicyOnce sync.Once
	plainPolicy     *bluemonday.Policy
)

// Renderer walks a section's fields with terminal prompts. Collect returns
// the answers as a form submission ready for Tab.Persist; RenderFields
// serializes them to a writer so the renderer can sit in a render.Registry.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	maxAttempts  int
	theme        Theme
}

var _ render.FieldRenderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, form output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatFormURLEncoded,
		maxAttempts:  defaultMaxAttempts,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by RenderFields.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatJSON:
		return "application/json"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/x-www-form-urlencoded"
	}
}

// RenderFields prompts for fields and writes the collected answers to w.
func (r *Renderer) RenderFields(ctx context.Context, w io.Writer, fields []model.Field, opts render.RenderOptions) error {
	values, err := r.Collect(ctx, fields, opts)
	if err != nil {
		return err
	}
	payload, err := r.serialize(values)
	if err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// Collect prompts for every value-bearing field and returns the answers.
// Title fields are printed as headings; section ends are skipped.
func (r *Renderer) Collect(ctx context.Context, fields []model.Field, opts render.RenderOptions) (url.Values, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	state := NewState(opts.Values, opts.Errors)
	for _, field := range render.LocalizeFields(fields, opts) {
		if err := r.promptField(ctx, field, state); err != nil {
			return nil, err
		}
	}
	for _, hidden := range render.SortedHiddenFields(opts.Hidden) {
		state.Set(hidden.Name, hidden.Value)
	}
	return state.Values(), nil
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, state *State) error {
	switch field.Type {
	case model.FieldTypeTitle:
		return r.printHeading(ctx, field)
	case model.FieldTypeSectionEnd:
		return nil
	}
	if strings.TrimSpace(field.ID) == "" {
		return nil
	}
	for _, message := range state.Errors(field.ID) {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return err
		}
	}

	switch field.Type {
	case model.FieldTypeCheckbox:
		return r.promptCheckbox(ctx, field, state)
	case model.FieldTypeSelect:
		return r.promptSelect(ctx, field, state)
	case model.FieldTypePassword:
		return r.promptPassword(ctx, field, state)
	case model.FieldTypeTextarea:
		return r.promptTextArea(ctx, field, state)
	default:
		return r.promptInput(ctx, field, state)
	}
}

func (r *Renderer) printHeading(ctx context.Context, field model.Field) error {
	lines := make([]string, 0, 2)
	if title := strings.TrimSpace(field.Title); title != "" {
		lines = append(lines, r.theme.InfoPrefix+title)
	}
	if desc := plainText(field.Description); desc != "" {
		lines = append(lines, desc)
	}
	if len(lines) == 0 {
		return nil
	}
	return r.driver.Info(ctx, strings.Join(lines, "\n"))
}

func (r *Renderer) promptInput(ctx context.Context, field model.Field, state *State) error {
	current := state.Current(field.ID, field.Default)
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		answer, err := r.driver.Input(ctx, InputConfig{
			Message: r.message(field),
			Default: current,
			Help:    plainText(field.Description),
		})
		if err != nil {
			return err
		}
		if _, message := persist.Sanitize(field, answer, true); message != "" {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+field.Title+": "+message); err != nil {
				return err
			}
			continue
		}
		state.Set(field.ID, answer)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrTooManyAttempts, field.ID)
}

// promptPassword keeps the stored secret when the answer is left empty.
func (r *Renderer) promptPassword(ctx context.Context, field model.Field, state *State) error {
	answer, err := r.driver.Password(ctx, InputConfig{
		Message: r.message(field),
		Help:    plainText(field.Description),
	})
	if err != nil {
		return err
	}
	if answer == "" {
		answer = state.Current(field.ID, field.Default)
	}
	state.Set(field.ID, answer)
	return nil
}

func (r *Renderer) promptTextArea(ctx context.Context, field model.Field, state *State) error {
	answer, err := r.driver.TextArea(ctx, TextAreaConfig{
		Message: r.message(field),
		Default: state.Current(field.ID, field.Default),
		Help:    plainText(field.Description),
	})
	if err != nil {
		return err
	}
	state.Set(field.ID, answer)
	return nil
}

// promptCheckbox mirrors a browser: unchecked boxes are left out of the
// submission.
func (r *Renderer) promptCheckbox(ctx context.Context, field model.Field, state *State) error {
	checked, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: r.message(field),
		Default: state.Current(field.ID, field.Default) == persist.CheckboxOn,
		Help:    plainText(field.Description),
	})
	if err != nil {
		return err
	}
	if checked {
		state.Set(field.ID, persist.CheckboxOn)
	}
	return nil
}

func (r *Renderer) promptSelect(ctx context.Context, field model.Field, state *State) error {
	if len(field.Options) == 0 {
		return nil
	}
	current := state.Current(field.ID, field.Default)
	labels := make([]string, 0, len(field.Options))
	defaultIndex := 0
	for i, option := range field.Options {
		label := option.Label
		if strings.TrimSpace(label) == "" {
			label = option.Value
		}
		labels = append(labels, label)
		if option.Value == current {
			defaultIndex = i
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      r.message(field),
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         plainText(field.Description),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(field.Options) {
		return fmt.Errorf("tui: select returned out of range index %d for %s", idx, field.ID)
	}
	state.Set(field.ID, field.Options[idx].Value)
	return nil
}

func (r *Renderer) message(field model.Field) string {
	title := strings.TrimSpace(field.Title)
	if title == "" {
		title = field.ID
	}
	return r.theme.PromptPrefix + title
}

func (r *Renderer) serialize(values url.Values) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatJSON:
		flat := make(map[string]string, len(values))
		for key := range values {
			flat[key] = values.Get(key)
		}
		return json.Marshal(flat)
	case OutputFormatPrettyText:
		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, key := range keys {
			b.WriteString(key)
			b.WriteString(": ")
			b.WriteString(values.Get(key))
			b.WriteByte('\n')
		}
		return []byte(b.String()), nil
	default:
		return []byte(values.Encode()), nil
	}
}

func plainText(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	plainPolicyOnce.Do(func() {
		plainPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(value)))
}
