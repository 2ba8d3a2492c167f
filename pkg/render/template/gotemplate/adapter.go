package gotemplate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-settingspage/pkg/render/template"
)

const defaultExtension = ".tpl"

// Option configures an Engine.
type Option func(*config)

type config struct {
	files     fs.FS
	extension string
	funcs     map[string]any
	globals   map[string]any
}

// WithFS sets the template bundle. It is required.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.files = files
	}
}

// WithExtension sets the suffix appended to template names that lack it.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		cfg.extension = "." + strings.TrimPrefix(ext, ".")
	}
}

// WithTemplateFunc exposes Go functions to every template, for example the
// translate helper from render.TemplateI18nFuncs. Non-function values are
// ignored.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		for name, fn := range funcs {
			name = strings.TrimSpace(name)
			if name == "" || fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
				continue
			}
			if cfg.funcs == nil {
				cfg.funcs = map[string]any{}
			}
			cfg.funcs[name] = fn
		}
	}
}

// WithGlobalData adds values every template can read, such as the theme.
// Values go through the same JSON conversion as render data.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		for key, value := range data {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if cfg.globals == nil {
				cfg.globals = map[string]any{}
			}
			cfg.globals[key] = value
		}
	}
}

// Engine renders named templates from an fs.FS with pongo2. Compiled
// templates are cached by path; the engine is safe for concurrent use.
type Engine struct {
	set *pongo2.TemplateSet
	ext string

	mu    sync.RWMutex
	cache map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine. Globals and functions are fixed at construction.
func New(options ...Option) (*Engine, error) {
	cfg := config{extension: defaultExtension}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.files == nil {
		return nil, errors.New("gotemplate: template fs is required")
	}

	globals, err := toContext(cfg.globals)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: global data: %w", err)
	}
	for name, fn := range cfg.funcs {
		globals[name] = fn
	}

	set := pongo2.NewSet("settingspage", pongo2.NewFSLoader(cfg.files))
	if set.Globals == nil {
		set.Globals = pongo2.Context{}
	}
	set.Globals.Update(globals)
	registerFilters()

	return &Engine{
		set:   set,
		ext:   cfg.extension,
		cache: make(map[string]*pongo2.Template),
	}, nil
}

// RenderTemplate executes the template stored under name, adding the engine
// extension when name has none. The result is returned and copied to out.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	if !strings.HasSuffix(name, e.ext) {
		name += e.ext
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: data for %q: %w", name, err)
	}

	rendered, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %q: %w", name, err)
	}
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func (e *Engine) lookup(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %q: %w", path, err)
	}
	e.cache[path] = tmpl
	return tmpl, nil
}

// toContext flattens data into plain maps, slices and scalars through its
// JSON form so templates see json tag names (field.desc_tip, theme.name).
// Functions are kept as they are so they stay callable.
func toContext(data any) (pongo2.Context, error) {
	ctx := pongo2.Context{}
	if data == nil {
		return ctx, nil
	}
	src, ok := data.(map[string]any)
	if !ok {
		if pc, isCtx := data.(pongo2.Context); isCtx {
			src = pc
		} else {
			decoded, err := viaJSON(data)
			if err != nil {
				return nil, err
			}
			if src, ok = decoded.(map[string]any); !ok {
				return nil, fmt.Errorf("template data must be an object, got %T", data)
			}
		}
	}
	for key, value := range src {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if value != nil && reflect.TypeOf(value).Kind() == reflect.Func {
			ctx[key] = value
			continue
		}
		plain, err := viaJSON(value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		ctx[key] = plain
	}
	return ctx, nil
}

func viaJSON(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var filtersOnce sync.Once

// registerFilters adds the filters the admin templates use. pongo2 keeps
// filters in a process-wide table, so this runs once.
func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("trim") {
			_ = pongo2.RegisterFilter("trim", filterTrim)
		}
		if !pongo2.FilterExists("attr_id") {
			_ = pongo2.RegisterFilter("attr_id", filterAttrID)
		}
	})
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterAttrID turns an option name into a token safe for id and for
// attributes.
func filterAttrID(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.TrimSpace(in.String()))), nil
}
