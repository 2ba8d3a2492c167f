package admin

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-settingspage/pkg/model"
	"github.com/goliatone/go-settingspage/pkg/render"
	rendertemplate "github.com/goliatone/go-settingspage/pkg/render/template"
	gotemplate "github.com/goliatone/go-settingspage/pkg/render/template/gotemplate"
	"github.com/goliatone/go-settingspage/pkg/renderers/admin/components"
	"github.com/goliatone/go-settingspage/pkg/widgets"
)

// Name is the registry key of the admin renderer.
const Name = "admin"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	components       *components.Registry
	widgets          *widgets.Registry
	theme            *theme.RendererConfig
	translator       render.Translator
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation. The
// built-in templates read the theme from a "theme" global and call
// translate(locale, key, fallback); a replacement must provide both.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default component set.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// WithWidgetRegistry replaces the field type to component resolution rules.
func WithWidgetRegistry(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.widgets = registry
		}
	}
}

// WithTheme applies theme tokens, CSS variables and partial overrides.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// WithTranslator resolves the renderer's own strings, such as the error
// prefix read by screen readers. Field text is translated per request from
// RenderOptions.
func WithTranslator(translator render.Translator) Option {
	return func(cfg *config) {
		cfg.translator = translator
	}
}

// Renderer writes settings fields as admin form-table markup.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	components *components.Registry
	widgets    *widgets.Registry
	theme      themeContext
}

var _ render.FieldRenderer = (*Renderer)(nil)

// New constructs the admin renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	themeCtx := buildThemeContext(cfg.theme)
	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithGlobalData(map[string]any{"theme": themeCtx}),
			gotemplate.WithTemplateFunc(render.TemplateI18nFuncs(cfg.translator, render.TemplateI18nConfig{})),
		)
		if err != nil {
			return nil, fmt.Errorf("admin renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}
	if cfg.components == nil {
		cfg.components = components.NewDefaultRegistry()
	}
	if cfg.widgets == nil {
		cfg.widgets = widgets.NewRegistry()
	}

	return &Renderer{
		templates:  renderer,
		components: cfg.components,
		widgets:    cfg.widgets,
		theme:      themeCtx,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// RenderFields writes the markup for fields to w. An empty field list writes
// nothing.
func (r *Renderer) RenderFields(_ context.Context, w io.Writer, fields []model.Field, opts render.RenderOptions) error {
	if r == nil || r.templates == nil {
		return fmt.Errorf("admin renderer: template renderer is nil")
	}
	if len(fields) == 0 {
		return nil
	}

	fields = render.LocalizeFields(fields, opts)
	state := &tableState{}

	var out strings.Builder
	for _, field := range fields {
		if err := r.renderField(&out, state, field, opts); err != nil {
			return err
		}
	}
	if state.open {
		out.WriteString("</table>\n")
	}
	for _, hidden := range render.SortedHiddenFields(opts.Hidden) {
		writeHiddenInput(&out, hidden.Name, hidden.Value)
	}

	if _, err := io.WriteString(w, out.String()); err != nil {
		return fmt.Errorf("admin renderer: write output: %w", err)
	}
	return nil
}

type themeContext struct {
	Name       string `json:"name,omitempty"`
	Variant    string `json:"variant,omitempty"`
	Style      string `json:"style,omitempty"`
	InputClass string `json:"-"`
	TableClass string `json:"-"`

	partials map[string]string
}

func buildThemeContext(cfg *theme.RendererConfig) themeContext {
	ctx := themeContext{TableClass: ClassFormTable}
	if cfg == nil {
		return ctx
	}
	ctx.Name = cfg.Theme
	ctx.Variant = cfg.Variant
	ctx.Style = cssVarsStyle(cfg.CSSVars)
	ctx.partials = copyStringMap(cfg.Partials)
	if cls := strings.TrimSpace(cfg.Tokens[TokenInputClass]); cls != "" {
		ctx.InputClass = cls
	}
	if cls := strings.TrimSpace(cfg.Tokens[TokenTableClass]); cls != "" {
		ctx.TableClass = ClassFormTable + " " + cls
	}
	return ctx
}
