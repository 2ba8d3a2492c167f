package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"

	glog "github.com/goliatone/go-logger/glog"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-settingspage/pkg/events"
	"github.com/goliatone/go-settingspage/pkg/model"
	"github.com/goliatone/go-settingspage/pkg/options"
	"github.com/goliatone/go-settingspage/pkg/persist"
	"github.com/goliatone/go-settingspage/pkg/render"
	"github.com/goliatone/go-settingspage/pkg/renderers/admin"
	"github.com/goliatone/go-settingspage/pkg/settings"
)

const defaultRendererName = admin.Name

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithDefinition replaces the built-in tab definition.
func WithDefinition(def model.Definition) Option {
	return func(o *Orchestrator) {
		o.definition = def
		o.definitionSet = true
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithStore sets the options store values are read from and saved to.
func WithStore(store options.Store) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithBus sets the bus update events are emitted on.
func WithBus(bus *events.Bus) Option {
	return func(o *Orchestrator) {
		o.bus = bus
	}
}

// WithSectionsDecorators registers decorators run over the section list.
func WithSectionsDecorators(decorators ...model.SectionsDecorator) Option {
	return func(o *Orchestrator) {
		o.sectionDecorators = append(o.sectionDecorators, decorators...)
	}
}

// WithFieldsDecorators registers decorators run over each section's fields.
func WithFieldsDecorators(decorators ...model.FieldsDecorator) Option {
	return func(o *Orchestrator) {
		o.fieldDecorators = append(o.fieldDecorators, decorators...)
	}
}

// WithPreset registers a preset as both a sections and a fields decorator.
func WithPreset(preset *Preset) Option {
	return func(o *Orchestrator) {
		if preset == nil {
			return
		}
		o.sectionDecorators = append(o.sectionDecorators, preset)
		o.fieldDecorators = append(o.fieldDecorators, preset)
	}
}

// WithTheme passes theme tokens to the default admin renderer. Ignored when
// a registry is injected.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(o *Orchestrator) {
		o.theme = cfg
	}
}

// WithTranslator resolves label and field translation keys.
func WithTranslator(translator render.Translator) Option {
	return func(o *Orchestrator) {
		o.translator = translator
	}
}

// WithAdminURL sets the admin root navigation links point at.
func WithAdminURL(adminURL string) Option {
	return func(o *Orchestrator) {
		o.adminURL = adminURL
	}
}

// WithUpdatePrefix overrides the update event name prefix.
func WithUpdatePrefix(prefix string) Option {
	return func(o *Orchestrator) {
		o.updatePrefix = prefix
	}
}

// WithLogger sets the logger provider and fallback logger.
func WithLogger(provider glog.LoggerProvider, logger glog.Logger) Option {
	return func(o *Orchestrator) {
		o.loggerProvider = provider
		o.logger = logger
	}
}

// Orchestrator owns one settings tab and the collaborators it delegates to.
// Missing collaborators fall back to the built-in ones: admin renderer,
// in-memory store, synchronous bus and the built-in tab definition.
type Orchestrator struct {
	definition        model.Definition
	definitionSet     bool
	registry          *render.Registry
	defaultRenderer   string
	store             options.Store
	bus               *events.Bus
	sectionDecorators []model.SectionsDecorator
	fieldDecorators   []model.FieldsDecorator
	theme             *theme.RendererConfig
	translator        render.Translator
	adminURL          string
	updatePrefix      string
	loggerProvider    glog.LoggerProvider
	logger            glog.Logger

	page          *settings.Page
	tabs          *settings.Tabs
	initialiseErr error
}

// New constructs an Orchestrator applying any provided options. Wiring
// errors are kept and reported by Err and by every operation.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	provider, logger := glog.Resolve("settings.orchestrator", o.loggerProvider, o.logger)
	o.loggerProvider = provider
	o.logger = glog.Ensure(logger)

	if !o.definitionSet {
		o.definition = settings.DefaultDefinition()
	}
	if o.store == nil {
		o.store = options.NewMemoryStore(nil)
	}
	if o.bus == nil {
		o.bus = events.NewBus()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := admin.New(admin.WithTheme(o.theme), admin.WithTranslator(o.translator))
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: admin renderer: %w", err)
			return
		}
		o.registry.MustRegister(renderer)
	}

	renderer, err := o.rendererFor("")
	if err != nil {
		o.initialiseErr = err
		return
	}

	filters := settings.NewFilters()
	for _, decorator := range o.sectionDecorators {
		if decorator != nil {
			filters.AddSections(settings.SectionsDecorator(decorator))
		}
	}
	for _, decorator := range o.fieldDecorators {
		if decorator != nil {
			filters.AddFields(settings.FieldsDecorator(decorator))
		}
	}

	pageOpts := []settings.Option{
		settings.WithRenderer(renderer),
		settings.WithSaver(persist.New(o.store, persist.WithLogger(o.logger))),
		settings.WithEmitter(o.bus),
		settings.WithFilters(filters),
		settings.WithTranslator(o.translator),
		settings.WithUpdatePrefix(o.updatePrefix),
		settings.WithLogger(o.loggerProvider, o.logger),
	}
	if o.adminURL != "" {
		pageOpts = append(pageOpts, settings.WithAdminURL(o.adminURL))
	}
	page, err := settings.New(o.definition, pageOpts...)
	if err != nil {
		o.initialiseErr = err
		return
	}

	tabs := settings.NewTabs()
	if err := tabs.RegisterAt(settings.TabPriority, page); err != nil {
		o.initialiseErr = err
		return
	}
	o.page = page
	o.tabs = tabs
}

// Err reports the wiring error New ran into, if any.
func (o *Orchestrator) Err() error {
	return o.initialiseErr
}

// Page returns the configured tab.
func (o *Orchestrator) Page() *settings.Page {
	return o.page
}

// Tabs returns the tab list holding the configured tab.
func (o *Orchestrator) Tabs() *settings.Tabs {
	return o.tabs
}

// Store returns the options store.
func (o *Orchestrator) Store() options.Store {
	return o.store
}

// Bus returns the event bus update events are emitted on.
func (o *Orchestrator) Bus() *events.Bus {
	return o.bus
}

// Registry returns the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// Request describes one render of a tab section.
type Request struct {
	// Section is the active section id; empty selects the overview.
	Section string

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// SkipNav omits the section navigation from the output.
	SkipNav bool

	// RenderOptions carries prefilled values, errors and hidden inputs.
	// Values not supplied here are read from the store.
	RenderOptions render.RenderOptions
}

// Render writes the section navigation followed by the fields of
// req.Section and returns the output.
func (o *Orchestrator) Render(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	fields := o.page.FieldsFor(ctx, req.Section)
	opts, err := o.renderOptions(ctx, req, fields)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if !req.SkipNav {
		if err := o.page.RenderNav(ctx, &buf, req.Section); err != nil {
			return nil, fmt.Errorf("orchestrator: render nav: %w", err)
		}
	}
	if err := renderer.RenderFields(ctx, &buf, fields, opts); err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return buf.Bytes(), nil
}

// Save persists submitted values for section through the tab.
func (o *Orchestrator) Save(ctx context.Context, section string, submitted url.Values) error {
	if ctx == nil {
		return errors.New("orchestrator: context is required")
	}
	if err := o.initialiseErr; err != nil {
		return err
	}
	return o.page.Persist(ctx, section, submitted)
}

// Values returns the stored values of the fields in section, falling back
// to each field's default.
func (o *Orchestrator) Values(ctx context.Context, section string) (map[string]string, error) {
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	return o.currentValues(ctx, o.page.FieldsFor(ctx, section))
}

func (o *Orchestrator) renderOptions(ctx context.Context, req Request, fields []model.Field) (render.RenderOptions, error) {
	opts := req.RenderOptions
	stored, err := o.currentValues(ctx, fields)
	if err != nil {
		return opts, err
	}
	for key, value := range opts.Values {
		stored[key] = value
	}
	opts.Values = stored
	opts.Hidden = render.MergeHiddenFields(opts.Hidden, render.RouteFields(o.page.ID(), req.Section)...)
	if opts.Locale == "" {
		opts.Locale = render.LocaleFromContext(ctx)
	}
	if opts.Translator == nil {
		opts.Translator = o.translator
	}
	return opts, nil
}

func (o *Orchestrator) currentValues(ctx context.Context, fields []model.Field) (map[string]string, error) {
	names := make([]string, 0, len(fields))
	values := make(map[string]string, len(fields))
	for _, field := range fields {
		if field.ID == "" || field.Type.Structural() {
			continue
		}
		names = append(names, field.ID)
		if field.Default != "" {
			values[field.ID] = field.Default
		}
	}
	if len(names) == 0 {
		return values, nil
	}
	stored, err := o.store.List(ctx, names...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: read stored values: %w", err)
	}
	for key, value := range stored {
		values[key] = value
	}
	return values, nil
}

func (o *Orchestrator) rendererFor(name string) (render.FieldRenderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}
