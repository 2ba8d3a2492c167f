package settings

import (
	"context"
	"io"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-settingspage/pkg/events"
	"github.com/goliatone/go-settingspage/pkg/model"
	"github.com/goliatone/go-settingspage/pkg/render"
)

// DefaultAdminURL is the admin root nav links point at when none is set.
const DefaultAdminURL = "/wp-admin"

// DefaultSectionLabel names the default section when a filter removed it.
const DefaultSectionLabel = "Overview"

type Option func(*Page)

// WithRenderer sets the renderer RenderFields delegates to.
func WithRenderer(renderer render.FieldRenderer) Option {
	return func(p *Page) {
		p.renderer = renderer
	}
}

// WithSaver sets the saver Persist delegates to.
func WithSaver(saver FieldSaver) Option {
	return func(p *Page) {
		p.saver = saver
	}
}

// WithEmitter sets the emitter Persist notifies after a successful save.
func WithEmitter(emitter events.Emitter) Option {
	return func(p *Page) {
		p.emitter = emitter
	}
}

// WithFilters shares a filter set with the page.
func WithFilters(filters *Filters) Option {
	return func(p *Page) {
		if filters != nil {
			p.filters = filters
		}
	}
}

// WithAdminURL sets the admin root used by navigation links.
func WithAdminURL(adminURL string) Option {
	return func(p *Page) {
		p.adminURL = strings.TrimRight(strings.TrimSpace(adminURL), "/")
	}
}

// WithUpdatePrefix overrides the update event name prefix.
func WithUpdatePrefix(prefix string) Option {
	return func(p *Page) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			p.updatePrefix = prefix
		}
	}
}

// WithTranslator resolves label keys for the tab and its sections.
func WithTranslator(translator render.Translator) Option {
	return func(p *Page) {
		p.translator = translator
	}
}

// WithLogger sets the logger and provider the page logs through.
func WithLogger(provider glog.LoggerProvider, logger glog.Logger) Option {
	return func(p *Page) {
		p.loggerProvider = provider
		p.logger = logger
	}
}

// Page is the Tab implementation backed by a static Definition. It keeps no
// per-request state; every call reads the definition and the filters.
type Page struct {
	def            model.Definition
	filters        *Filters
	renderer       render.FieldRenderer
	saver          FieldSaver
	emitter        events.Emitter
	translator     render.Translator
	adminURL       string
	updatePrefix   string
	loggerProvider glog.LoggerProvider
	logger         glog.Logger
}

var _ Tab = (*Page)(nil)

// New validates def and builds a Page around a private copy of it.
func New(def model.Definition, opts ...Option) (*Page, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	page := &Page{
		def:          cloneDefinition(def),
		filters:      NewFilters(),
		adminURL:     DefaultAdminURL,
		updatePrefix: events.DefaultUpdatePrefix,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(page)
	}

	provider, logger := glog.Resolve("settings", page.loggerProvider, page.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("settings." + page.def.ID); named != nil {
			logger = glog.Ensure(named)
		}
	}
	page.loggerProvider = provider
	page.logger = logger
	return page, nil
}

// Filters exposes the filter set so hosts and extensions can register hooks.
func (p *Page) Filters() *Filters {
	return p.filters
}

func (p *Page) ID() string {
	return p.def.ID
}

// Label returns the tab label, translated when a LabelKey and translator are
// configured.
func (p *Page) Label(ctx context.Context) string {
	return render.LocalizeLabel(render.LocaleFromContext(ctx), p.def.LabelKey, p.def.Label, p.translator, nil)
}

// ListSections returns the filtered section list. The result always holds
// exactly one default section (id ""), first when a filter removed it, and no
// duplicate ids.
func (p *Page) ListSections(ctx context.Context) []model.Section {
	sections := p.filters.ApplySections(ctx, p.def.ID, p.def.Sections)
	sections = normalizeSections(sections)
	return render.LocalizeSections(sections, render.LocaleFromContext(ctx), p.translator, nil)
}

// FieldsFor returns the filtered fields of the activeID section. activeID may
// be a section id or its URL slug. The default section and unknown ids hold
// no fields.
func (p *Page) FieldsFor(ctx context.Context, activeID string) []model.Field {
	activeID = resolveSection(p.ListSections(ctx), activeID)
	fields := model.CloneFields(p.def.Fields[activeID])
	if activeID == "" {
		fields = fields[:0]
	}
	return p.filters.ApplyFields(ctx, p.def.ID, activeID, fields)
}

// RenderFields writes the fields of the activeID section through the
// configured renderer.
func (p *Page) RenderFields(ctx context.Context, w io.Writer, activeID string, opts render.RenderOptions) error {
	if p.renderer == nil {
		return badInput("settings renderer not configured", map[string]any{"tab": p.def.ID})
	}
	if opts.Locale == "" {
		opts.Locale = render.LocaleFromContext(ctx)
	}
	if opts.Translator == nil {
		opts.Translator = p.translator
	}
	fields := p.FieldsFor(ctx, activeID)
	if err := p.renderer.RenderFields(ctx, w, fields, opts); err != nil {
		return wrapOperation(err, "render settings fields", ErrorCodeRender, map[string]any{
			"tab":     p.def.ID,
			"section": activeID,
		})
	}
	return nil
}

// Persist saves the submitted values for the activeID section. After a
// successful save of a known, non-default section it emits the update event
// <prefix>_<tab>_<section>, where section is the listed id even when activeID
// arrived as its slug. Save failures are returned and suppress the event.
func (p *Page) Persist(ctx context.Context, activeID string, submitted url.Values) error {
	logger := p.logger.WithContext(ctx)
	if p.saver == nil {
		return badInput("settings saver not configured", map[string]any{"tab": p.def.ID})
	}

	activeID = resolveSection(p.ListSections(ctx), activeID)
	fields := p.FieldsFor(ctx, activeID)
	if err := p.saver.SaveFields(ctx, fields, submitted); err != nil {
		logger.Error("settings save failed", "tab", p.def.ID, "section", activeID, "error", err)
		return keepRich(err, "save settings fields", ErrorCodePersist, map[string]any{
			"tab":     p.def.ID,
			"section": activeID,
		})
	}

	if activeID == "" || !p.hasSection(ctx, activeID) || p.emitter == nil {
		logger.Info("settings saved", "tab", p.def.ID, "section", activeID, "fields", len(fields))
		return nil
	}

	name := events.UpdateOptionsName(p.updatePrefix, p.def.ID, activeID)
	err := p.emitter.Emit(ctx, events.Event{
		Name: name,
		Payload: map[string]any{
			"tab":     p.def.ID,
			"section": activeID,
			"fields":  fieldIDs(fields),
		},
	})
	if err != nil {
		logger.Error("settings update event failed", "event", name, "error", err)
		return wrapOperation(err, "emit settings update event", ErrorCodeNotify, map[string]any{
			"tab":     p.def.ID,
			"section": activeID,
			"event":   name,
		})
	}
	logger.Info("settings saved", "tab", p.def.ID, "section", activeID, "fields", len(fields), "event", name)
	return nil
}

func (p *Page) hasSection(ctx context.Context, id string) bool {
	for _, section := range p.ListSections(ctx) {
		if section.ID == id {
			return true
		}
	}
	return false
}

// resolveSection maps a requested section to a listed section id. Links carry
// the slug of the id, so an exact id match wins and a slug match comes next.
// Unknown values come back unchanged.
func resolveSection(sections []model.Section, requested string) string {
	if requested == "" {
		return ""
	}
	slug := SanitizeTitle(requested)
	match, found := "", false
	for _, section := range sections {
		if section.ID == requested {
			return requested
		}
		if !found && section.ID != "" && SanitizeTitle(section.ID) == slug {
			match, found = section.ID, true
		}
	}
	if found {
		return match
	}
	return requested
}

func normalizeSections(sections []model.Section) []model.Section {
	out := make([]model.Section, 0, len(sections)+1)
	seen := make(map[string]struct{}, len(sections))
	for _, section := range sections {
		if _, dup := seen[section.ID]; dup {
			continue
		}
		seen[section.ID] = struct{}{}
		out = append(out, section)
	}
	if _, ok := seen[""]; !ok {
		out = append([]model.Section{{ID: "", Label: DefaultSectionLabel}}, out...)
	}
	return out
}

func fieldIDs(fields []model.Field) []string {
	ids := make([]string, 0, len(fields))
	for _, field := range fields {
		if field.ID == "" || field.Type.Structural() {
			continue
		}
		ids = append(ids, field.ID)
	}
	return ids
}

func cloneDefinition(def model.Definition) model.Definition {
	out := def
	out.Sections = model.CloneSections(def.Sections)
	out.Fields = make(map[string][]model.Field, len(def.Fields))
	for id, fields := range def.Fields {
		out.Fields[id] = model.CloneFields(fields)
	}
	return out
}

// IsValidationError reports whether err carries field validation failures.
func IsValidationError(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.Category == goerrors.CategoryValidation || richErr.Category == goerrors.CategoryBadInput
}
