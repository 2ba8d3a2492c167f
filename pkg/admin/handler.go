// Package admin serves the settings screen over HTTP: a tab strip, the
// section navigation of the active tab and the field form of the active
// section. Saving posts back to the same URL.
package admin

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-settingspage/pkg/model"
	"github.com/goliatone/go-settingspage/pkg/options"
	"github.com/goliatone/go-settingspage/pkg/render"
	rendertemplate "github.com/goliatone/go-settingspage/pkg/render/template"
	gotemplate "github.com/goliatone/go-settingspage/pkg/render/template/gotemplate"
	"github.com/goliatone/go-settingspage/pkg/settings"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// Query parameters understood by the handler.
const (
	ParamPage            = "page"
	ParamTab             = "tab"
	ParamSection         = "section"
	ParamSettingsUpdated = "settings-updated"
	ParamNonce           = "_wpnonce"
	PageSlug             = "wc-settings"
)

// ErrorCodeNonce tags posts rejected for a missing or stale nonce.
const ErrorCodeNonce = "SETTINGS_INVALID_NONCE"

type Option func(*Handler)

// WithTemplateRenderer replaces the page layout engine. The layout calls
// translate(locale, key, fallback), so a replacement must provide it.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(h *Handler) {
		if renderer != nil {
			h.templates = renderer
		}
	}
}

// WithLocale sets the locale used for labels and field text.
func WithLocale(locale string) Option {
	return func(h *Handler) {
		h.locale = strings.TrimSpace(locale)
	}
}

// WithTranslator resolves the handler's own strings (save button, notices)
// through the layout's translate function.
func WithTranslator(translator render.Translator) Option {
	return func(h *Handler) {
		h.translator = translator
	}
}

// WithNonceSecret turns on nonce checks. Every form carries a _wpnonce bound
// to its tab and section, and posts without the matching value are refused.
// An empty secret leaves checks off.
func WithNonceSecret(secret []byte) Option {
	return func(h *Handler) {
		h.nonceSecret = append([]byte(nil), secret...)
	}
}

// WithLogger sets the logger requests are reported through.
func WithLogger(logger glog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// Handler renders and saves settings tabs.
type Handler struct {
	tabs       *settings.Tabs
	store      options.Store
	templates  rendertemplate.TemplateRenderer
	translator render.Translator
	locale     string
	logger     glog.Logger

	nonceSecret []byte
}

// NewHandler builds a handler over the registered tabs. store supplies the
// current values shown in the form.
func NewHandler(tabs *settings.Tabs, store options.Store, opts ...Option) (*Handler, error) {
	if tabs == nil {
		return nil, errors.New("admin: tabs registry is required")
	}
	h := &Handler{tabs: tabs, store: store}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	if h.templates == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(embeddedTemplates),
			gotemplate.WithTemplateFunc(render.TemplateI18nFuncs(h.translator, render.TemplateI18nConfig{})),
		)
		if err != nil {
			return nil, err
		}
		h.templates = engine
	}
	_, logger := glog.Resolve("settings.admin", nil, h.logger)
	h.logger = glog.Ensure(logger)
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.locale != "" {
		ctx = render.WithLocale(ctx, h.locale)
	}
	logger := h.logger.WithContext(ctx)

	tab, err := h.resolveTab(r.URL.Query().Get(ParamTab))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	section := r.URL.Query().Get(ParamSection)

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		view := pageView{updated: r.URL.Query().Get(ParamSettingsUpdated) == "true"}
		h.renderPage(ctx, w, http.StatusOK, tab, section, view)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			h.writeError(w, r, goerrors.Wrap(err, goerrors.CategoryBadInput, "parse settings form").
				WithCode(http.StatusBadRequest).
				WithTextCode(settings.ErrorCodeBadInput))
			return
		}
		if !h.validNonce(tab.ID(), section, r.PostForm.Get(ParamNonce)) {
			logger.Warn("settings form nonce rejected", "tab", tab.ID(), "section", section)
			h.writeError(w, r, goerrors.New("settings form nonce is missing or invalid", goerrors.CategoryAuthz).
				WithCode(http.StatusForbidden).
				WithTextCode(ErrorCodeNonce))
			return
		}
		if err := tab.Persist(ctx, section, r.PostForm); err != nil {
			if settings.IsValidationError(err) {
				mapping := render.MapSaveError(tab.FieldsFor(ctx, section), err)
				logger.Info("settings form rejected", "tab", tab.ID(), "section", section)
				h.renderPage(ctx, w, http.StatusUnprocessableEntity, tab, section, pageView{
					errors:    mapping.Fields,
					formError: mapping.Form,
					submitted: r.PostForm,
				})
				return
			}
			h.writeError(w, r, err)
			return
		}
		target := sectionQuery(tab.ID(), section)
		target.Set(ParamSettingsUpdated, "true")
		http.Redirect(w, r, r.URL.Path+"?"+target.Encode(), http.StatusSeeOther)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *Handler) resolveTab(id string) (settings.Tab, error) {
	if strings.TrimSpace(id) == "" {
		if tab, ok := h.tabs.First(); ok {
			return tab, nil
		}
	}
	return h.tabs.Lookup(id)
}

type pageView struct {
	updated   bool
	errors    map[string][]string
	formError []string
	submitted url.Values
}

func (h *Handler) renderPage(ctx context.Context, w http.ResponseWriter, status int, tab settings.Tab, section string, view pageView) {
	sectionFields := tab.FieldsFor(ctx, section)
	values, err := h.currentValues(ctx, sectionFields)
	if err != nil {
		h.writeError(w, nil, err)
		return
	}
	// Rejected submissions are shown again as typed.
	for _, field := range sectionFields {
		if submitted, ok := view.submitted[field.ID]; ok && len(submitted) > 0 {
			values[field.ID] = submitted[0]
		}
	}

	var nav, fields bytes.Buffer
	if err := tab.RenderNav(ctx, &nav, section); err != nil {
		h.writeError(w, nil, err)
		return
	}
	opts := render.RenderOptions{
		Values:     values,
		Errors:     view.errors,
		Locale:     render.LocaleFromContext(ctx),
		Translator: h.translator,
		Hidden:     render.MergeHiddenFields(nil, h.hiddenFields(tab.ID(), section)...),
	}
	if err := tab.RenderFields(ctx, &fields, section, opts); err != nil {
		h.writeError(w, nil, err)
		return
	}

	entries := h.tabs.Entries(ctx)
	tabs := make([]map[string]any, 0, len(entries))
	currentLabel := ""
	for _, entry := range entries {
		current := entry.ID == tab.ID()
		if current {
			currentLabel = entry.Label
		}
		tabs = append(tabs, map[string]any{
			"label":   entry.Label,
			"url":     "?" + sectionQuery(entry.ID, "").Encode(),
			"current": current,
		})
	}

	page, err := h.templates.RenderTemplate("templates/page", map[string]any{
		"locale":        render.LocaleFromContext(ctx),
		"current_label": currentLabel,
		"tabs":          tabs,
		"updated":       view.updated,
		"form_errors":   view.formError,
		"action":        "?" + sectionQuery(tab.ID(), section).Encode(),
		"nav":           nav.String(),
		"fields":        fields.String(),
		"has_fields":    fields.Len() > 0,
	})
	if err != nil {
		h.writeError(w, nil, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(page))
}

func (h *Handler) hiddenFields(tabID, section string) []render.HiddenField {
	fields := render.RouteFields(tabID, section)
	if len(h.nonceSecret) > 0 {
		fields = append(fields, render.Hidden(ParamNonce, h.nonce(tabID, section)))
	}
	return fields
}

// nonce is an HMAC of the form route, so a token minted for one section does
// not validate a post to another.
func (h *Handler) nonce(tabID, section string) string {
	mac := hmac.New(sha256.New, h.nonceSecret)
	mac.Write([]byte(tabID + "\x00" + section))
	return hex.EncodeToString(mac.Sum(nil))
}

func (h *Handler) validNonce(tabID, section, got string) bool {
	if len(h.nonceSecret) == 0 {
		return true
	}
	return hmac.Equal([]byte(got), []byte(h.nonce(tabID, section)))
}

func (h *Handler) currentValues(ctx context.Context, fields []model.Field) (map[string]string, error) {
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		if field.ID == "" || field.Type.Structural() {
			continue
		}
		names = append(names, field.ID)
	}
	values := make(map[string]string, len(names))
	if len(names) == 0 || h.store == nil {
		return values, nil
	}
	stored, err := h.store.List(ctx, names...)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "load current settings").
			WithCode(http.StatusInternalServerError).
			WithTextCode(settings.ErrorCodeRender)
	}
	for name, value := range stored {
		values[name] = value
	}
	return values, nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}
	if status >= http.StatusInternalServerError {
		h.logger.WithContext(ctx).Error("settings request failed", "status", status, "error", err)
	}
	http.Error(w, http.StatusText(status), status)
}

// StatusFor maps an error to the HTTP status the handler responds with.
func StatusFor(err error) int {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return http.StatusInternalServerError
	}
	if richErr.Code >= 400 && richErr.Code < 600 {
		return richErr.Code
	}
	switch richErr.Category {
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryValidation:
		return http.StatusUnprocessableEntity
	case goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func sectionQuery(tabID, section string) url.Values {
	q := url.Values{}
	q.Set(ParamPage, PageSlug)
	q.Set(ParamTab, tabID)
	if section != "" {
		q.Set(ParamSection, section)
	}
	return q
}
