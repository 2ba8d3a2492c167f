// Package app assembles the settings server and CLI from a resolved
// configuration: options storage, the tab definition, translations, theme
// and the HTTP handler.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-settingspage/internal/config"
	"github.com/goliatone/go-settingspage/pkg/admin"
	"github.com/goliatone/go-settingspage/pkg/events"
	"github.com/goliatone/go-settingspage/pkg/model"
	"github.com/goliatone/go-settingspage/pkg/options"
	"github.com/goliatone/go-settingspage/pkg/options/sqlstore"
	"github.com/goliatone/go-settingspage/pkg/orchestrator"
	"github.com/goliatone/go-settingspage/pkg/render"
	adminrender "github.com/goliatone/go-settingspage/pkg/renderers/admin"
	"github.com/goliatone/go-settingspage/pkg/settings"
)

type Option func(*builder)

type builder struct {
	provider  glog.LoggerProvider
	logger    glog.Logger
	renderers []render.FieldRenderer
	store     options.Store
}

// WithLogger sets the logger provider and fallback logger.
func WithLogger(provider glog.LoggerProvider, logger glog.Logger) Option {
	return func(b *builder) {
		b.provider = provider
		b.logger = logger
	}
}

// WithRenderers registers extra renderers next to the admin renderer.
func WithRenderers(renderers ...render.FieldRenderer) Option {
	return func(b *builder) {
		b.renderers = append(b.renderers, renderers...)
	}
}

// WithStore bypasses the configured storage driver.
func WithStore(store options.Store) Option {
	return func(b *builder) {
		b.store = store
	}
}

// App holds the assembled collaborators. Close releases the store.
type App struct {
	Config       config.Config
	Orchestrator *orchestrator.Orchestrator
	Handler      *admin.Handler
	Translator   render.Translator
	Logger       glog.Logger

	closers []func() error
}

// Build wires every collaborator described by cfg.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	b := &builder{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(b)
	}
	provider, logger := glog.Resolve("settings.app", b.provider, b.logger)
	logger = glog.Ensure(logger)

	a := &App{Config: cfg, Logger: logger}

	store := b.store
	if store == nil {
		opened, closer, err := openStore(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		store = opened
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
	}

	def, err := loadDefinition(cfg.Settings.DefinitionPath)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	var translator render.Translator
	if path := strings.TrimSpace(cfg.Settings.CatalogPath); path != "" {
		catalog, err := render.LoadCatalogFile(path, cfg.Settings.Locale)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("app: load catalog: %w", err)
		}
		translator = catalog
	}
	a.Translator = translator

	registry := render.NewRegistry()
	renderer, err := adminrender.New(
		adminrender.WithTheme(themeConfig(cfg.Theme)),
		adminrender.WithTranslator(translator),
	)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("app: admin renderer: %w", err)
	}
	registry.MustRegister(renderer)
	for _, extra := range b.renderers {
		if extra == nil {
			continue
		}
		if err := registry.Register(extra); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("app: %w", err)
		}
	}

	orchOpts := []orchestrator.Option{
		orchestrator.WithDefinition(def),
		orchestrator.WithRegistry(registry),
		orchestrator.WithStore(store),
		orchestrator.WithBus(events.NewBus()),
		orchestrator.WithTranslator(translator),
		orchestrator.WithAdminURL(cfg.Server.AdminURL),
		orchestrator.WithUpdatePrefix(cfg.Settings.UpdatePrefix),
		orchestrator.WithLogger(provider, logger),
	}
	if path := strings.TrimSpace(cfg.Settings.PresetPath); path != "" {
		preset, err := orchestrator.NewPresetFromFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("app: %w", err)
		}
		orchOpts = append(orchOpts, orchestrator.WithPreset(preset))
	}

	orch := orchestrator.New(orchOpts...)
	if err := orch.Err(); err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Orchestrator = orch

	if err := a.logUpdates(ctx, cfg.Settings.UpdatePrefix); err != nil {
		_ = a.Close()
		return nil, err
	}

	handlerOpts := []admin.Option{
		admin.WithLocale(cfg.Settings.Locale),
		admin.WithTranslator(translator),
		admin.WithLogger(logger),
	}
	if secret := strings.TrimSpace(cfg.Server.NonceSecret); secret != "" {
		handlerOpts = append(handlerOpts, admin.WithNonceSecret([]byte(secret)))
	}
	handler, err := admin.NewHandler(orch.Tabs(), store, handlerOpts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Handler = handler
	return a, nil
}

// Close releases resources acquired by Build.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// logUpdates subscribes a listener that reports every section update event.
func (a *App) logUpdates(ctx context.Context, prefix string) error {
	page := a.Orchestrator.Page()
	for _, section := range page.ListSections(ctx) {
		if section.IsDefault() {
			continue
		}
		name := events.UpdateOptionsName(prefix, page.ID(), section.ID)
		err := a.Orchestrator.Bus().Subscribe(name, events.ListenerFunc(func(ctx context.Context, event events.Event) error {
			a.Logger.WithContext(ctx).Info("settings updated", "event", event.Name, "id", event.ID)
			return nil
		}))
		if err != nil {
			return fmt.Errorf("app: subscribe %s: %w", name, err)
		}
	}
	return nil
}

func openStore(ctx context.Context, cfg config.StorageConfig) (options.Store, func() error, error) {
	if cfg.Driver == "memory" {
		return options.NewMemoryStore(nil), nil, nil
	}
	client, err := sqlstore.Open(sqlstore.Config{
		Driver:      cfg.Driver,
		DSN:         cfg.DSN,
		Debug:       cfg.Debug,
		PingTimeout: time.Duration(cfg.PingTimeoutMS) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}
	store, err := sqlstore.New(client)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return store, client.Close, nil
}

func loadDefinition(path string) (model.Definition, error) {
	if strings.TrimSpace(path) == "" {
		return settings.DefaultDefinition(), nil
	}
	return settings.LoadDefinitionFile(path)
}

func themeConfig(cfg config.ThemeConfig) *theme.RendererConfig {
	if cfg.Name == "" && cfg.Variant == "" && len(cfg.Tokens) == 0 && len(cfg.CSSVars) == 0 {
		return nil
	}
	return &theme.RendererConfig{
		Theme:   cfg.Name,
		Variant: cfg.Variant,
		Tokens:  cfg.Tokens,
		CSSVars: cfg.CSSVars,
	}
}
