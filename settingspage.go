// Package settingspage exposes the most common entry points of the module
// so callers can register and render the built-in settings tab from one
// import.
package settingspage

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-settingspage/pkg/model"
	"github.com/goliatone/go-settingspage/pkg/orchestrator"
	"github.com/goliatone/go-settingspage/pkg/render"
	"github.com/goliatone/go-settingspage/pkg/renderers/admin"
	"github.com/goliatone/go-settingspage/pkg/settings"
)

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface save errors.
type RenderOptions = render.RenderOptions

// Tab is the contract hosts drive a settings tab through.
type Tab = settings.Tab

// Definition is the static table of sections and fields behind a tab.
type Definition = model.Definition

// Field describes one settings field.
type Field = model.Field

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// DefaultDefinition returns the built-in tab: an overview section and a
// license section.
func DefaultDefinition() Definition {
	return settings.DefaultDefinition()
}

// RenderHTML renders the navigation and fields of section with the admin
// renderer. It is the simplest entry point for callers that just want HTML.
func RenderHTML(ctx context.Context, section string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Render(ctx, orchestrator.Request{
		Section:  section,
		Renderer: admin.Name,
	})
}

// EmbeddedTemplates exposes the admin renderer templates so callers can
// reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return admin.TemplatesFS()
}
