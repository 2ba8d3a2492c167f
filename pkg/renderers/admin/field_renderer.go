package admin

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-settingspage/pkg/model"
	"github.com/goliatone/go-settingspage/pkg/render"
	"github.com/goliatone/go-settingspage/pkg/renderers/admin/components"
)

// tableState tracks whether a form-table is open so sectionend only closes
// tables that a title (or a leading field) opened.
type tableState struct {
	open bool
}

func (r *Renderer) renderField(out *strings.Builder, state *tableState, field model.Field, opts render.RenderOptions) error {
	switch field.Type {
	case model.FieldTypeTitle:
		if state.open {
			out.WriteString("</table>\n")
			state.open = false
		}
		rendered, err := r.templates.RenderTemplate("templates/title.tmpl", map[string]any{
			"field":       field,
			"description": sanitizeDescription(field.Description),
		})
		if err != nil {
			return fmt.Errorf("admin renderer: render title %q: %w", field.ID, err)
		}
		out.WriteString(rendered)
		return r.openTable(out, state)
	case model.FieldTypeSectionEnd:
		if state.open {
			out.WriteString("</table>\n")
			state.open = false
		}
		return nil
	}

	componentName, ok := r.widgets.Resolve(field)
	if !ok {
		return fmt.Errorf("admin renderer: no component resolves field %q of type %q", field.ID, field.Type)
	}
	descriptor, ok := r.components.Descriptor(componentName)
	if !ok {
		return fmt.Errorf("admin renderer: component %q not registered for field %q", componentName, field.ID)
	}

	if !state.open {
		if err := r.openTable(out, state); err != nil {
			return err
		}
	}

	description := sanitizeDescription(field.Description)
	tooltip := ""
	if field.DescTip {
		tooltip = tooltipText(field.Description)
		description = ""
	}

	data := components.ComponentData{
		Template:      r.templates,
		Value:         fieldValue(field, opts.Values),
		InputClass:    r.theme.InputClass,
		Description:   description,
		ThemePartials: r.theme.partials,
	}
	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, data); err != nil {
		return fmt.Errorf("admin renderer: render component %q for field %q: %w", componentName, field.ID, err)
	}
	if descriptor.InlineDescription {
		description = ""
	}

	errs := opts.Errors[field.ID]
	rowClass := ""
	if len(errs) > 0 {
		rowClass = ClassRowError
	}

	rendered, err := r.templates.RenderTemplate("templates/row.tmpl", map[string]any{
		"field":       field,
		"control":     strings.TrimSpace(control.String()),
		"description": description,
		"tooltip":     tooltip,
		"errors":      errs,
		"row_class":   rowClass,
		"error_class": ClassFieldError,
		"locale":      opts.Locale,
	})
	if err != nil {
		return fmt.Errorf("admin renderer: render row %q: %w", field.ID, err)
	}
	out.WriteString(rendered)
	return nil
}

func (r *Renderer) openTable(out *strings.Builder, state *tableState) error {
	rendered, err := r.templates.RenderTemplate("templates/table_open.tmpl", map[string]any{
		"table_class": r.theme.TableClass,
	})
	if err != nil {
		return fmt.Errorf("admin renderer: open table: %w", err)
	}
	out.WriteString(rendered)
	state.open = true
	return nil
}

func fieldValue(field model.Field, values map[string]string) string {
	if values != nil {
		if value, ok := values[field.ID]; ok {
			return value
		}
	}
	return field.Default
}
