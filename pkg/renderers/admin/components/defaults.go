package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-settingspage/pkg/model"
	"github.com/goliatone/go-settingspage/pkg/widgets"
)

const templatePrefix = "templates/components/"

// NewDefaultRegistry constructs a registry pre-populated with the built-in
// components, one per widget the widgets registry can resolve.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(widgets.WidgetInput, Descriptor{
		Renderer: templateComponentRenderer("settings.input", templatePrefix+"input.tmpl"),
	})
	registry.MustRegister(widgets.WidgetPassword, Descriptor{
		Renderer: templateComponentRenderer("settings.password", templatePrefix+"input.tmpl"),
	})
	registry.MustRegister(widgets.WidgetTextarea, Descriptor{
		Renderer: templateComponentRenderer("settings.textarea", templatePrefix+"textarea.tmpl"),
	})
	registry.MustRegister(widgets.WidgetSelect, Descriptor{
		Renderer: templateComponentRenderer("settings.select", templatePrefix+"select.tmpl"),
	})
	registry.MustRegister(widgets.WidgetCheckbox, Descriptor{
		Renderer:          templateComponentRenderer("settings.checkbox", templatePrefix+"checkbox.tmpl"),
		InlineDescription: true,
	})

	return registry
}

func templateComponentRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		resolvedTemplate := templateName
		if data.ThemePartials != nil {
			if candidate := strings.TrimSpace(data.ThemePartials[partialKey]); candidate != "" {
				resolvedTemplate = candidate
			}
		}

		payload := map[string]any{
			"field":       field,
			"value":       data.Value,
			"checked":     isChecked(data.Value),
			"input_type":  inputType(field.Type),
			"input_class": classList(field.Class, data.InputClass),
			"description": data.Description,
		}
		rendered, err := data.Template.RenderTemplate(resolvedTemplate, payload)
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", templateName, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

func inputType(fieldType model.FieldType) string {
	switch fieldType {
	case model.FieldTypePassword:
		return "password"
	case model.FieldTypeNumber:
		return "number"
	case model.FieldTypeEmail:
		return "email"
	default:
		return "text"
	}
}

func classList(values ...string) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, strings.Fields(value)...)
	}
	return strings.Join(parts, " ")
}

func isChecked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "1", "true", "on":
		return true
	default:
		return false
	}
}
