package model

import (
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Definition is the static table behind a settings tab: the ordered sections
// plus the field list that belongs to each section.
type Definition struct {
	ID       string             `json:"id" yaml:"id"`
	Label    string             `json:"label" yaml:"label"`
	LabelKey string             `json:"labelKey,omitempty" yaml:"label_key,omitempty"`
	Sections []Section          `json:"sections" yaml:"sections"`
	Fields   map[string][]Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Validate checks the structural rules the registry relies on. Sections
// without fields are valid and render as an empty page.
func (d Definition) Validate() error {
	var fieldErrors []goerrors.FieldError

	if strings.TrimSpace(d.ID) == "" {
		fieldErrors = append(fieldErrors, goerrors.FieldError{Field: "id", Message: "tab id is required"})
	}
	if len(d.Sections) == 0 {
		fieldErrors = append(fieldErrors, goerrors.FieldError{Field: "sections", Message: "at least one section is required"})
	}

	seenSections := make(map[string]struct{}, len(d.Sections))
	defaults := 0
	for idx, section := range d.Sections {
		id := strings.TrimSpace(section.ID)
		if id == "" {
			defaults++
		}
		if _, exists := seenSections[id]; exists {
			fieldErrors = append(fieldErrors, goerrors.FieldError{
				Field:   fmt.Sprintf("sections[%d].id", idx),
				Message: fmt.Sprintf("duplicate section id %q", id),
			})
		}
		seenSections[id] = struct{}{}
	}
	if len(d.Sections) > 0 && defaults != 1 {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   "sections",
			Message: "exactly one section must use the empty id",
		})
	}

	for sectionID, fields := range d.Fields {
		seenFields := make(map[string]struct{}, len(fields))
		for idx, field := range fields {
			path := fmt.Sprintf("fields.%s[%d]", sectionID, idx)
			if !field.Type.Known() {
				fieldErrors = append(fieldErrors, goerrors.FieldError{
					Field:   path + ".type",
					Message: fmt.Sprintf("unknown field type %q", field.Type),
				})
			}
			if field.Type.Structural() {
				continue
			}
			id := strings.TrimSpace(field.ID)
			if id == "" {
				fieldErrors = append(fieldErrors, goerrors.FieldError{Field: path + ".id", Message: "field id is required"})
				continue
			}
			if _, exists := seenFields[id]; exists {
				fieldErrors = append(fieldErrors, goerrors.FieldError{
					Field:   path + ".id",
					Message: fmt.Sprintf("duplicate field id %q", id),
				})
			}
			seenFields[id] = struct{}{}
		}
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return goerrors.NewValidation("model: invalid settings definition", fieldErrors...).
		WithTextCode(ErrorCodeInvalidDefinition)
}

// ErrorCodeInvalidDefinition tags definition validation failures.
const ErrorCodeInvalidDefinition = "SETTINGS_INVALID_DEFINITION"
