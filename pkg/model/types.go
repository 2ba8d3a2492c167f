package model

import "strings"

// FieldType is the tagged variant discriminator for settings fields. Values
// match the field types understood by the host admin settings screen.
type FieldType string

const (
	FieldTypeTitle      FieldType = "title"
	FieldTypeSectionEnd FieldType = "sectionend"
	FieldTypeText       FieldType = "text"
	FieldTypePassword   FieldType = "password"
	FieldTypeTextarea   FieldType = "textarea"
	FieldTypeCheckbox   FieldType = "checkbox"
	FieldTypeSelect     FieldType = "select"
	FieldTypeNumber     FieldType = "number"
	FieldTypeEmail      FieldType = "email"
)

// Known reports whether the type is one the built-in renderers and savers
// understand.
func (t FieldType) Known() bool {
	switch t {
	case FieldTypeTitle, FieldTypeSectionEnd, FieldTypeText, FieldTypePassword,
		FieldTypeTextarea, FieldTypeCheckbox, FieldTypeSelect, FieldTypeNumber,
		FieldTypeEmail:
		return true
	default:
		return false
	}
}

// Structural reports whether the type only shapes the layout (headers and
// section terminators) and never carries a stored value.
func (t FieldType) Structural() bool {
	return t == FieldTypeTitle || t == FieldTypeSectionEnd
}

// Option is a single choice offered by select fields.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Field describes one configurable value and how it should be presented. The
// ID doubles as the option name in the host options store.
type Field struct {
	ID             string    `json:"id" yaml:"id"`
	Type           FieldType `json:"type" yaml:"type"`
	Title          string    `json:"title,omitempty" yaml:"title,omitempty"`
	TitleKey       string    `json:"titleKey,omitempty" yaml:"title_key,omitempty"`
	Description    string    `json:"description,omitempty" yaml:"description,omitempty"`
	DescriptionKey string    `json:"descriptionKey,omitempty" yaml:"description_key,omitempty"`
	DescTip        bool      `json:"descTip,omitempty" yaml:"desc_tip,omitempty"`
	CSS            string    `json:"css,omitempty" yaml:"css,omitempty"`
	Class          string    `json:"class,omitempty" yaml:"class,omitempty"`
	Placeholder    string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Default        string    `json:"default,omitempty" yaml:"default,omitempty"`
	Options        []Option  `json:"options,omitempty" yaml:"options,omitempty"`
}

// Clone returns a deep copy so callers can mutate the result freely.
func (f Field) Clone() Field {
	out := f
	if len(f.Options) > 0 {
		out.Options = append([]Option(nil), f.Options...)
	}
	return out
}

// Section is a named sub-group of fields shown under one tab. The empty ID is
// reserved for the default overview section.
type Section struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label" yaml:"label"`
	LabelKey string `json:"labelKey,omitempty" yaml:"label_key,omitempty"`
}

// IsDefault reports whether the section is the overview section.
func (s Section) IsDefault() bool {
	return strings.TrimSpace(s.ID) == ""
}

// CloneFields copies a field slice, returning an empty non-nil slice for
// empty input so callers always receive a usable sequence.
func CloneFields(fields []Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, field := range fields {
		out = append(out, field.Clone())
	}
	return out
}

// CloneSections copies a section slice.
func CloneSections(sections []Section) []Section {
	out := make([]Section, 0, len(sections))
	out = append(out, sections...)
	return out
}
