package orchestrator

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-settingspage/pkg/model"
)

// Preset applies declarative overrides to a tab's sections and fields. The
// document is YAML (JSON is accepted as well):
//
//	sections:
//	  license:
//	    label: Licence
//	fields:
//	  woocommerce_redirects_license:
//	    title: Licence key
//	    css: "min-width:400px;"
//
// Overridden text wins over translation keys, so the key of a patched label
// is dropped.
type Preset struct {
	document presetDocument
}

type presetDocument struct {
	Sections map[string]sectionPatch `yaml:"sections"`
	Fields   map[string]fieldPatch   `yaml:"fields"`
}

type sectionPatch struct {
	Label string `yaml:"label"`
}

type fieldPatch struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Placeholder string `yaml:"placeholder"`
	Default     string `yaml:"default"`
	CSS         string `yaml:"css"`
	Class       string `yaml:"class"`
	DescTip     *bool  `yaml:"desc_tip"`
}

var (
	_ model.FieldsDecorator   = (*Preset)(nil)
	_ model.SectionsDecorator = (*Preset)(nil)
)

// NewPreset parses a preset document.
func NewPreset(data []byte) (*Preset, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset: document is empty")
	}
	var document presetDocument
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&document); err != nil {
		return nil, fmt.Errorf("preset: parse document: %w", err)
	}
	return &Preset{document: document}, nil
}

// NewPresetFromFS loads a preset document from fsys.
func NewPresetFromFS(fsys fs.FS, path string) (*Preset, error) {
	if fsys == nil {
		return nil, errors.New("preset: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset: read %s: %w", path, err)
	}
	return NewPreset(data)
}

// DecorateSections relabels the sections named by the preset.
func (p *Preset) DecorateSections(_ string, sections []model.Section) []model.Section {
	if p == nil || len(p.document.Sections) == 0 {
		return sections
	}
	for idx := range sections {
		patch, ok := p.document.Sections[sections[idx].ID]
		if !ok || patch.Label == "" {
			continue
		}
		sections[idx].Label = patch.Label
		sections[idx].LabelKey = ""
	}
	return sections
}

// DecorateFields patches the fields named by the preset. Ids the section
// does not carry are ignored; they may belong to another section.
func (p *Preset) DecorateFields(_ string, _ string, fields []model.Field) []model.Field {
	if p == nil || len(p.document.Fields) == 0 {
		return fields
	}
	for idx := range fields {
		patch, ok := p.document.Fields[fields[idx].ID]
		if !ok {
			continue
		}
		applyFieldPatch(&fields[idx], patch)
	}
	return fields
}

func applyFieldPatch(field *model.Field, patch fieldPatch) {
	if patch.Title != "" {
		field.Title = patch.Title
		field.TitleKey = ""
	}
	if patch.Description != "" {
		field.Description = patch.Description
		field.DescriptionKey = ""
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	if patch.Default != "" {
		field.Default = patch.Default
	}
	if patch.CSS != "" {
		field.CSS = patch.CSS
	}
	if patch.Class != "" {
		field.Class = patch.Class
	}
	if patch.DescTip != nil {
		field.DescTip = *patch.DescTip
	}
}
