package settings

import (
	"bytes"
	"fmt"
	"io"
	"os"

	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-settingspage/pkg/model"
)

// LoadDefinition decodes a YAML tab definition and validates it. Unknown keys
// are rejected so typos in field attributes surface early.
func LoadDefinition(r io.Reader) (model.Definition, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return model.Definition{}, wrapOperation(err, "read settings definition", ErrorCodeDefinition, nil)
	}

	var def model.Definition
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&def); err != nil {
		if err == io.EOF {
			return model.Definition{}, badInput("settings definition is empty", nil)
		}
		return model.Definition{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "decode settings definition").
			WithTextCode(ErrorCodeDefinition)
	}
	if err := def.Validate(); err != nil {
		return model.Definition{}, err
	}
	return def, nil
}

// LoadDefinitionFile reads a YAML tab definition from disk.
func LoadDefinitionFile(path string) (model.Definition, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.Definition{}, wrapOperation(err, fmt.Sprintf("open settings definition %q", path), ErrorCodeDefinition, map[string]any{"path": path})
	}
	defer file.Close()
	return LoadDefinition(file)
}
