package config

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
	"gopkg.in/yaml.v3"
)

// RawConfigLoader returns an untyped configuration tree.
type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

// FileLoader reads a YAML file. A missing Path yields an empty tree.
type FileLoader struct {
	Path string
}

func (l FileLoader) LoadRaw(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.Path == "" {
		return map[string]any{}, nil
	}
	file, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", l.Path, err)
	}
	defer file.Close()
	return decodeYAML(file)
}

// MapLoader serves a fixed tree.
type MapLoader map[string]any

func (l MapLoader) LoadRaw(context.Context) (map[string]any, error) {
	if l == nil {
		return map[string]any{}, nil
	}
	return map[string]any(l), nil
}

func decodeYAML(r io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	out := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	return out, nil
}

// Load resolves the configuration: defaults, then the loader's tree, then
// runtime overrides. Later layers win key by key.
func Load(ctx context.Context, loader RawConfigLoader, runtime map[string]any) (Config, error) {
	if loader == nil {
		loader = MapLoader(nil)
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	return Resolve(DefaultConfig(), raw, runtime)
}

// Resolve merges the three layers with go-options and decodes the result.
func Resolve(defaults Config, loaded, runtime map[string]any) (Config, error) {
	if loaded == nil {
		loaded = map[string]any{}
	}
	if runtime == nil {
		runtime = map[string]any{}
	}

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaults.layer(),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loaded,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtime,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("config: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("config: options merge failed: %w", err)
	}

	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func (c Config) layer() map[string]any {
	return map[string]any{
		"server": map[string]any{
			"addr":         c.Server.Addr,
			"admin_url":    c.Server.AdminURL,
			"nonce_secret": c.Server.NonceSecret,
		},
		"storage": map[string]any{
			"driver":          c.Storage.Driver,
			"dsn":             c.Storage.DSN,
			"debug":           c.Storage.Debug,
			"ping_timeout_ms": c.Storage.PingTimeoutMS,
		},
		"settings": map[string]any{
			"definition_path": c.Settings.DefinitionPath,
			"update_prefix":   c.Settings.UpdatePrefix,
			"locale":          c.Settings.Locale,
			"catalog_path":    c.Settings.CatalogPath,
			"preset_path":     c.Settings.PresetPath,
		},
		"theme": map[string]any{
			"name":     c.Theme.Name,
			"variant":  c.Theme.Variant,
			"tokens":   stringMapToAny(c.Theme.Tokens),
			"css_vars": stringMapToAny(c.Theme.CSSVars),
		},
	}
}

func stringMapToAny(in map[string]string) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

// Override builds a runtime layer entry for a dotted key such as
// "server.addr". Empty values are skipped so unset flags do not mask the
// file.
func Override(layer map[string]any, key string, value string) map[string]any {
	if layer == nil {
		layer = map[string]any{}
	}
	if value == "" {
		return layer
	}
	parts := strings.Split(key, ".")
	node := layer
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[part] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = value
	return layer
}
