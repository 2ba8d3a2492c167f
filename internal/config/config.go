// Package config resolves the settings server and CLI configuration from
// built-in defaults, an optional YAML file and runtime overrides (flags).
package config

import (
	"fmt"
	"strings"
)

type ServerConfig struct {
	Addr     string `koanf:"addr" mapstructure:"addr" yaml:"addr"`
	AdminURL string `koanf:"admin_url" mapstructure:"admin_url" yaml:"admin_url"`

	// NonceSecret signs the settings form nonce. Empty disables the check.
	NonceSecret string `koanf:"nonce_secret" mapstructure:"nonce_secret" yaml:"nonce_secret"`
}

type StorageConfig struct {
	Driver        string `koanf:"driver" mapstructure:"driver" yaml:"driver"`
	DSN           string `koanf:"dsn" mapstructure:"dsn" yaml:"dsn"`
	Debug         bool   `koanf:"debug" mapstructure:"debug" yaml:"debug"`
	PingTimeoutMS int    `koanf:"ping_timeout_ms" mapstructure:"ping_timeout_ms" yaml:"ping_timeout_ms"`
}

type SettingsConfig struct {
	// DefinitionPath points at a YAML tab definition; empty uses the built-in
	// tab.
	DefinitionPath string `koanf:"definition_path" mapstructure:"definition_path" yaml:"definition_path"`
	UpdatePrefix   string `koanf:"update_prefix" mapstructure:"update_prefix" yaml:"update_prefix"`
	Locale         string `koanf:"locale" mapstructure:"locale" yaml:"locale"`
	CatalogPath    string `koanf:"catalog_path" mapstructure:"catalog_path" yaml:"catalog_path"`
	// PresetPath points at a YAML/JSON document overriding labels and field
	// text of the loaded definition.
	PresetPath string `koanf:"preset_path" mapstructure:"preset_path" yaml:"preset_path"`
}

type ThemeConfig struct {
	Name    string            `koanf:"name" mapstructure:"name" yaml:"name"`
	Variant string            `koanf:"variant" mapstructure:"variant" yaml:"variant"`
	Tokens  map[string]string `koanf:"tokens" mapstructure:"tokens" yaml:"tokens"`
	CSSVars map[string]string `koanf:"css_vars" mapstructure:"css_vars" yaml:"css_vars"`
}

type Config struct {
	Server   ServerConfig   `koanf:"server" mapstructure:"server" yaml:"server"`
	Storage  StorageConfig  `koanf:"storage" mapstructure:"storage" yaml:"storage"`
	Settings SettingsConfig `koanf:"settings" mapstructure:"settings" yaml:"settings"`
	Theme    ThemeConfig    `koanf:"theme" mapstructure:"theme" yaml:"theme"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:     ":8080",
			AdminURL: "/wp-admin",
		},
		Storage: StorageConfig{
			Driver:        "sqlite3",
			DSN:           "file:settings.db?cache=shared",
			PingTimeoutMS: 5000,
		},
		Settings: SettingsConfig{
			UpdatePrefix: "woocommerce_update_options",
			Locale:       "en",
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("config: server.addr is required")
	}
	if !strings.HasPrefix(c.Server.AdminURL, "/") && !strings.Contains(c.Server.AdminURL, "://") {
		return fmt.Errorf("config: server.admin_url must be absolute, got %q", c.Server.AdminURL)
	}
	switch c.Storage.Driver {
	case "memory", "sqlite3", "postgres":
	default:
		return fmt.Errorf("config: unsupported storage.driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver != "memory" && strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("config: storage.dsn is required for driver %q", c.Storage.Driver)
	}
	if c.Storage.PingTimeoutMS < 0 {
		return fmt.Errorf("config: storage.ping_timeout_ms must not be negative")
	}
	if strings.TrimSpace(c.Settings.UpdatePrefix) == "" {
		return fmt.Errorf("config: settings.update_prefix is required")
	}
	return nil
}
