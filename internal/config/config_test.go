package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig().Server, cfg.Server); diff != "" {
		t.Fatalf("server config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Storage.Driver != "sqlite3" || cfg.Settings.UpdatePrefix != "woocommerce_update_options" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_LayerPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	contents := `
server:
  addr: ":9000"
  admin_url: /admin
  nonce_secret: from-file
storage:
  driver: memory
settings:
  locale: es
theme:
  name: acme
  tokens:
    input-class: regular-text
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	runtime := Override(nil, "server.addr", ":9100")
	runtime = Override(runtime, "settings.locale", "")

	cfg, err := Load(context.Background(), FileLoader{Path: path}, runtime)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9100" {
		t.Fatalf("expected runtime addr to win, got %q", cfg.Server.Addr)
	}
	if cfg.Server.AdminURL != "/admin" {
		t.Fatalf("expected file admin url, got %q", cfg.Server.AdminURL)
	}
	if cfg.Server.NonceSecret != "from-file" {
		t.Fatalf("expected file nonce secret, got %q", cfg.Server.NonceSecret)
	}
	if cfg.Settings.Locale != "es" {
		t.Fatalf("expected empty override to leave file locale, got %q", cfg.Settings.Locale)
	}
	if cfg.Settings.UpdatePrefix != "woocommerce_update_options" {
		t.Fatalf("expected default prefix, got %q", cfg.Settings.UpdatePrefix)
	}
	if cfg.Storage.Driver != "memory" || cfg.Theme.Name != "acme" || cfg.Theme.Tokens["input-class"] != "regular-text" {
		t.Fatalf("unexpected merged config: %+v", cfg)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(context.Background(), MapLoader{
		"storage": map[string]any{"driver": "oracle"},
	}, nil)
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestFileLoader(t *testing.T) {
	raw, err := FileLoader{}.LoadRaw(context.Background())
	if err != nil || len(raw) != 0 {
		t.Fatalf("expected empty tree for empty path, got %v (%v)", raw, err)
	}
	if _, err := (FileLoader{Path: filepath.Join(t.TempDir(), "missing.yaml")}).LoadRaw(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err = FileLoader{Path: empty}.LoadRaw(context.Background())
	if err != nil || len(raw) != 0 {
		t.Fatalf("expected empty tree for empty file, got %v (%v)", raw, err)
	}
}

func TestOverride(t *testing.T) {
	layer := Override(nil, "storage.dsn", "postgres://x")
	layer = Override(layer, "storage.driver", "postgres")
	want := map[string]any{"storage": map[string]any{"dsn": "postgres://x", "driver": "postgres"}}
	if diff := cmp.Diff(want, layer); diff != "" {
		t.Fatalf("override layer mismatch (-want +got):\n%s", diff)
	}
}
