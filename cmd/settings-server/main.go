package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goliatone/go-settingspage/internal/app"
	"github.com/goliatone/go-settingspage/internal/config"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults only if empty)")
	addr := flag.String("addr", "", "listen address, overrides server.addr")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var loader config.RawConfigLoader
	if *configPath != "" {
		loader = config.FileLoader{Path: *configPath}
	}
	cfg, err := config.Load(ctx, loader, config.Override(nil, "server.addr", *addr))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	settingsApp, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to build settings app: %v", err)
	}
	defer settingsApp.Close()

	mux := http.NewServeMux()
	mux.Handle(adminPath(cfg.Server.AdminURL), settingsApp.Handler)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	settingsApp.Logger.Info("settings server listening", "addr", cfg.Server.Addr, "path", adminPath(cfg.Server.AdminURL))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server stopped: %v", err)
	}
}

// adminPath returns the request path the handler is mounted on; admin URLs
// may be absolute.
func adminPath(adminURL string) string {
	path := adminURL
	if parsed, err := url.Parse(adminURL); err == nil && parsed.Path != "" {
		path = parsed.Path
	}
	return strings.TrimRight(path, "/") + "/admin.php"
}
