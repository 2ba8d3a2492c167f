package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-settingspage/internal/app"
	"github.com/goliatone/go-settingspage/internal/config"
	"github.com/goliatone/go-settingspage/pkg/render"
	"github.com/goliatone/go-settingspage/pkg/renderers/tui"
	"github.com/goliatone/go-settingspage/pkg/settings"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults only if empty)")
	section := flag.String("section", settings.SectionLicense, "section to edit")
	show := flag.Bool("show", false, "print stored values instead of prompting")
	flag.Parse()

	ctx := context.Background()

	var loader config.RawConfigLoader
	if *configPath != "" {
		loader = config.FileLoader{Path: *configPath}
	}
	cfg, err := config.Load(ctx, loader, nil)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	prompts, err := tui.New(tui.WithPromptDriver(tui.NewSurveyDriver(os.Stdout)))
	if err != nil {
		log.Fatalf("Failed to build prompts: %v", err)
	}

	settingsApp, err := app.Build(ctx, cfg, app.WithRenderers(prompts))
	if err != nil {
		log.Fatalf("Failed to build settings app: %v", err)
	}
	defer settingsApp.Close()

	orch := settingsApp.Orchestrator
	values, err := orch.Values(ctx, *section)
	if err != nil {
		log.Fatalf("Failed to read settings: %v", err)
	}

	if *show {
		printValues(values)
		return
	}

	fields := orch.Page().FieldsFor(ctx, *section)
	if len(fields) == 0 {
		fmt.Printf("Section %q has no settings\n", *section)
		return
	}

	submitted, err := prompts.Collect(ctx, fields, render.RenderOptions{
		Values:     values,
		Locale:     cfg.Settings.Locale,
		Translator: settingsApp.Translator,
	})
	if errors.Is(err, tui.ErrAborted) {
		fmt.Println("Aborted, nothing saved")
		return
	}
	if err != nil {
		log.Fatalf("Failed to collect settings: %v", err)
	}

	if err := orch.Save(ctx, *section, submitted); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && len(richErr.ValidationErrors) > 0 {
			for _, fieldErr := range richErr.ValidationErrors {
				fmt.Fprintf(os.Stderr, "%s: %s\n", fieldErr.Field, fieldErr.Message)
			}
			os.Exit(1)
		}
		log.Fatalf("Failed to save settings: %v", err)
	}
	fmt.Println("Your settings have been saved.")
}

func printValues(values map[string]string) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s: %s\n", name, values[name])
	}
}
