package settings

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-settingspage/pkg/events"
	"github.com/goliatone/go-settingspage/pkg/model"
	"github.com/goliatone/go-settingspage/pkg/options"
	"github.com/goliatone/go-settingspage/pkg/persist"
	"github.com/goliatone/go-settingspage/pkg/render"
	"github.com/goliatone/go-settingspage/pkg/testsupport"
)

func newTestPage(t *testing.T, opts ...Option) *Page {
	t.Helper()
	page, err := New(DefaultDefinition(), opts...)
	if err != nil {
		t.Fatalf("new page: %v", err)
	}
	return page
}

func sectionIDs(sections []model.Section) []string {
	ids := make([]string, 0, len(sections))
	for _, section := range sections {
		ids = append(ids, section.ID)
	}
	return ids
}

func fieldSummary(fields []model.Field) []string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, string(field.Type)+":"+field.ID)
	}
	return out
}

func TestPage_IdentityAndSections(t *testing.T) {
	page := newTestPage(t)
	ctx := testsupport.Context()

	if page.ID() != TabID {
		t.Fatalf("unexpected id %q", page.ID())
	}
	if page.Label(ctx) != "Settings Page Title" {
		t.Fatalf("unexpected label %q", page.Label(ctx))
	}

	want := []model.Section{
		{ID: "", Label: "Overview", LabelKey: "settings.section.overview"},
		{ID: "license", Label: "License", LabelKey: "settings.section.license"},
	}
	if diff := cmp.Diff(want, page.ListSections(ctx)); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestPage_ListSectionsKeepsOneDefault(t *testing.T) {
	tests := []struct {
		name   string
		filter SectionsFilter
		want   []string
	}{
		{
			name: "filter drops default",
			filter: func(_ context.Context, _ string, sections []model.Section) []model.Section {
				return sections[1:]
			},
			want: []string{"", "license"},
		},
		{
			name: "filter duplicates default",
			filter: func(_ context.Context, _ string, sections []model.Section) []model.Section {
				return append(sections, model.Section{ID: "", Label: "Again"}, model.Section{ID: "license", Label: "Again"})
			},
			want: []string{"", "license"},
		},
		{
			name: "filter clears everything",
			filter: func(context.Context, string, []model.Section) []model.Section {
				return nil
			},
			want: []string{""},
		},
		{
			name: "filter appends a section",
			filter: func(_ context.Context, _ string, sections []model.Section) []model.Section {
				return append(sections, model.Section{ID: "advanced", Label: "Advanced"})
			},
			want: []string{"", "license", "advanced"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page := newTestPage(t)
			page.Filters().AddSections(tc.filter)

			sections := page.ListSections(testsupport.Context())
			if diff := cmp.Diff(tc.want, sectionIDs(sections)); diff != "" {
				t.Fatalf("section ids mismatch (-want +got):\n%s", diff)
			}
			defaults := 0
			for _, section := range sections {
				if section.ID == "" {
					defaults++
				}
			}
			if defaults != 1 {
				t.Fatalf("expected exactly one default section, got %d", defaults)
			}
		})
	}
}

func TestPage_FieldsForLicense(t *testing.T) {
	page := newTestPage(t)
	ctx := testsupport.Context()

	want := []string{
		"title:woocommerce_redirects_license_settings",
		"text:woocommerce_redirects_license",
		"sectionend:woocommerce_redirects_license_settings",
	}
	first := page.FieldsFor(ctx, "license")
	if diff := cmp.Diff(want, fieldSummary(first)); diff != "" {
		t.Fatalf("license fields mismatch (-want +got):\n%s", diff)
	}

	key := first[1]
	if !key.DescTip || key.CSS != "min-width:300px;" || key.Title != "License Key" {
		t.Fatalf("unexpected license key descriptor: %+v", key)
	}

	first[1].ID = "mutated"
	if diff := cmp.Diff(want, fieldSummary(page.FieldsFor(ctx, "license"))); diff != "" {
		t.Fatalf("expected stable fields across calls (-want +got):\n%s", diff)
	}
}

func TestPage_FieldsForDefaultAndUnknown(t *testing.T) {
	page := newTestPage(t)
	ctx := testsupport.Context()

	for _, id := range []string{"", "unknown", "LICENSE", " license"} {
		fields := page.FieldsFor(ctx, id)
		if fields == nil || len(fields) != 0 {
			t.Fatalf("expected empty non-nil fields for %q, got %#v", id, fields)
		}
	}
}

func TestPage_FieldFilters(t *testing.T) {
	page := newTestPage(t)
	var order []string
	page.Filters().AddFieldsAt(99, func(_ context.Context, _ string, _ string, fields []model.Field) []model.Field {
		order = append(order, "late")
		return fields
	})
	page.Filters().AddFields(func(_ context.Context, tabID, sectionID string, fields []model.Field) []model.Field {
		order = append(order, "default")
		if tabID != TabID {
			t.Fatalf("unexpected tab id %q", tabID)
		}
		if sectionID != "license" {
			return fields
		}
		fields[1].Title = "Renamed"
		return append(fields[:2:2], model.Field{ID: "extra_flag", Type: model.FieldTypeCheckbox, Title: "Extra"}, fields[2])
	})
	page.Filters().AddFieldsAt(1, func(_ context.Context, _ string, _ string, fields []model.Field) []model.Field {
		order = append(order, "early")
		return fields
	})

	fields := page.FieldsFor(testsupport.Context(), "license")
	if diff := cmp.Diff([]string{"early", "default", "late"}, order); diff != "" {
		t.Fatalf("filter order mismatch (-want +got):\n%s", diff)
	}
	want := []string{
		"title:woocommerce_redirects_license_settings",
		"text:woocommerce_redirects_license",
		"checkbox:extra_flag",
		"sectionend:woocommerce_redirects_license_settings",
	}
	if diff := cmp.Diff(want, fieldSummary(fields)); diff != "" {
		t.Fatalf("filtered fields mismatch (-want +got):\n%s", diff)
	}
	if fields[1].Title != "Renamed" {
		t.Fatalf("expected filter edit to apply, got %q", fields[1].Title)
	}
	if DefaultDefinition().Fields["license"][1].Title != "License Key" {
		t.Fatalf("filters must not touch the static table")
	}

	// Unfiltered copies held by the page are untouched too.
	page2 := newTestPage(t)
	if got := page2.FieldsFor(testsupport.Context(), "license")[1].Title; got != "License Key" {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestPage_RenderNav(t *testing.T) {
	page := newTestPage(t, WithAdminURL("https://shop.example/wp-admin/"))

	var buf bytes.Buffer
	if err := page.RenderNav(testsupport.Context(), &buf, "license"); err != nil {
		t.Fatalf("render nav: %v", err)
	}

	want := `<ul class="subsubsub">` +
		`<li><a href="https://shop.example/wp-admin/admin.php?page=wc-settings&amp;tab=settings-page-slug&amp;section=" class="">Overview</a> | </li>` +
		`<li><a href="https://shop.example/wp-admin/admin.php?page=wc-settings&amp;tab=settings-page-slug&amp;section=license" class="current">License</a>  </li>` +
		`</ul><br class="clear" />`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("nav markup mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	if err := page.RenderNav(testsupport.Context(), &buf, ""); err != nil {
		t.Fatalf("render nav: %v", err)
	}
	if !strings.Contains(buf.String(), `section=" class="current">Overview`) {
		t.Fatalf("expected overview to be current\n%s", buf.String())
	}
}

func TestPage_RenderNavSkipsSingleSection(t *testing.T) {
	page := newTestPage(t)
	page.Filters().AddSections(func(context.Context, string, []model.Section) []model.Section {
		return []model.Section{{ID: "", Label: "Overview"}}
	})

	var buf bytes.Buffer
	if err := page.RenderNav(testsupport.Context(), &buf, ""); err != nil {
		t.Fatalf("render nav: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPage_RenderNavEscapesLabels(t *testing.T) {
	page := newTestPage(t)
	page.Filters().AddSections(func(_ context.Context, _ string, sections []model.Section) []model.Section {
		return append(sections, model.Section{ID: "Ünïcode Section", Label: `<b>Bold</b>`})
	})

	var buf bytes.Buffer
	if err := page.RenderNav(testsupport.Context(), &buf, ""); err != nil {
		t.Fatalf("render nav: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "section=unicode-section") {
		t.Fatalf("expected sanitized section slug\n%s", out)
	}
	if !strings.Contains(out, "&lt;b&gt;Bold&lt;/b&gt;") {
		t.Fatalf("expected escaped label\n%s", out)
	}
}

func TestSanitizeTitle(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"license":          "license",
		"License Key":      "license-key",
		"  Café  Crème ":   "cafe-creme",
		"a.b--c":           "a-b-c",
		"keep_underscores": "keep_underscores",
		"drop!@#chars":     "dropchars",
	}
	for in, want := range tests {
		if got := SanitizeTitle(in); got != want {
			t.Fatalf("SanitizeTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPage_RenderFields(t *testing.T) {
	renderer := &testsupport.RecordingRenderer{}
	page := newTestPage(t, WithRenderer(renderer))
	ctx := render.WithLocale(testsupport.Context(), "es")

	var buf bytes.Buffer
	if err := page.RenderFields(ctx, &buf, "license", render.RenderOptions{}); err != nil {
		t.Fatalf("render fields: %v", err)
	}
	want := "title:woocommerce_redirects_license_settings\n" +
		"text:woocommerce_redirects_license\n" +
		"sectionend:woocommerce_redirects_license_settings\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("rendered output mismatch (-want +got):\n%s", diff)
	}
	if renderer.Options.Locale != "es" {
		t.Fatalf("expected locale from context, got %q", renderer.Options.Locale)
	}

	buf.Reset()
	if err := page.RenderFields(testsupport.Context(), &buf, "", render.RenderOptions{}); err != nil {
		t.Fatalf("render fields: %v", err)
	}
	if buf.Len() != 0 || len(renderer.Fields) != 0 {
		t.Fatalf("expected no field markup for default section, got %q", buf.String())
	}
}

func TestPage_RenderFieldsErrors(t *testing.T) {
	page := newTestPage(t)
	if err := page.RenderFields(testsupport.Context(), &bytes.Buffer{}, "license", render.RenderOptions{}); err == nil {
		t.Fatalf("expected error without renderer")
	}
}

func TestPage_PersistLicense(t *testing.T) {
	store := options.NewMemoryStore(nil)
	bus := events.NewBus()
	var received []events.Event
	if err := bus.Subscribe("woocommerce_update_options_settings-page-slug_license", events.ListenerFunc(func(_ context.Context, event events.Event) error {
		received = append(received, event)
		return nil
	})); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	page := newTestPage(t, WithSaver(persist.New(store)), WithEmitter(bus))
	err := page.Persist(testsupport.Context(), "license", url.Values{
		"woocommerce_redirects_license": {"ABC-123"},
	})
	if err != nil {
		t.Fatalf("persist: %v", err)
	}

	value, ok, err := store.Get(testsupport.Context(), "woocommerce_redirects_license")
	if err != nil || !ok || value != "ABC-123" {
		t.Fatalf("expected stored license key, got %q ok=%v err=%v", value, ok, err)
	}
	if diff := cmp.Diff([]string{"woocommerce_redirects_license"}, store.Names()); diff != "" {
		t.Fatalf("stored names mismatch (-want +got):\n%s", diff)
	}
	if len(received) != 1 {
		t.Fatalf("expected one update event, got %d", len(received))
	}
	if got := received[0].Payload["section"]; got != "license" {
		t.Fatalf("unexpected event payload %v", received[0].Payload)
	}
}

func TestPage_PersistDefaultAndUnknownEmitNothing(t *testing.T) {
	for _, id := range []string{"", "unknown"} {
		saver := &testsupport.RecordingSaver{}
		emitter := &testsupport.RecordingEmitter{}
		page := newTestPage(t, WithSaver(saver), WithEmitter(emitter))

		err := page.Persist(testsupport.Context(), id, url.Values{"woocommerce_redirects_license": {"ignored"}})
		if err != nil {
			t.Fatalf("persist %q: %v", id, err)
		}
		if len(saver.Calls) != 1 || len(saver.Calls[0].Fields) != 0 {
			t.Fatalf("expected saver to receive no fields for %q, got %+v", id, saver.Calls)
		}
		if len(emitter.Events) != 0 {
			t.Fatalf("expected no events for %q, got %v", id, emitter.Names())
		}
	}
}

func TestPage_PersistUsesPrefixAndFilteredSections(t *testing.T) {
	emitter := &testsupport.RecordingEmitter{}
	page := newTestPage(t,
		WithSaver(&testsupport.RecordingSaver{}),
		WithEmitter(emitter),
		WithUpdatePrefix("shop_update_options"),
	)
	page.Filters().AddSections(func(_ context.Context, _ string, sections []model.Section) []model.Section {
		return append(sections, model.Section{ID: "advanced", Label: "Advanced"})
	})

	for _, id := range []string{"license", "advanced"} {
		if err := page.Persist(testsupport.Context(), id, url.Values{}); err != nil {
			t.Fatalf("persist %q: %v", id, err)
		}
	}
	want := []string{
		"shop_update_options_settings-page-slug_license",
		"shop_update_options_settings-page-slug_advanced",
	}
	if diff := cmp.Diff(want, emitter.Names()); diff != "" {
		t.Fatalf("event names mismatch (-want +got):\n%s", diff)
	}
}

func TestPage_PersistSaverFailureSuppressesEvent(t *testing.T) {
	saver := &testsupport.RecordingSaver{Err: errors.New("boom")}
	emitter := &testsupport.RecordingEmitter{}
	logger := testsupport.NewCaptureLogger()
	page := newTestPage(t, WithSaver(saver), WithEmitter(emitter), WithLogger(testsupport.CaptureProvider{Logger: logger}, logger))

	err := page.Persist(testsupport.Context(), "license", url.Values{})
	if err == nil {
		t.Fatalf("expected saver error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.TextCode != ErrorCodePersist {
		t.Fatalf("expected persist text code, got %v", err)
	}
	if len(emitter.Events) != 0 {
		t.Fatalf("expected no events after failure, got %v", emitter.Names())
	}
	if !containsString(logger.Messages(), "error:settings save failed") {
		t.Fatalf("expected failure to be logged, got %v", logger.Messages())
	}
}

func TestPage_PersistValidationErrorPassesThrough(t *testing.T) {
	page := newTestPage(t, WithSaver(persist.New(options.NewMemoryStore(nil))))
	page.Filters().AddFields(func(_ context.Context, _ string, _ string, fields []model.Field) []model.Field {
		return append(fields, model.Field{ID: "limit", Type: model.FieldTypeNumber})
	})

	err := page.Persist(testsupport.Context(), "license", url.Values{"limit": {"many"}})
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	mapping := render.MapSaveError(page.FieldsFor(testsupport.Context(), "license"), err)
	if len(mapping.Fields["limit"]) != 1 {
		t.Fatalf("expected mapped field error, got %+v", mapping)
	}
}

func TestPage_PersistEmitterFailure(t *testing.T) {
	emitter := &testsupport.RecordingEmitter{Err: errors.New("listener failed")}
	page := newTestPage(t, WithSaver(&testsupport.RecordingSaver{}), WithEmitter(emitter))

	err := page.Persist(testsupport.Context(), "license", url.Values{})
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.TextCode != ErrorCodeNotify {
		t.Fatalf("expected notify error, got %v", err)
	}
}

func TestPage_SlugLinksSelectFilteredSection(t *testing.T) {
	saver := &testsupport.RecordingSaver{}
	emitter := &testsupport.RecordingEmitter{}
	page := newTestPage(t, WithSaver(saver), WithEmitter(emitter))
	page.Filters().AddSections(func(_ context.Context, _ string, sections []model.Section) []model.Section {
		return append(sections, model.Section{ID: "My Section", Label: "Mine"})
	})
	page.Filters().AddFields(func(_ context.Context, _ string, sectionID string, fields []model.Field) []model.Field {
		if sectionID != "My Section" {
			return fields
		}
		return append(fields, model.Field{ID: "mine_flag", Type: model.FieldTypeCheckbox, Title: "Flag"})
	})
	ctx := testsupport.Context()

	var buf bytes.Buffer
	if err := page.RenderNav(ctx, &buf, "my-section"); err != nil {
		t.Fatalf("render nav: %v", err)
	}
	if !strings.Contains(buf.String(), `section=my-section" class="current">Mine`) {
		t.Fatalf("expected slug link marked current\n%s", buf.String())
	}

	if diff := cmp.Diff([]string{"checkbox:mine_flag"}, fieldSummary(page.FieldsFor(ctx, "my-section"))); diff != "" {
		t.Fatalf("slug fields mismatch (-want +got):\n%s", diff)
	}

	if err := page.Persist(ctx, "my-section", url.Values{"mine_flag": {"1"}}); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if len(saver.Calls) != 1 || len(saver.Calls[0].Fields) != 1 {
		t.Fatalf("expected the slug section fields to be saved, got %+v", saver.Calls)
	}
	want := []string{events.DefaultUpdatePrefix + "_settings-page-slug_My Section"}
	if diff := cmp.Diff(want, emitter.Names()); diff != "" {
		t.Fatalf("event names mismatch (-want +got):\n%s", diff)
	}

	if fields := page.FieldsFor(ctx, "missing-section"); len(fields) != 0 {
		t.Fatalf("unknown slug should select nothing, got %v", fieldSummary(fields))
	}
}

func TestPage_PersistWithoutSaver(t *testing.T) {
	page := newTestPage(t)
	if err := page.Persist(testsupport.Context(), "license", nil); err == nil {
		t.Fatalf("expected error without saver")
	}
}

func TestNew_RejectsInvalidDefinition(t *testing.T) {
	def := DefaultDefinition()
	def.Sections = append(def.Sections, model.Section{ID: "", Label: "Second overview"})
	if _, err := New(def); err == nil {
		t.Fatalf("expected invalid definition error")
	}
}

func TestPage_TranslatedLabels(t *testing.T) {
	catalog := render.NewCatalog("en")
	catalog.Add("es", map[string]string{
		"settings.tab.label":        "Ajustes",
		"settings.section.overview": "Resumen",
		"settings.section.license":  "Licencia",
	})
	page := newTestPage(t, WithTranslator(catalog))
	ctx := render.WithLocale(testsupport.Context(), "es")

	if page.Label(ctx) != "Ajustes" {
		t.Fatalf("unexpected label %q", page.Label(ctx))
	}
	labels := []string{}
	for _, section := range page.ListSections(ctx) {
		labels = append(labels, section.Label)
	}
	if diff := cmp.Diff([]string{"Resumen", "Licencia"}, labels); diff != "" {
		t.Fatalf("section labels mismatch (-want +got):\n%s", diff)
	}
}

func containsString(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}
