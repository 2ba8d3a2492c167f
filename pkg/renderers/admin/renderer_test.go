package admin

import (
	"bytes"
	"context"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-settingspage/pkg/model"
	"github.com/goliatone/go-settingspage/pkg/render"
)

func licenseFields() []model.Field {
	return []model.Field{
		{ID: "woocommerce_redirects_license_settings", Type: model.FieldTypeTitle, Title: "License Settings", Description: "Enter your license key."},
		{ID: "woocommerce_redirects_license", Type: model.FieldTypeText, Title: "License Key", Description: "Key from your account.", DescTip: true, CSS: "min-width:300px;"},
		{ID: "woocommerce_redirects_license_settings", Type: model.FieldTypeSectionEnd},
	}
}

func renderString(t *testing.T, r *Renderer, fields []model.Field, opts render.RenderOptions) string {
	t.Helper()
	var buf bytes.Buffer
	if err := r.RenderFields(context.Background(), &buf, fields, opts); err != nil {
		t.Fatalf("render fields: %v", err)
	}
	return buf.String()
}

func TestRenderer_LicenseSection(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	output := renderString(t, r, licenseFields(), render.RenderOptions{})

	for _, want := range []string{
		`<h2>License Settings</h2>`,
		`<div id="woocommerce_redirects_license_settings-description"><p>Enter your license key.</p></div>`,
		`<table class="form-table">`,
		`<label for="woocommerce_redirects_license">License Key <span class="woocommerce-help-tip" data-tip="Key from your account."></span></label>`,
		`<td class="forminp forminp-text">`,
		`name="woocommerce_redirects_license"`,
		`type="text"`,
		`style="min-width:300px;"`,
		`value=""`,
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected output to contain %q\n%s", want, output)
		}
	}
	if strings.Contains(output, `<p class="description">`) {
		t.Fatalf("desc_tip fields should not print an inline description\n%s", output)
	}
	if got := strings.Count(output, "</table>"); got != 1 {
		t.Fatalf("expected exactly one closing table, got %d\n%s", got, output)
	}
	if strings.Index(output, "<h2>") > strings.Index(output, "<table") {
		t.Fatalf("expected title before table\n%s", output)
	}
}

func TestRenderer_EmptyFieldsWriteNothing(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if output := renderString(t, r, nil, render.RenderOptions{Hidden: map[string]string{"tab": "x"}}); output != "" {
		t.Fatalf("expected no output, got %q", output)
	}
}

func TestRenderer_ValuesAreEscaped(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	fields := []model.Field{{ID: "key", Type: model.FieldTypeText, Title: "Key", Default: "fallback"}}

	output := renderString(t, r, fields, render.RenderOptions{})
	if !strings.Contains(output, `value="fallback"`) {
		t.Fatalf("expected default value\n%s", output)
	}

	output = renderString(t, r, fields, render.RenderOptions{
		Values: map[string]string{"key": `"><script>alert(1)</script>`},
	})
	if strings.Contains(output, "<script>") {
		t.Fatalf("expected stored value to be escaped\n%s", output)
	}
	if !strings.Contains(output, `value="&quot;&gt;&lt;script&gt;`) {
		t.Fatalf("expected escaped value attribute\n%s", output)
	}
	// A leading field without a title still gets wrapped in a table.
	if !strings.HasPrefix(output, `<table class="form-table">`) || !strings.Contains(output, "</table>") {
		t.Fatalf("expected implicit table wrapper\n%s", output)
	}
}

func TestRenderer_DescriptionIsSanitized(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	fields := []model.Field{{
		ID:          "notes",
		Type:        model.FieldTypeTextarea,
		Title:       "Notes",
		Description: `See <a href="https://example.com" onclick="steal()">docs</a><script>alert(1)</script>`,
	}}

	output := renderString(t, r, fields, render.RenderOptions{})
	if strings.Contains(output, "onclick") || strings.Contains(output, "<script>") {
		t.Fatalf("expected unsafe markup to be stripped\n%s", output)
	}
	if !strings.Contains(output, `<p class="description">See <a href="https://example.com"`) {
		t.Fatalf("expected safe link to survive\n%s", output)
	}
	if !strings.Contains(output, `<textarea name="notes" id="notes"`) {
		t.Fatalf("expected textarea control\n%s", output)
	}
}

func TestRenderer_CheckboxAndSelect(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	fields := []model.Field{
		{ID: "enabled", Type: model.FieldTypeCheckbox, Title: "Enabled", Description: "Turn redirects on"},
		{ID: "mode", Type: model.FieldTypeSelect, Title: "Mode", Options: []model.Option{
			{Value: "301", Label: "Permanent"},
			{Value: "302", Label: "Temporary"},
		}},
	}

	output := renderString(t, r, fields, render.RenderOptions{
		Values: map[string]string{"enabled": "yes", "mode": "302"},
	})
	for _, want := range []string{
		`type="checkbox"`,
		`checked="checked"`,
		`/> Turn redirects on</label>`,
		`<option value="302" selected="selected">Temporary</option>`,
		`<option value="301">Permanent</option>`,
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected output to contain %q\n%s", want, output)
		}
	}
	if strings.Contains(output, `<p class="description">Turn redirects on`) {
		t.Fatalf("checkbox description should render inline only\n%s", output)
	}
}

func TestRenderer_ErrorsAndHiddenFields(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	fields := []model.Field{{ID: "limit", Type: model.FieldTypeNumber, Title: "Limit"}}

	output := renderString(t, r, fields, render.RenderOptions{
		Errors: map[string][]string{"limit": {"must be a number"}},
		Hidden: render.MergeHiddenFields(nil, render.RouteFields("settings-page-slug", "license")...),
	})
	for _, want := range []string{
		`class="settings-row-error"`,
		`<p class="settings-error"><span class="screen-reader-text">Error:</span> must be a number</p>`,
		`type="number"`,
		`<input type="hidden" name="section" value="license" />`,
		`<input type="hidden" name="tab" value="settings-page-slug" />`,
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected output to contain %q\n%s", want, output)
		}
	}
	if strings.Index(output, `name="section"`) > strings.Index(output, `name="tab"`) {
		t.Fatalf("expected hidden inputs sorted by name\n%s", output)
	}
}

func TestRenderer_Translations(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	catalog := render.NewCatalog("en")
	catalog.Add("es", map[string]string{"license.key": "Clave de licencia"})

	fields := []model.Field{{ID: "key", Type: model.FieldTypeText, Title: "License Key", TitleKey: "license.key"}}
	output := renderString(t, r, fields, render.RenderOptions{Locale: "es", Translator: catalog})
	if !strings.Contains(output, ">Clave de licencia</label>") {
		t.Fatalf("expected translated title\n%s", output)
	}
}

func TestRenderer_TranslatesErrorPrefix(t *testing.T) {
	catalog := render.NewCatalog("en")
	catalog.Add("es", map[string]string{"settings.field.error": "Error de campo:"})
	r, err := New(WithTranslator(catalog))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	fields := []model.Field{{ID: "limit", Type: model.FieldTypeNumber, Title: "Limit"}}
	output := renderString(t, r, fields, render.RenderOptions{
		Locale: "es",
		Errors: map[string][]string{"limit": {"debe ser un número"}},
	})
	want := `<p class="settings-error"><span class="screen-reader-text">Error de campo:</span> debe ser un número</p>`
	if !strings.Contains(output, want) {
		t.Fatalf("expected translated error prefix\n%s", output)
	}
}

func TestRenderer_Theme(t *testing.T) {
	r, err := New(WithTheme(&theme.RendererConfig{
		Theme:   "acme",
		Variant: "dark",
		Tokens: map[string]string{
			TokenInputClass: "regular-text",
			TokenTableClass: "acme-table",
		},
		CSSVars: map[string]string{
			"--brand":  "#123456",
			"--broken": "red;}",
		},
		Partials: map[string]string{
			"settings.input": "templates/components/textarea.tmpl",
		},
	}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	output := renderString(t, r, licenseFields(), render.RenderOptions{})
	for _, want := range []string{
		`<table class="form-table acme-table" data-theme="acme" data-theme-variant="dark" style="--brand: #123456;">`,
		`<textarea name="woocommerce_redirects_license"`,
		`class="regular-text"`,
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected output to contain %q\n%s", want, output)
		}
	}
	if strings.Contains(output, "--broken") {
		t.Fatalf("expected unsafe css variable to be dropped\n%s", output)
	}
}

func TestRenderer_Metadata(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if r.Name() != Name {
		t.Fatalf("unexpected name %q", r.Name())
	}
	if !strings.HasPrefix(r.ContentType(), "text/html") {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}
