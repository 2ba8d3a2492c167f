package persist

import (
	"context"
	"errors"
	"net/url"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-settingspage/pkg/model"
	"github.com/goliatone/go-settingspage/pkg/options"
)

func TestSanitize(t *testing.T) {
	selectField := model.Field{ID: "mode", Type: model.FieldTypeSelect, Default: "301", Options: []model.Option{
		{Value: "301", Label: "Permanent"},
		{Value: "302", Label: "Temporary"},
	}}

	tests := []struct {
		name        string
		field       model.Field
		raw         string
		present     bool
		wantValue   string
		wantMessage bool
	}{
		{name: "text strips markup", field: model.Field{Type: model.FieldTypeText}, raw: "  <b>ABC</b>-123 ", present: true, wantValue: "ABC-123"},
		{name: "text keeps ampersand", field: model.Field{Type: model.FieldTypeText}, raw: "a & b", present: true, wantValue: "a & b"},
		{name: "text strips entity-encoded tags", field: model.Field{Type: model.FieldTypeText}, raw: "&lt;b&gt;ABC&lt;/b&gt;", present: true, wantValue: "ABC"},
		{name: "text drops entity-encoded script", field: model.Field{Type: model.FieldTypeText}, raw: "&lt;script&gt;x&lt;/script&gt;", present: true, wantValue: ""},
		{name: "text keeps bare less-than", field: model.Field{Type: model.FieldTypeText}, raw: "a < b", present: true, wantValue: "a < b"},
		{name: "password strips markup", field: model.Field{Type: model.FieldTypePassword}, raw: "<i>s3cret</i>", present: true, wantValue: "s3cret"},
		{name: "textarea keeps safe markup", field: model.Field{Type: model.FieldTypeTextarea}, raw: `<b>hi</b><script>x()</script>`, present: true, wantValue: "<b>hi</b>"},
		{name: "checkbox on", field: model.Field{Type: model.FieldTypeCheckbox}, raw: "1", present: true, wantValue: CheckboxOn},
		{name: "checkbox missing", field: model.Field{Type: model.FieldTypeCheckbox}, wantValue: CheckboxOff},
		{name: "checkbox garbage", field: model.Field{Type: model.FieldTypeCheckbox}, raw: "maybe", present: true, wantValue: CheckboxOff},
		{name: "select known option", field: selectField, raw: "302", present: true, wantValue: "302"},
		{name: "select unknown falls back", field: selectField, raw: "307", present: true, wantValue: "301"},
		{name: "number valid", field: model.Field{Type: model.FieldTypeNumber}, raw: " 12.5 ", present: true, wantValue: "12.5"},
		{name: "number empty", field: model.Field{Type: model.FieldTypeNumber}, raw: "", present: true, wantValue: ""},
		{name: "number invalid", field: model.Field{Type: model.FieldTypeNumber}, raw: "twelve", present: true, wantMessage: true},
		{name: "email normalized", field: model.Field{Type: model.FieldTypeEmail}, raw: "Ops <ops@example.com>", present: true, wantValue: "ops@example.com"},
		{name: "email invalid", field: model.Field{Type: model.FieldTypeEmail}, raw: "not-an-email", present: true, wantMessage: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			value, message := Sanitize(tc.field, tc.raw, tc.present)
			if tc.wantMessage {
				if message == "" {
					t.Fatalf("expected rejection, got value %q", value)
				}
				return
			}
			if message != "" {
				t.Fatalf("unexpected rejection: %s", message)
			}
			if value != tc.wantValue {
				t.Fatalf("value mismatch: want %q got %q", tc.wantValue, value)
			}
		})
	}
}

func TestSaver_WritesLicenseKey(t *testing.T) {
	store := options.NewMemoryStore(nil)
	saver := New(store)
	fields := []model.Field{
		{ID: "woocommerce_redirects_license_settings", Type: model.FieldTypeTitle, Title: "License Settings"},
		{ID: "woocommerce_redirects_license", Type: model.FieldTypeText, Title: "License Key"},
		{ID: "woocommerce_redirects_license_settings", Type: model.FieldTypeSectionEnd},
	}

	err := saver.SaveFields(context.Background(), fields, url.Values{
		"woocommerce_redirects_license": {"  ABC-123  "},
		"unrelated":                     {"ignored"},
	})
	if err != nil {
		t.Fatalf("save fields: %v", err)
	}

	got, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := map[string]string{"woocommerce_redirects_license": "ABC-123"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stored options mismatch (-want +got):\n%s", diff)
	}
}

func TestSaver_SkipsMissingValues(t *testing.T) {
	store := options.NewMemoryStore(map[string]string{"key": "kept"})
	saver := New(store)
	fields := []model.Field{
		{ID: "key", Type: model.FieldTypeText},
		{ID: "enabled", Type: model.FieldTypeCheckbox},
	}

	if err := saver.SaveFields(context.Background(), fields, url.Values{}); err != nil {
		t.Fatalf("save fields: %v", err)
	}

	got, _ := store.List(context.Background())
	want := map[string]string{"key": "kept", "enabled": CheckboxOff}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stored options mismatch (-want +got):\n%s", diff)
	}
}

func TestSaver_ValidationIsAllOrNothing(t *testing.T) {
	store := options.NewMemoryStore(nil)
	saver := New(store)
	fields := []model.Field{
		{ID: "name", Type: model.FieldTypeText},
		{ID: "limit", Type: model.FieldTypeNumber},
		{ID: "contact", Type: model.FieldTypeEmail},
	}

	err := saver.SaveFields(context.Background(), fields, url.Values{
		"name":    {"valid"},
		"limit":   {"lots"},
		"contact": {"nobody"},
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected go-errors error, got %T", err)
	}
	if richErr.Category != goerrors.CategoryValidation || richErr.TextCode != ErrorCodeValidation {
		t.Fatalf("unexpected error classification: %s/%s", richErr.Category, richErr.TextCode)
	}
	var fieldNames []string
	for _, fieldErr := range richErr.ValidationErrors {
		fieldNames = append(fieldNames, fieldErr.Field)
	}
	if diff := cmp.Diff([]string{"limit", "contact"}, fieldNames); diff != "" {
		t.Fatalf("validation fields mismatch (-want +got):\n%s", diff)
	}
	if names := store.Names(); len(names) != 0 {
		t.Fatalf("expected nothing written, got %v", names)
	}
}

type failingStore struct {
	options.Store
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func TestSaver_StorageFailure(t *testing.T) {
	saver := New(failingStore{Store: options.NewMemoryStore(nil)})
	err := saver.SaveFields(context.Background(), []model.Field{{ID: "key", Type: model.FieldTypeText}}, url.Values{"key": {"v"}})
	if err == nil {
		t.Fatalf("expected storage error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.TextCode != ErrorCodeStorage {
		t.Fatalf("expected storage text code, got %v", err)
	}
}

func TestSaver_NilStore(t *testing.T) {
	if err := New(nil).SaveFields(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for missing store")
	}
}
