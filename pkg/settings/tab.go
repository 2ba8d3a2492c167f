package settings

import (
	"context"
	"io"
	"net/url"

	"github.com/goliatone/go-settingspage/pkg/model"
	"github.com/goliatone/go-settingspage/pkg/render"
)

// Tab is the contract the host admin panel calls for every registered
// settings tab. activeID is the section the current request targets; the
// host reads it from the request and passes it explicitly.
type Tab interface {
	ID() string
	Label(ctx context.Context) string
	ListSections(ctx context.Context) []model.Section
	RenderNav(ctx context.Context, w io.Writer, activeID string) error
	FieldsFor(ctx context.Context, activeID string) []model.Field
	RenderFields(ctx context.Context, w io.Writer, activeID string, opts render.RenderOptions) error
	Persist(ctx context.Context, activeID string, submitted url.Values) error
}

// FieldSaver reads, sanitizes and stores the submitted values for fields.
type FieldSaver interface {
	SaveFields(ctx context.Context, fields []model.Field, submitted url.Values) error
}

// FieldSaverFunc adapts a function into a FieldSaver.
type FieldSaverFunc func(ctx context.Context, fields []model.Field, submitted url.Values) error

func (f FieldSaverFunc) SaveFields(ctx context.Context, fields []model.Field, submitted url.Values) error {
	return f(ctx, fields, submitted)
}
