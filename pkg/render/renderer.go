package render

import (
	"context"
	"io"

	"github.com/goliatone/go-settingspage/pkg/model"
)

// FieldRenderer turns a section's field descriptors into markup written to w.
// Renderers own the field-type to widget mapping; callers only decide which
// fields to pass.
type FieldRenderer interface {
	Name() string
	ContentType() string
	RenderFields(ctx context.Context, w io.Writer, fields []model.Field, options RenderOptions) error
}
