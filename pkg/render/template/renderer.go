package template

import (
	"io"
)

// TemplateRenderer renders a named template. Output is returned as a string
// and, when writers are supplied, copied to each one.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}
