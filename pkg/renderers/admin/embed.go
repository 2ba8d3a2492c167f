package admin

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl templates/components/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded template bundle so hosts can extend or
// override individual partials.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
