// Package template defines the template seam renderers rely on. The
// gotemplate subpackage provides the pongo2-backed implementation used by the
// admin renderer and the admin HTTP shell.
package template
