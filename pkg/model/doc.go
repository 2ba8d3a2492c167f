// Package model defines the declarative settings table consumed by the
// registry and the host renderers: tabs (Definition), sections, and the field
// descriptors that belong to each section. Field IDs double as option names
// in the host options store, so they must be unique across the whole options
// namespace. Translation keys (`TitleKey`, `DescriptionKey`, `LabelKey`)
// let renderers localise labels without the table knowing about locales.
package model
