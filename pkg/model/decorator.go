package model

// FieldsDecorator rewrites the field list resolved for a section. Decorators
// receive a copy and return the list that should be used from then on.
type FieldsDecorator interface {
	DecorateFields(tabID, sectionID string, fields []Field) []Field
}

// FieldsDecoratorFunc adapts a function into a FieldsDecorator.
type FieldsDecoratorFunc func(tabID, sectionID string, fields []Field) []Field

// DecorateFields calls the underlying function.
func (fn FieldsDecoratorFunc) DecorateFields(tabID, sectionID string, fields []Field) []Field {
	return fn(tabID, sectionID, fields)
}

// SectionsDecorator rewrites the section list of a tab.
type SectionsDecorator interface {
	DecorateSections(tabID string, sections []Section) []Section
}

// SectionsDecoratorFunc adapts a function into a SectionsDecorator.
type SectionsDecoratorFunc func(tabID string, sections []Section) []Section

// DecorateSections calls the underlying function.
func (fn SectionsDecoratorFunc) DecorateSections(tabID string, sections []Section) []Section {
	return fn(tabID, sections)
}
