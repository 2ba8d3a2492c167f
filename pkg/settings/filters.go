package settings

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-settingspage/pkg/model"
)

// DefaultFilterPriority is used when a filter is registered without an
// explicit priority.
const DefaultFilterPriority = 10

// SectionsFilter rewrites the section list of a tab before the host sees it.
type SectionsFilter func(ctx context.Context, tabID string, sections []model.Section) []model.Section

// FieldsFilter rewrites the fields of a section before they are rendered or
// saved.
type FieldsFilter func(ctx context.Context, tabID, sectionID string, fields []model.Field) []model.Field

type filterEntry[T any] struct {
	priority int
	order    int
	fn       T
}

// Filters holds the section and field filter chains of a page. Lower
// priorities run first; equal priorities keep registration order. Filters
// always receive copies, so a filter cannot corrupt the static table.
type Filters struct {
	mu       sync.RWMutex
	next     int
	sections []filterEntry[SectionsFilter]
	fields   []filterEntry[FieldsFilter]
}

// NewFilters returns an empty filter set.
func NewFilters() *Filters {
	return &Filters{}
}

// AddSections registers a sections filter at DefaultFilterPriority.
func (f *Filters) AddSections(fn SectionsFilter) {
	f.AddSectionsAt(DefaultFilterPriority, fn)
}

// AddSectionsAt registers a sections filter at the given priority.
func (f *Filters) AddSectionsAt(priority int, fn SectionsFilter) {
	if f == nil || fn == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sections = insertEntry(f.sections, filterEntry[SectionsFilter]{priority: priority, order: f.next, fn: fn})
	f.next++
}

// AddFields registers a fields filter at DefaultFilterPriority.
func (f *Filters) AddFields(fn FieldsFilter) {
	f.AddFieldsAt(DefaultFilterPriority, fn)
}

// AddFieldsAt registers a fields filter at the given priority.
func (f *Filters) AddFieldsAt(priority int, fn FieldsFilter) {
	if f == nil || fn == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = insertEntry(f.fields, filterEntry[FieldsFilter]{priority: priority, order: f.next, fn: fn})
	f.next++
}

// ApplySections runs the sections chain over a copy of sections.
func (f *Filters) ApplySections(ctx context.Context, tabID string, sections []model.Section) []model.Section {
	out := model.CloneSections(sections)
	if f == nil {
		return out
	}
	f.mu.RLock()
	chain := append([]filterEntry[SectionsFilter](nil), f.sections...)
	f.mu.RUnlock()

	for _, entry := range chain {
		out = model.CloneSections(entry.fn(ctx, tabID, out))
	}
	return out
}

// ApplyFields runs the fields chain over a copy of fields.
func (f *Filters) ApplyFields(ctx context.Context, tabID, sectionID string, fields []model.Field) []model.Field {
	out := model.CloneFields(fields)
	if f == nil {
		return out
	}
	f.mu.RLock()
	chain := append([]filterEntry[FieldsFilter](nil), f.fields...)
	f.mu.RUnlock()

	for _, entry := range chain {
		out = model.CloneFields(entry.fn(ctx, tabID, sectionID, out))
	}
	return out
}

// SectionsDecorator adapts a model.SectionsDecorator into a filter.
func SectionsDecorator(decorator model.SectionsDecorator) SectionsFilter {
	if decorator == nil {
		return nil
	}
	return func(_ context.Context, tabID string, sections []model.Section) []model.Section {
		return decorator.DecorateSections(tabID, sections)
	}
}

// FieldsDecorator adapts a model.FieldsDecorator into a filter.
func FieldsDecorator(decorator model.FieldsDecorator) FieldsFilter {
	if decorator == nil {
		return nil
	}
	return func(_ context.Context, tabID, sectionID string, fields []model.Field) []model.Field {
		return decorator.DecorateFields(tabID, sectionID, fields)
	}
}

func insertEntry[T any](entries []filterEntry[T], entry filterEntry[T]) []filterEntry[T] {
	entries = append(entries, entry)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority == entries[j].priority {
			return entries[i].order < entries[j].order
		}
		return entries[i].priority < entries[j].priority
	})
	return entries
}
