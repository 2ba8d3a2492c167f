package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-settingspage/pkg/model"
)

// Built-in widget identifiers exposed by the registry. Structural fields
// (title, sectionend) never resolve to a widget.
const (
	WidgetInput    = "input"
	WidgetPassword = "password"
	WidgetTextarea = "textarea"
	WidgetCheckbox = "checkbox"
	WidgetSelect   = "select"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects the widget that renders a settings field. Higher priority
// wins; ties fall back to registration order. An empty registry never
// resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. The
// latest registration wins between equal names only through priority.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if r == nil || field.Type.Structural() {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetCheckbox, 90, func(field model.Field) bool {
		return field.Type == model.FieldTypeCheckbox
	})

	r.Register(WidgetSelect, 80, func(field model.Field) bool {
		return field.Type == model.FieldTypeSelect || len(field.Options) > 0
	})

	r.Register(WidgetPassword, 70, func(field model.Field) bool {
		return field.Type == model.FieldTypePassword
	})

	r.Register(WidgetTextarea, 60, func(field model.Field) bool {
		return field.Type == model.FieldTypeTextarea
	})

	r.Register(WidgetInput, 10, func(field model.Field) bool {
		switch field.Type {
		case model.FieldTypeText, model.FieldTypeNumber, model.FieldTypeEmail:
			return true
		default:
			return false
		}
	})
}
