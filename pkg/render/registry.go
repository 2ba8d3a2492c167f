package render

import (
	"fmt"
	"slices"
	"sync"
)

// Registry holds the field renderers a settings page can draw its sections
// with, keyed by FieldRenderer.Name. The admin HTML renderer and the terminal
// renderer are the usual entries; the orchestrator picks one per request.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]FieldRenderer
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]FieldRenderer{}}
}

// Register makes renderer selectable by its name. A second renderer under a
// name already taken is refused so one section cannot silently render two
// ways.
func (r *Registry) Register(renderer FieldRenderer) error {
	if renderer == nil {
		return fmt.Errorf("render: nil field renderer")
	}
	name := renderer.Name()
	if name == "" {
		return fmt.Errorf("render: field renderer has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[name]; taken {
		return fmt.Errorf("render: field renderer %q already registered", name)
	}
	r.byName[name] = renderer
	return nil
}

// MustRegister is Register for wiring code where a clash is a programming
// error.
func (r *Registry) MustRegister(renderer FieldRenderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get returns the field renderer registered under name.
func (r *Registry) Get(name string) (FieldRenderer, error) {
	r.mu.RLock()
	renderer, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("render: no field renderer named %q", name)
	}
	return renderer, nil
}

// List names the registered field renderers in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}
