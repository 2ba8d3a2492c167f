package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultUpdatePrefix is the conventional prefix of the notification emitted
// after a settings section is saved.
const DefaultUpdatePrefix = "woocommerce_update_options"

// Event is a named notification. Payload values are informational only;
// listeners must not rely on mutating them.
type Event struct {
	ID         string
	Name       string
	Payload    map[string]any
	OccurredAt time.Time
}

// Listener reacts to an emitted event.
type Listener interface {
	OnEvent(ctx context.Context, event Event) error
}

// ListenerFunc adapts a function into a Listener.
type ListenerFunc func(ctx context.Context, event Event) error

// OnEvent calls the underlying function.
func (fn ListenerFunc) OnEvent(ctx context.Context, event Event) error {
	return fn(ctx, event)
}

// Emitter publishes events to whoever subscribed to their name.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Bus dispatches events synchronously to listeners keyed by event name.
// Listeners run in registration order; failures are collected and returned
// once every listener had its turn.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	now       func() time.Time
}

var _ Emitter = (*Bus)(nil)

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		listeners: make(map[string][]Listener),
		now:       time.Now,
	}
}

// Subscribe registers a listener for the given event name.
func (b *Bus) Subscribe(name string, listener Listener) error {
	if b == nil {
		return fmt.Errorf("events: bus is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("events: event name is required")
	}
	if listener == nil {
		return fmt.Errorf("events: listener for %q is nil", name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[name] = append(b.listeners[name], listener)
	return nil
}

// Emit delivers the event to its listeners. Missing IDs and timestamps are
// filled in before delivery.
func (b *Bus) Emit(ctx context.Context, event Event) error {
	if b == nil {
		return nil
	}
	event.Name = strings.TrimSpace(event.Name)
	if event.Name == "" {
		return fmt.Errorf("events: event name is required")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = b.now().UTC()
	}

	var emitErr error
	for idx, listener := range b.snapshot(event.Name) {
		if err := listener.OnEvent(ctx, event); err != nil {
			emitErr = errors.Join(emitErr, fmt.Errorf("events: listener %d for %q failed: %w", idx, event.Name, err))
		}
	}
	return emitErr
}

// Listeners reports how many listeners are subscribed to name.
func (b *Bus) Listeners(name string) int {
	return len(b.snapshot(strings.TrimSpace(name)))
}

func (b *Bus) snapshot(name string) []Listener {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Listener, len(b.listeners[name]))
	copy(out, b.listeners[name])
	return out
}

// UpdateOptionsName builds the `<prefix>_<tab>_<section>` event name emitted
// after a section save. An empty prefix falls back to DefaultUpdatePrefix.
func UpdateOptionsName(prefix, tabID, sectionID string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultUpdatePrefix
	}
	return prefix + "_" + tabID + "_" + sectionID
}
