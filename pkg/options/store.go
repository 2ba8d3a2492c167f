package options

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Store is the flat key/value options table settings fields persist into.
// One row per field ID; the store never interprets values.
type Store interface {
	Get(ctx context.Context, name string) (value string, found bool, err error)
	Set(ctx context.Context, name, value string) error
	Delete(ctx context.Context, name string) error
	// List returns the stored values for names. When names is empty every
	// option is returned. Missing names are omitted from the result.
	List(ctx context.Context, names ...string) (map[string]string, error)
}

// MemoryStore keeps options in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store seeded with the provided values.
func NewMemoryStore(seed map[string]string) *MemoryStore {
	values := make(map[string]string, len(seed))
	for name, value := range seed {
		if name = strings.TrimSpace(name); name != "" {
			values[name] = value
		}
	}
	return &MemoryStore{values: values}
}

func (s *MemoryStore) Get(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	name, err := normalizeName(name)
	if err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[name]
	return value, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, name, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, name)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, names ...string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string)
	if len(names) == 0 {
		for name, value := range s.values {
			out[name] = value
		}
		return out, nil
	}
	for _, name := range names {
		if value, ok := s.values[strings.TrimSpace(name)]; ok {
			out[strings.TrimSpace(name)] = value
		}
	}
	return out, nil
}

// Names returns the stored option names in sorted order.
func (s *MemoryStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("options: option name is required")
	}
	return trimmed, nil
}
