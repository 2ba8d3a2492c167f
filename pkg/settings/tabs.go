package settings

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// TabEntry is one row of the host tab list.
type TabEntry struct {
	ID    string
	Label string
}

type registeredTab struct {
	tab      Tab
	priority int
	order    int
}

// Tabs is the host's list of settings tabs. Tabs are listed by priority
// (lower first) and then by registration order.
type Tabs struct {
	mu    sync.RWMutex
	next  int
	items []registeredTab
}

// NewTabs returns an empty tab list.
func NewTabs() *Tabs {
	return &Tabs{}
}

// Register adds tab at DefaultFilterPriority.
func (t *Tabs) Register(tab Tab) error {
	return t.RegisterAt(DefaultFilterPriority, tab)
}

// RegisterAt adds tab at priority. Tabs with an empty or already registered
// id are rejected.
func (t *Tabs) RegisterAt(priority int, tab Tab) error {
	if tab == nil {
		return badInput("settings tab is nil", nil)
	}
	id := strings.TrimSpace(tab.ID())
	if id == "" {
		return badInput("settings tab id is required", nil)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, item := range t.items {
		if item.tab.ID() == id {
			return duplicateTab(id)
		}
	}
	t.items = append(t.items, registeredTab{tab: tab, priority: priority, order: t.next})
	t.next++
	sort.SliceStable(t.items, func(i, j int) bool {
		if t.items[i].priority == t.items[j].priority {
			return t.items[i].order < t.items[j].order
		}
		return t.items[i].priority < t.items[j].priority
	})
	return nil
}

// Get returns the tab registered under id.
func (t *Tabs) Get(id string) (Tab, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, item := range t.items {
		if item.tab.ID() == id {
			return item.tab, true
		}
	}
	return nil, false
}

// Lookup is Get returning a not-found error for unknown ids.
func (t *Tabs) Lookup(id string) (Tab, error) {
	if tab, ok := t.Get(id); ok {
		return tab, nil
	}
	return nil, notFound("settings tab not found", map[string]any{"tab": id})
}

// Entries lists the registered tabs with their labels resolved for ctx.
func (t *Tabs) Entries(ctx context.Context) []TabEntry {
	t.mu.RLock()
	items := append([]registeredTab(nil), t.items...)
	t.mu.RUnlock()

	out := make([]TabEntry, 0, len(items))
	for _, item := range items {
		out = append(out, TabEntry{ID: item.tab.ID(), Label: item.tab.Label(ctx)})
	}
	return out
}

// First returns the first tab in list order.
func (t *Tabs) First() (Tab, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.items) == 0 {
		return nil, false
	}
	return t.items[0].tab, true
}
