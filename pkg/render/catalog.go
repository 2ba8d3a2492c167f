package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Catalog is a Translator backed by per-locale message tables, typically
// loaded from a YAML document shaped as `locale: {key: message}`.
type Catalog struct {
	mu            sync.RWMutex
	messages      map[string]map[string]string
	defaultLocale string
}

var _ Translator = (*Catalog)(nil)

// NewCatalog creates an empty catalog. defaultLocale is consulted when a key
// is missing from both the requested locale and its base language.
func NewCatalog(defaultLocale string) *Catalog {
	return &Catalog{
		messages:      make(map[string]map[string]string),
		defaultLocale: normalizeLocale(defaultLocale),
	}
}

// LoadCatalog decodes a YAML catalog from r.
func LoadCatalog(r io.Reader, defaultLocale string) (*Catalog, error) {
	var raw map[string]map[string]string
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("render: decode catalog: %w", err)
	}
	catalog := NewCatalog(defaultLocale)
	for locale, messages := range raw {
		catalog.Add(locale, messages)
	}
	return catalog, nil
}

// LoadCatalogFile reads a YAML catalog from disk.
func LoadCatalogFile(path, defaultLocale string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("render: open catalog: %w", err)
	}
	defer file.Close()
	return LoadCatalog(file, defaultLocale)
}

// Add merges messages into locale, overwriting existing keys.
func (c *Catalog) Add(locale string, messages map[string]string) {
	locale = normalizeLocale(locale)
	if locale == "" || len(messages) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	table := c.messages[locale]
	if table == nil {
		table = make(map[string]string, len(messages))
		c.messages[locale] = table
	}
	for key, message := range messages {
		if key = strings.TrimSpace(key); key != "" {
			table[key] = message
		}
	}
}

// Translate looks the key up in locale, then its base language, then the
// default locale. Arguments are applied with fmt.Sprintf semantics.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("render: translation key is required")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, candidate := range localeChain(normalizeLocale(locale), c.defaultLocale) {
		if message, ok := c.messages[candidate][key]; ok {
			if len(args) > 0 {
				return fmt.Sprintf(message, args...), nil
			}
			return message, nil
		}
	}
	return "", fmt.Errorf("render: missing translation %q for locale %q", key, locale)
}

func localeChain(locale, fallback string) []string {
	chain := make([]string, 0, 3)
	seen := make(map[string]struct{}, 3)
	push := func(value string) {
		if value == "" {
			return
		}
		if _, ok := seen[value]; ok {
			return
		}
		seen[value] = struct{}{}
		chain = append(chain, value)
	}
	push(locale)
	if idx := strings.IndexByte(locale, '-'); idx > 0 {
		push(locale[:idx])
	}
	push(fallback)
	return chain
}

func normalizeLocale(locale string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
}
