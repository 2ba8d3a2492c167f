package admin

import (
	"html"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	descriptionPolicyOnce sync.Once
	descriptionPolicy     *bluemonday.Policy

	tooltipPolicyOnce sync.Once
	tooltipPolicy     *bluemonday.Policy
)

// sanitizeDescription keeps the inline markup host descriptions commonly
// carry (links, emphasis, code) and drops everything else.
func sanitizeDescription(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	descriptionPolicyOnce.Do(func() {
		descriptionPolicy = bluemonday.UGCPolicy()
		descriptionPolicy.RequireNoFollowOnLinks(false)
	})
	return strings.TrimSpace(descriptionPolicy.Sanitize(value))
}

// tooltipText flattens a description to plain text for the data-tip attribute.
func tooltipText(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	tooltipPolicyOnce.Do(func() {
		tooltipPolicy = bluemonday.StrictPolicy()
	})
	return html.UnescapeString(strings.TrimSpace(tooltipPolicy.Sanitize(value)))
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		if strings.HasPrefix(strings.TrimSpace(key), "--") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value := strings.TrimSpace(vars[key])
		if value == "" || strings.ContainsAny(value, ";{}") {
			continue
		}
		parts = append(parts, strings.TrimSpace(key)+": "+value)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "; ") + ";"
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func writeHiddenInput(b *strings.Builder, name, value string) {
	b.WriteString(`<input type="hidden" name="`)
	b.WriteString(html.EscapeString(name))
	b.WriteString(`" value="`)
	b.WriteString(html.EscapeString(value))
	b.WriteString(`" />`)
	b.WriteByte('\n')
}
