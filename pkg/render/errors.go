package render

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-settingspage/pkg/model"
)

// ErrorMapping splits save feedback into field-level messages keyed by field
// ID and form-level messages shown above the settings table.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapSaveError converts an error returned by a field saver into an
// ErrorMapping. go-errors validation entries addressed to a known field ID
// become field errors; everything else is reported at form level.
func MapSaveError(fields []model.Field, err error) ErrorMapping {
	if err == nil {
		return ErrorMapping{}
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || len(richErr.ValidationErrors) == 0 {
		return ErrorMapping{Form: normalizeMessages([]string{err.Error()})}
	}

	payload := make(map[string][]string, len(richErr.ValidationErrors))
	for _, fieldErr := range richErr.ValidationErrors {
		payload[fieldErr.Field] = append(payload[fieldErr.Field], fieldErr.Message)
	}
	mapping := MapErrorPayload(fields, payload)
	if len(mapping.Fields) == 0 && len(mapping.Form) == 0 {
		mapping.Form = normalizeMessages([]string{richErr.Message})
	}
	return mapping
}

// MapErrorPayload normalises error payloads keyed by field ID, JSON pointer
// or dotted request path into field IDs. Unknown keys become form-level
// errors so messages are not lost.
func MapErrorPayload(fields []model.Field, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	known := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if id := strings.TrimSpace(field.ID); id != "" && !field.Type.Structural() {
			known[id] = struct{}{}
		}
	}

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		id, ok := matchFieldID(rawPath, known)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[id] = append(mapping.Fields[id], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func matchFieldID(raw string, known map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", false
	}
	if _, ok := known[trimmed]; ok {
		return trimmed, true
	}
	segments := dropWrapperSegments(parsePathSegments(trimmed))
	for i := len(segments) - 1; i >= 0; i-- {
		if _, ok := known[segments[i]]; ok {
			return segments[i], true
		}
	}
	return "", false
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimLeft(clean, "#/.$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if segment := strings.TrimSpace(part); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":    {},
		"request": {},
		"payload": {},
		"data":    {},
		"options": {},
	}

	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
