package tui

import (
	"net/url"
	"strings"
)

// State tracks collected answers and server-provided errors keyed by field
// id. Answers are stored the way a browser would submit them.
type State struct {
	current map[string]string
	values  url.Values
	errors  map[string][]string
}

// NewState seeds the state with the currently stored values and errors.
func NewState(current map[string]string, errs map[string][]string) *State {
	return &State{
		current: cloneStrings(current),
		values:  url.Values{},
		errors:  cloneErrors(errs),
	}
}

// Current returns the stored value for id, falling back to def.
func (s *State) Current(id, def string) string {
	if value, ok := s.current[id]; ok {
		return value
	}
	return def
}

// Set records an answer.
func (s *State) Set(id, value string) {
	s.values.Set(id, value)
}

// Errors returns the messages recorded for id.
func (s *State) Errors(id string) []string {
	return s.errors[id]
}

// Values returns a copy of the collected answers.
func (s *State) Values() url.Values {
	out := make(url.Values, len(s.values))
	for key, values := range s.values {
		out[key] = append([]string(nil), values...)
	}
	return out
}

func cloneStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[strings.TrimSpace(key)] = value
	}
	return out
}

func cloneErrors(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for key, messages := range in {
		out[key] = append([]string(nil), messages...)
	}
	return out
}
