// Package orchestrator wires a settings tab to its host collaborators
// (renderer registry, options store, event bus, filters, presets) behind a
// single constructor, for callers that want the built-in pieces without
// assembling them by hand.
package orchestrator
