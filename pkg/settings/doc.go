// Package settings registers a settings tab and its sections inside the host
// admin panel. A Page answers the host's questions for one tab: which
// sections exist, how the section navigation looks, which fields a section
// holds, and what happens when a section is saved. Rendering, storage and
// notifications are delegated to collaborators supplied at construction.
package settings
