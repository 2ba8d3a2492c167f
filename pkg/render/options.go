package render

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the settings table.
type RenderOptions struct {
	// Values pre-populates controls keyed by field ID, usually the current
	// contents of the options store.
	Values map[string]string
	// Errors surfaces save feedback keyed by field ID.
	Errors map[string][]string
	// Locale selects the translation used for field titles and descriptions.
	Locale string
	// Translator resolves TitleKey/DescriptionKey/LabelKey lookups. When nil
	// the literal strings from the settings table are used.
	Translator Translator
	// OnMissing decides what to show when a translation lookup fails.
	OnMissing MissingTranslationHandler
	// Hidden carries hidden inputs the host wants emitted alongside the
	// fields: the tab and section route plus the admin handler's _wpnonce
	// when nonce checks are on.
	Hidden map[string]string
}
