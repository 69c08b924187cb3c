package render

import (
	theme "github.com/goliatone/go-theme"
)

// RenderOptions describe per-request data renderers can use to customise
// their output without touching the session.
type RenderOptions struct {
	// APIBase prefixes the session endpoints the page runtime calls, for
	// example "/sessions/<id>". Empty disables the runtime.
	APIBase string
	// AssetsBase prefixes stylesheet and script URLs.
	AssetsBase string
	// Theme carries the resolved theme name, variant and CSS variables.
	Theme *theme.RendererConfig
	// Locale selects the language of page chrome labels.
	Locale string
	// Translator resolves chrome label keys; nil keeps the English defaults.
	Translator Translator
	// OnMissing controls the string returned when a translation is missing.
	OnMissing MissingTranslationHandler
}
