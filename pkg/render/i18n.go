package render

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingTranslator is reported to OnMissing when no translator is set.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler returns the text used when key cannot be
// translated.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// Chrome label keys and their English defaults.
const (
	LabelRequest       = "plugin.request"
	LabelResponse      = "plugin.response"
	LabelLocalStorage  = "plugin.localStorage"
	LabelBackScreen    = "plugin.backScreen"
	LabelBackActivity  = "plugin.backActivityId"
	LabelSubmit        = "plugin.submit"
	LabelGenerate      = "plugin.generateSignature"
	LabelToggleRequest = "plugin.toggleRequest"
	LabelToggleReply   = "plugin.toggleResponse"
	LabelWaiting       = "plugin.waiting"
)

var defaultLabels = map[string]string{
	LabelRequest:       "Request",
	LabelResponse:      "Response",
	LabelLocalStorage:  "Local storage",
	LabelBackScreen:    "Back screen",
	LabelBackActivity:  "Back activity id",
	LabelSubmit:        "Submit",
	LabelGenerate:      "Generate",
	LabelToggleRequest: "JSON request",
	LabelToggleReply:   "JSON response",
	LabelWaiting:       "Waiting for data from host",
}

// Catalog is an in-memory Translator keyed by locale then message key.
type Catalog map[string]map[string]string

// Translate implements Translator. Args are applied with fmt.Sprintf.
func (c Catalog) Translate(locale, key string, args ...any) (string, error) {
	messages, ok := c[locale]
	if !ok {
		return "", fmt.Errorf("render: no messages for locale %q", locale)
	}
	msg, ok := messages[key]
	if !ok {
		return "", fmt.Errorf("render: missing translation %q for %q", key, locale)
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return msg, nil
}

// Labels resolves every chrome label for opts, falling back to the English
// defaults.
func Labels(opts RenderOptions) map[string]string {
	out := make(map[string]string, len(defaultLabels))
	for key, fallback := range defaultLabels {
		out[key] = translate(opts.Locale, key, fallback, opts.Translator, opts.OnMissing)
	}
	return out
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
		}
		return fallback
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}

	if onMissing != nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}
