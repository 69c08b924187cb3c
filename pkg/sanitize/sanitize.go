// Package sanitize turns the inner HTML of an editable field into the plain
// text it displays.
package sanitize

import (
	"html"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Text strips every tag from markup and decodes entities, returning the text
// content. Escaped characters typed by the user come back as typed.
func Text(markup string) string {
	if markup == "" {
		return ""
	}
	return html.UnescapeString(textSanitizer().Sanitize(markup))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
