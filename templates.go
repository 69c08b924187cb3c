package formplugin

import (
	"io/fs"

	"github.com/goliatone/go-formplugin/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in html page templates so callers can
// extend them and pass the result to vanilla.WithTemplatesFS.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}
