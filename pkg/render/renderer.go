package render

import (
	"context"
)

// Renderer converts a session view into a byte representation (HTML, JSON,
// terminal text).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View, options RenderOptions) ([]byte, error)
}
