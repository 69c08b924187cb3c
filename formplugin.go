// Package formplugin is the convenience entry point for embedding the form
// plugin: it re-exports the session type and assembles the built-in
// renderers.
package formplugin

import (
	"fmt"

	"github.com/goliatone/go-formplugin/pkg/gateway"
	"github.com/goliatone/go-formplugin/pkg/plugin"
	"github.com/goliatone/go-formplugin/pkg/render"
	"github.com/goliatone/go-formplugin/pkg/renderers/jsonview"
	"github.com/goliatone/go-formplugin/pkg/renderers/tui"
	"github.com/goliatone/go-formplugin/pkg/renderers/vanilla"
)

// Plugin aliases plugin.Plugin so callers can depend on the root package.
type Plugin = plugin.Plugin

// Option aliases plugin.Option.
type Option = plugin.Option

// RenderOptions describes per-request renderer settings such as the session
// API base and theme.
type RenderOptions = render.RenderOptions

// View is the renderer-facing snapshot of a session.
type View = render.View

// New creates a plugin session that posts outbound frames through poster.
func New(poster gateway.Poster, opts ...Option) *Plugin {
	return plugin.New(poster, opts...)
}

// NewRenderers registers the html, json and tui renderers. html is
// registered first and therefore resolves for an empty name.
func NewRenderers() (*render.Registry, error) {
	html, err := vanilla.New()
	if err != nil {
		return nil, fmt.Errorf("formplugin: html renderer: %w", err)
	}
	reg := render.NewRegistry()
	for _, r := range []render.Renderer{html, jsonview.New(jsonview.WithIndent("  ")), tui.New()} {
		if err := reg.Register(r); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
