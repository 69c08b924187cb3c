// Package vanilla renders a plugin session as a server-side HTML page with a
// small script that posts edits back to the session API.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-formplugin/pkg/render"
	rendertemplate "github.com/goliatone/go-formplugin/pkg/render/template"
	"github.com/goliatone/go-formplugin/pkg/render/template/pongo"
)

// Name is the registry name of the HTML renderer.
const Name = "html"

const pageTemplate = "templates/page.tmpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithName("vanilla"),
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, view render.View, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	labels := chromeLabels(render.Labels(opts))

	back := map[string]any{
		"screen":     view.Back.Screen,
		"activityId": view.Back.ActivityID,
		"screens":    view.BackScreens,
		"showId":     view.BackActivityVisible,
	}

	result, err := r.templates.RenderTemplate(pageTemplate, map[string]any{
		"session":         view.SessionID,
		"state":           view.State,
		"rendered":        view.Rendered(),
		"form":            formMarkup(view.Root, labels["generateSignature"]),
		"request":         view.Request,
		"requestVisible":  view.RequestVisible,
		"response":        view.Response,
		"responseVisible": view.ResponseVisible,
		"localStorage":    view.LocalStorage,
		"back":            back,
		"alerts":          view.Alerts,
		"labels":          labels,
		"theme":           buildThemeContext(opts),
		"apiBase":         strings.TrimRight(opts.APIBase, "/"),
		"stylesheet":      assetURL(opts.AssetsBase, StylesheetName),
		"script":          assetURL(opts.AssetsBase, RuntimeScriptName),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

// chromeLabels drops the "plugin." prefix so templates can address labels as
// labels.submit.
func chromeLabels(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[strings.TrimPrefix(key, "plugin.")] = value
	}
	return out
}

func assetURL(base, name string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return ""
	}
	return base + "/" + name
}

func buildThemeContext(opts render.RenderOptions) map[string]any {
	cfg := opts.Theme
	if cfg == nil {
		return map[string]any{}
	}
	return map[string]any{
		"name":    cfg.Theme,
		"variant": cfg.Variant,
		"style":   cssVarsStyle(cfg.CSSVars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
