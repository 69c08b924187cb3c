// Package tui renders plugin sessions as terminal text and drives
// interactive editing through survey prompts.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-formplugin/pkg/render"
	"github.com/goliatone/go-formplugin/pkg/widget"
)

// Name is the registry name of the text renderer.
const Name = "tui"

// Renderer prints a session view as an indented outline.
type Renderer struct {
	theme Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer.
func New(options ...Option) *Renderer {
	cfg := config{theme: defaultTheme}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Renderer{theme: cfg.theme}
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render prints the form outline followed by the back navigation, the
// visible JSON panes and alerts.
func (r *Renderer) Render(ctx context.Context, view render.View, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	labels := render.Labels(opts)
	var b strings.Builder

	for _, alert := range view.Alerts {
		b.WriteString("! ")
		b.WriteString(alert)
		b.WriteString("\n")
	}

	if !view.Rendered() {
		b.WriteString(labels[render.LabelWaiting])
		b.WriteString("\n")
		return []byte(b.String()), nil
	}

	r.writeItem(&b, view.Root, 0)

	b.WriteString("\n")
	b.WriteString(labels[render.LabelBackScreen])
	b.WriteString(": ")
	b.WriteString(view.Back.Screen)
	b.WriteString("\n")
	if view.BackActivityVisible {
		b.WriteString(labels[render.LabelBackActivity])
		b.WriteString(": ")
		b.WriteString(view.Back.ActivityID)
		b.WriteString("\n")
	}

	if view.RequestVisible {
		writePane(&b, labels[render.LabelRequest], view.Request)
	}
	if view.ResponseVisible {
		writePane(&b, labels[render.LabelResponse], view.Response)
	}
	return []byte(b.String()), nil
}

func (r *Renderer) writeItem(b *strings.Builder, item *widget.Item, depth int) {
	b.WriteString(strings.Repeat(r.theme.Indent, depth))
	if item.Edited() {
		b.WriteString(r.theme.EditedMarker)
	}
	b.WriteString(item.Key)

	if item.IsContainer() {
		b.WriteString("\n")
		for _, child := range item.Children {
			r.writeItem(b, child, depth+1)
		}
		return
	}

	b.WriteString(": ")
	switch item.Kind {
	case widget.KindSignature:
		b.WriteString("[signature]")
	case widget.KindCanvas:
		b.WriteString("[signed]")
	case widget.KindChoice:
		b.WriteString(optionLabel(item))
	default:
		b.WriteString(item.Value())
	}
	if !item.Writable || item.Disabled {
		b.WriteString(" ")
		b.WriteString(r.theme.ReadOnlyMark)
	}
	b.WriteString("\n")
}

func writePane(b *strings.Builder, title, body string) {
	b.WriteString("\n--- ")
	b.WriteString(title)
	b.WriteString(" ---\n")
	b.WriteString(body)
	b.WriteString("\n")
}

func optionLabel(item *widget.Item) string {
	value := item.Value()
	for _, opt := range item.Options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}
