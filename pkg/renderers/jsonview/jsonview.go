// Package jsonview renders a session view as JSON for API clients and tests.
package jsonview

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-formplugin/pkg/render"
	"github.com/goliatone/go-formplugin/pkg/widget"
)

// Name is the registry name of the JSON renderer.
const Name = "json"

// Renderer serialises render.View including the widget tree.
type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

// Option customises the renderer.
type Option func(*Renderer)

// WithIndent pretty-prints output using indent.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// New constructs a JSON renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string { return Name }

func (r *Renderer) ContentType() string { return "application/json" }

// Node is the JSON form of a widget item.
type Node struct {
	Key       string          `json:"key"`
	Kind      widget.Kind     `json:"kind"`
	Path      []string        `json:"path"`
	Level     int             `json:"level"`
	Writable  bool            `json:"writable"`
	Disabled  bool            `json:"disabled,omitempty"`
	Mandatory bool            `json:"mandatory,omitempty"`
	Edited    bool            `json:"edited"`
	Color     string          `json:"color,omitempty"`
	Value     string          `json:"value,omitempty"`
	Options   []widget.Option `json:"options,omitempty"`
	Children  []Node          `json:"children,omitempty"`
}

// Document is the top-level payload.
type Document struct {
	render.View
	Form   *Node             `json:"form,omitempty"`
	Labels map[string]string `json:"labels"`
}

func (r *Renderer) Render(_ context.Context, view render.View, opts render.RenderOptions) ([]byte, error) {
	doc := Document{
		View:   view,
		Labels: render.Labels(opts),
	}
	if view.Root != nil {
		node := NodeOf(view.Root)
		doc.Form = &node
	}

	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(doc, "", r.indent)
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonview: marshal view: %w", err)
	}
	return out, nil
}

// NodeOf converts item and its descendants.
func NodeOf(item *widget.Item) Node {
	path := item.Path()
	if path == nil {
		path = []string{}
	}
	node := Node{
		Key:       item.Key,
		Kind:      item.Kind,
		Path:      path,
		Level:     item.Level,
		Writable:  item.Writable,
		Disabled:  item.Disabled,
		Mandatory: item.Mandatory,
		Edited:    item.Edited(),
		Color:     item.Color,
		Value:     item.Value(),
		Options:   item.Options,
	}
	for _, child := range item.Children {
		node.Children = append(node.Children, NodeOf(child))
	}
	return node
}
