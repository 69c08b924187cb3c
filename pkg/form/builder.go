// Package form turns host records into widget trees and widget trees back
// into outbound records.
package form

import (
	"strconv"

	"github.com/goliatone/go-formplugin/pkg/dictionary"
	"github.com/goliatone/go-formplugin/pkg/record"
	"github.com/goliatone/go-formplugin/pkg/widget"
	"github.com/goliatone/go-formplugin/pkg/widgets"
)

// Builder renders records into widget trees.
type Builder struct {
	rules   dictionary.Rules
	widgets *widgets.Registry
}

// BuilderOption customises a Builder.
type BuilderOption func(*Builder)

// WithWidgets replaces the registry used to pick leaf widget kinds.
func WithWidgets(reg *widgets.Registry) BuilderOption {
	return func(b *Builder) {
		if reg != nil {
			b.widgets = reg
		}
	}
}

// NewBuilder returns a builder for rules.
func NewBuilder(rules dictionary.Rules, opts ...BuilderOption) *Builder {
	b := &Builder{rules: rules}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.widgets == nil {
		b.widgets = widgets.NewRegistry(rules)
	}
	return b
}

// Rules returns the rules the builder was configured with.
func (b *Builder) Rules() dictionary.Rules {
	return b.rules
}

// Build renders the whole open request as a writable root collection.
func (b *Builder) Build(data *record.Record) *widget.Item {
	return b.Collection(b.rules.RootKey(), data, true, 1, "")
}

// Collection renders a container value. Objects keep their key order and
// arrays use their indexes as keys. Children receive key as their parent key.
func (b *Builder) Collection(key string, value any, writable bool, level int, parent string) *widget.Item {
	item := widget.NewCollection(key, level)
	item.Mandatory = b.rules.IsMandatory(parent, key)

	add := func(childKey string, childValue any) {
		if isContainer(childValue) {
			item.Append(b.Collection(childKey, childValue, writable, level+1, key))
			return
		}
		item.Append(b.Item(childKey, childValue, writable, level+1, key))
	}

	switch typed := value.(type) {
	case *record.Record:
		typed.Each(add)
	case []any:
		for idx, entry := range typed {
			add(strconv.Itoa(idx), entry)
		}
	}
	return item
}

// Item renders a scalar value. The read-only table overrides writable for the
// (parent, key) pair; null renders as an empty string.
func (b *Builder) Item(key string, value any, writable bool, level int, parent string) *widget.Item {
	if b.rules.IsReadOnly(parent, key) {
		writable = false
	}
	text := record.Scalar(value)

	kind, ok := b.widgets.Resolve(widgets.Leaf{
		Parent:   parent,
		Key:      key,
		Value:    value,
		Writable: writable,
	})
	if !ok {
		kind = widget.KindText
	}

	var item *widget.Item
	switch kind {
	case widget.KindSignature:
		if writable {
			item = widget.NewSignature(key)
		} else {
			item = widget.NewText(key, "", false)
		}
	case widget.KindChoice:
		item = b.choice(key, text, writable)
	default:
		item = widget.NewText(key, text, writable)
	}

	item.Level = level
	item.Mandatory = b.rules.IsMandatory(parent, key)
	return item
}

func (b *Builder) choice(key, current string, writable bool) *widget.Item {
	enum, _ := b.rules.Enums().Enum(key)
	state, known := enum.State(current)

	states := enum.Options(current)
	options := make([]widget.Option, 0, len(states))
	for _, option := range states {
		options = append(options, widget.Option{Value: option.Label, Label: option.Translation})
	}

	disabled := !known || state.Terminal() || !writable
	item := widget.NewChoice(key, current, options, disabled)
	item.Color = state.Color
	return item
}

func isContainer(value any) bool {
	switch typed := value.(type) {
	case *record.Record:
		return typed != nil
	case []any:
		return typed != nil
	default:
		return false
	}
}
