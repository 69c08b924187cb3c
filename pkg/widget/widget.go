// Package widget defines the editable widget tree a form is rendered into.
// Every item mirrors one entry of the host's record: containers hold nested
// items, leaves expose a typed value and track whether the user changed them
// during the current session.
package widget

import (
	"errors"
	"fmt"
	"slices"
)

// Kind identifies how an item is displayed and edited.
type Kind string

const (
	// KindCollection holds nested items.
	KindCollection Kind = "collection"
	// KindText is free text, editable when the item is writable.
	KindText Kind = "text"
	// KindChoice restricts the value to a fixed option list.
	KindChoice Kind = "choice"
	// KindSignature is the one-shot action that captures a signature.
	KindSignature Kind = "signature"
	// KindCanvas holds a captured signature image.
	KindCanvas Kind = "canvas"
)

var (
	// ErrNotWritable is returned when editing a read-only item.
	ErrNotWritable = errors.New("widget: item is not writable")
	// ErrOptionNotAllowed is returned when selecting a value outside the
	// item's options.
	ErrOptionNotAllowed = errors.New("widget: option not allowed")
	// ErrSignatureConsumed is returned when a signature was already captured.
	ErrSignatureConsumed = errors.New("widget: signature already captured")
	// ErrWrongKind is returned when an operation does not apply to the item.
	ErrWrongKind = errors.New("widget: operation not supported by item kind")
)

// Option is one entry of a choice item.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Item is a node of the widget tree.
type Item struct {
	Key       string
	Kind      Kind
	Level     int
	Writable  bool
	Disabled  bool
	Mandatory bool
	Color     string
	Options   []Option
	Children  []*Item

	value  string
	edited bool
	parent *Item
}

// NewCollection returns an empty container item.
func NewCollection(key string, level int) *Item {
	return &Item{Key: key, Kind: KindCollection, Level: level}
}

// NewText returns a text leaf holding value.
func NewText(key, value string, writable bool) *Item {
	return &Item{Key: key, Kind: KindText, Writable: writable, value: value}
}

// NewChoice returns a choice leaf with selected pre-selected. The item is
// disabled when disabled is true; a disabled choice is never writable.
func NewChoice(key, selected string, options []Option, disabled bool) *Item {
	return &Item{
		Key:      key,
		Kind:     KindChoice,
		Writable: !disabled,
		Disabled: disabled,
		Options:  slices.Clone(options),
		value:    selected,
	}
}

// NewSignature returns a signature action leaf.
func NewSignature(key string) *Item {
	return &Item{Key: key, Kind: KindSignature, Writable: true}
}

// IsContainer reports whether the item holds nested items.
func (i *Item) IsContainer() bool {
	return i != nil && i.Kind == KindCollection
}

// Append adds children to a container and returns it.
func (i *Item) Append(children ...*Item) *Item {
	for _, child := range children {
		if child == nil {
			continue
		}
		child.parent = i
		if child.Level == 0 {
			child.Level = i.Level + 1
		}
		i.Children = append(i.Children, child)
	}
	return i
}

// Parent returns the enclosing container, nil for the root.
func (i *Item) Parent() *Item {
	return i.parent
}

// ParentKey returns the key of the enclosing container.
func (i *Item) ParentKey() string {
	if i.parent == nil {
		return ""
	}
	return i.parent.Key
}

// Value returns the serializable value of a leaf: the selected option of a
// choice, the image data URL of a canvas and the text of anything else.
// Containers and untriggered signature actions have no value.
func (i *Item) Value() string {
	if i == nil {
		return ""
	}
	switch i.Kind {
	case KindCollection, KindSignature:
		return ""
	default:
		return i.value
	}
}

// Edited reports whether the user changed the item or something inside it.
func (i *Item) Edited() bool {
	return i != nil && i.edited
}

// MarkEdited flags the item and all its ancestors as edited.
func (i *Item) MarkEdited() {
	for node := i; node != nil; node = node.parent {
		node.edited = true
	}
}

// SetText replaces the text of a writable text item.
func (i *Item) SetText(text string) error {
	if i.Kind != KindText {
		return fmt.Errorf("%w: set text on %s %q", ErrWrongKind, i.Kind, i.Key)
	}
	if !i.Writable {
		return fmt.Errorf("%w: %q", ErrNotWritable, i.Key)
	}
	i.value = text
	i.MarkEdited()
	return nil
}

// Select picks one of the options of an enabled choice item.
func (i *Item) Select(value string) error {
	if i.Kind != KindChoice {
		return fmt.Errorf("%w: select on %s %q", ErrWrongKind, i.Kind, i.Key)
	}
	if i.Disabled || !i.Writable {
		return fmt.Errorf("%w: %q", ErrNotWritable, i.Key)
	}
	if !slices.ContainsFunc(i.Options, func(opt Option) bool { return opt.Value == value }) {
		return fmt.Errorf("%w: %q for %q", ErrOptionNotAllowed, value, i.Key)
	}
	i.value = value
	i.MarkEdited()
	return nil
}

// Capture turns a signature action into a canvas holding the image data URL.
// The action is consumed on first use.
func (i *Item) Capture(dataURL string) error {
	switch i.Kind {
	case KindCanvas:
		return fmt.Errorf("%w: %q", ErrSignatureConsumed, i.Key)
	case KindSignature:
	default:
		return fmt.Errorf("%w: capture on %s %q", ErrWrongKind, i.Kind, i.Key)
	}
	if !i.Writable {
		return fmt.Errorf("%w: %q", ErrNotWritable, i.Key)
	}
	i.Kind = KindCanvas
	i.value = dataURL
	i.MarkEdited()
	return nil
}

// Child returns the direct child registered under key.
func (i *Item) Child(key string) (*Item, bool) {
	if i == nil {
		return nil, false
	}
	for _, child := range i.Children {
		if child.Key == key {
			return child, true
		}
	}
	return nil, false
}

// Lookup resolves a path of keys below the item.
func (i *Item) Lookup(path ...string) (*Item, bool) {
	node := i
	for _, key := range path {
		next, ok := node.Child(key)
		if !ok {
			return nil, false
		}
		node = next
	}
	return node, node != nil
}

// Path returns the keys from the root down to the item, root excluded.
func (i *Item) Path() []string {
	var path []string
	for node := i; node != nil && node.parent != nil; node = node.parent {
		path = append(path, node.Key)
	}
	slices.Reverse(path)
	return path
}

// Clone returns a deep copy of the subtree rooted at i, detached from i's
// parent. Edit markers are kept.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	out := *i
	out.parent = nil
	out.Options = slices.Clone(i.Options)
	out.Children = nil
	for _, child := range i.Children {
		copied := child.Clone()
		copied.parent = &out
		out.Children = append(out.Children, copied)
	}
	return &out
}

// Walk visits the item and its descendants depth first. Returning an error
// stops the walk.
func (i *Item) Walk(fn func(*Item) error) error {
	if i == nil {
		return nil
	}
	if err := fn(i); err != nil {
		return err
	}
	for _, child := range i.Children {
		if err := child.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}
