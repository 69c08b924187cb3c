// Package dictionary holds the static configuration the form renderer and
// parser depend on: enum state machines keyed by field name, the read-only
// table, the mandatory whitelist and the few reserved field names. Values are
// immutable once constructed and are injected into consumers explicitly.
package dictionary

import "slices"

// State is one labelled value of an enum together with the states it may move
// to. Terminal states have no outbound transitions.
type State struct {
	Label       string   `json:"label" yaml:"label"`
	Translation string   `json:"translation" yaml:"translation"`
	Outs        []string `json:"outs" yaml:"outs"`
	Color       string   `json:"color" yaml:"color"`
}

// Terminal reports whether the state has no outbound transitions.
func (s State) Terminal() bool {
	return len(s.Outs) == 0
}

// Enum is the ordered state machine attached to a single field.
type Enum struct {
	order  []string
	states map[string]State
}

// NewEnum builds an enum from states in declaration order. Later duplicates
// replace earlier ones without changing their position.
func NewEnum(states ...State) Enum {
	enum := Enum{states: make(map[string]State, len(states))}
	for _, state := range states {
		if _, exists := enum.states[state.Label]; !exists {
			enum.order = append(enum.order, state.Label)
		}
		state.Outs = append([]string(nil), state.Outs...)
		enum.states[state.Label] = state
	}
	return enum
}

// State returns the state registered under label.
func (e Enum) State(label string) (State, bool) {
	state, ok := e.states[label]
	if !ok {
		return State{}, false
	}
	state.Outs = append([]string(nil), state.Outs...)
	return state, true
}

// Labels lists state labels in declaration order.
func (e Enum) Labels() []string {
	return append([]string(nil), e.order...)
}

// States lists states in declaration order.
func (e Enum) States() []State {
	out := make([]State, 0, len(e.order))
	for _, label := range e.order {
		state, _ := e.State(label)
		out = append(out, state)
	}
	return out
}

// Options returns the values a user may pick when the field currently holds
// current: the current value first, followed by its transitions. A value that
// is not part of the enum yields only itself.
func (e Enum) Options(current string) []State {
	state, ok := e.State(current)
	if !ok {
		return []State{{Label: current, Translation: current}}
	}
	options := make([]State, 0, len(state.Outs)+1)
	options = append(options, state)
	for _, out := range state.Outs {
		if next, ok := e.State(out); ok {
			options = append(options, next)
		}
	}
	return options
}

// Dictionary maps field names to their enums.
type Dictionary struct {
	fields map[string]Enum
	order  []string
}

// NewDictionary builds a dictionary from a field → enum mapping. Field order is
// the order of the provided names.
func NewDictionary(names []string, enums map[string]Enum) Dictionary {
	dict := Dictionary{fields: make(map[string]Enum, len(enums))}
	for _, name := range names {
		enum, ok := enums[name]
		if !ok {
			continue
		}
		if _, exists := dict.fields[name]; !exists {
			dict.order = append(dict.order, name)
		}
		dict.fields[name] = enum
	}
	return dict
}

// Enum returns the enum attached to field.
func (d Dictionary) Enum(field string) (Enum, bool) {
	enum, ok := d.fields[field]
	return enum, ok
}

// Has reports whether field is backed by an enum.
func (d Dictionary) Has(field string) bool {
	_, ok := d.fields[field]
	return ok
}

// Fields lists the enum-backed field names.
func (d Dictionary) Fields() []string {
	return append([]string(nil), d.order...)
}

// PairSet is a set of (parent key, key) pairs.
type PairSet struct {
	pairs map[string][]string
}

// NewPairSet builds a set from a parent → keys mapping.
func NewPairSet(pairs map[string][]string) PairSet {
	set := PairSet{pairs: make(map[string][]string, len(pairs))}
	for parent, keys := range pairs {
		for _, key := range keys {
			if !slices.Contains(set.pairs[parent], key) {
				set.pairs[parent] = append(set.pairs[parent], key)
			}
		}
	}
	return set
}

// Contains reports whether (parent, key) belongs to the set.
func (s PairSet) Contains(parent, key string) bool {
	return slices.Contains(s.pairs[parent], key)
}

// Map returns a copy of the parent → keys mapping.
func (s PairSet) Map() map[string][]string {
	out := make(map[string][]string, len(s.pairs))
	for parent, keys := range s.pairs {
		out[parent] = append([]string(nil), keys...)
	}
	return out
}

// Rules bundles everything the renderer and parser need to know about the
// host's data contract.
type Rules struct {
	enums          Dictionary
	readOnly       PairSet
	mandatory      PairSet
	signatureField string
	rootKey        string
	strippedKeys   []string
}

// RulesConfig is the plain-data form of Rules.
type RulesConfig struct {
	Enums          Dictionary
	ReadOnly       PairSet
	Mandatory      PairSet
	SignatureField string
	RootKey        string
	StrippedKeys   []string
}

// NewRules freezes cfg, filling blank reserved names with their defaults.
func NewRules(cfg RulesConfig) Rules {
	if cfg.SignatureField == "" {
		cfg.SignatureField = DefaultSignatureField
	}
	if cfg.RootKey == "" {
		cfg.RootKey = DefaultRootKey
	}
	if cfg.StrippedKeys == nil {
		cfg.StrippedKeys = []string{"entity", "resource"}
	}
	return Rules{
		enums:          cfg.Enums,
		readOnly:       cfg.ReadOnly,
		mandatory:      cfg.Mandatory,
		signatureField: cfg.SignatureField,
		rootKey:        cfg.RootKey,
		strippedKeys:   append([]string(nil), cfg.StrippedKeys...),
	}
}

// Enums returns the enum dictionary.
func (r Rules) Enums() Dictionary { return r.enums }

// ReadOnly returns the read-only table.
func (r Rules) ReadOnly() PairSet { return r.readOnly }

// Mandatory returns the mandatory whitelist.
func (r Rules) Mandatory() PairSet { return r.mandatory }

// SignatureField names the field rendered as a one-shot signature action.
func (r Rules) SignatureField() string { return r.signatureField }

// RootKey names the top-level collection of a rendered form.
func (r Rules) RootKey() string { return r.rootKey }

// StrippedKeys lists top-level keys removed before a payload is sent.
func (r Rules) StrippedKeys() []string { return append([]string(nil), r.strippedKeys...) }

// IsReadOnly reports whether key under parent must never be writable.
func (r Rules) IsReadOnly(parent, key string) bool {
	return r.readOnly.Contains(parent, key)
}

// IsMandatory reports whether key under parent is always serialized.
func (r Rules) IsMandatory(parent, key string) bool {
	return r.mandatory.Contains(parent, key)
}
