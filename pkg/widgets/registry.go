package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formplugin/pkg/dictionary"
	"github.com/goliatone/go-formplugin/pkg/widget"
)

// Built-in matcher names exposed by the registry.
const (
	MatcherSignature = "signature"
	MatcherChoice    = "choice"
	MatcherText      = "text"
)

// Leaf describes a scalar value about to be rendered.
type Leaf struct {
	Parent   string
	Key      string
	Value    any
	Writable bool
}

// Matcher decides whether a widget kind should handle the supplied leaf.
type Matcher func(leaf Leaf) bool

type rule struct {
	name     string
	kind     widget.Kind
	priority int
	match    Matcher
	order    int
}

// Registry selects widget kinds for leaves based on registered matchers.
// Higher priority wins; ties fall back to registration order. An empty
// registry never resolves a kind.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers for rules
// registered.
func NewRegistry(rules dictionary.Rules) *Registry {
	reg := &Registry{}
	reg.registerBuiltins(rules)
	return reg
}

// Register adds a matcher resolving to kind under the provided name and
// priority. Callers should avoid duplicate names.
func (r *Registry) Register(name string, kind widget.Kind, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || kind == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		kind:     kind,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget kind for a leaf.
func (r *Registry) Resolve(leaf Leaf) (widget.Kind, bool) {
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(leaf) {
			return entry.kind, true
		}
	}
	return "", false
}

// Names lists registered matcher names by descending priority.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].priority > rules[j].priority
	})
	names := make([]string, 0, len(rules))
	for _, entry := range rules {
		names = append(names, entry.name)
	}
	return names
}

func (r *Registry) registerBuiltins(rules dictionary.Rules) {
	signatureField := rules.SignatureField()
	enums := rules.Enums()

	r.Register(MatcherSignature, widget.KindSignature, 90, func(leaf Leaf) bool {
		return leaf.Key == signatureField
	})

	r.Register(MatcherChoice, widget.KindChoice, 70, func(leaf Leaf) bool {
		return enums.Has(leaf.Key)
	})

	r.Register(MatcherText, widget.KindText, 10, func(Leaf) bool {
		return true
	})
}
