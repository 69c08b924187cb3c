package widgets

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formplugin/pkg/dictionary"
	"github.com/goliatone/go-formplugin/pkg/widget"
)

func TestResolve_Builtins(t *testing.T) {
	reg := NewRegistry(dictionary.Default())

	cases := []struct {
		name   string
		leaf   Leaf
		expect widget.Kind
	}{
		{
			name:   "signature field",
			leaf:   Leaf{Parent: "activity", Key: "csign", Value: nil, Writable: true},
			expect: widget.KindSignature,
		},
		{
			name:   "dictionary field",
			leaf:   Leaf{Parent: "activity", Key: "astatus", Value: "started"},
			expect: widget.KindChoice,
		},
		{
			name:   "plain text",
			leaf:   Leaf{Parent: "activity", Key: "caddress", Value: "Main st"},
			expect: widget.KindText,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := reg.Resolve(tc.leaf)
			if !ok {
				t.Fatalf("expected leaf to resolve")
			}
			if got != tc.expect {
				t.Fatalf("kind = %s, want %s", got, tc.expect)
			}
		})
	}
}

func TestResolve_CustomSignatureField(t *testing.T) {
	rules := dictionary.NewRules(dictionary.RulesConfig{SignatureField: "sig"})
	reg := NewRegistry(rules)

	if got, _ := reg.Resolve(Leaf{Key: "sig"}); got != widget.KindSignature {
		t.Fatalf("expected custom signature field to resolve, got %s", got)
	}
	if got, _ := reg.Resolve(Leaf{Key: "csign"}); got != widget.KindText {
		t.Fatalf("expected default name to fall back to text, got %s", got)
	}
}

func TestRegister_PriorityAndOrder(t *testing.T) {
	reg := NewRegistry(dictionary.Default())
	reg.Register("readonly-color", widget.KindText, 95, func(leaf Leaf) bool {
		return leaf.Key == "astatus" && !leaf.Writable
	})

	if got, _ := reg.Resolve(Leaf{Key: "astatus"}); got != widget.KindText {
		t.Fatalf("custom matcher should win, got %s", got)
	}
	if got, _ := reg.Resolve(Leaf{Key: "astatus", Writable: true}); got != widget.KindChoice {
		t.Fatalf("builtin should apply when custom matcher declines, got %s", got)
	}

	want := []string{"readonly-color", MatcherSignature, MatcherChoice, MatcherText}
	if diff := cmp.Diff(want, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestRegister_IgnoresInvalidInput(t *testing.T) {
	reg := &Registry{}
	reg.Register("", widget.KindText, 1, func(Leaf) bool { return true })
	reg.Register("nil", widget.KindText, 1, nil)
	reg.Register("nokind", "", 1, func(Leaf) bool { return true })

	if _, ok := reg.Resolve(Leaf{Key: "x"}); ok {
		t.Fatalf("empty registry must not resolve")
	}
}
