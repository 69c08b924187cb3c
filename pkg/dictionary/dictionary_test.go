package dictionary_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formplugin/pkg/dictionary"
)

func optionLabels(states []dictionary.State) []string {
	out := make([]string, 0, len(states))
	for _, state := range states {
		out = append(out, state.Label)
	}
	return out
}

func TestDefault_OptionsAreCurrentPlusTransitions(t *testing.T) {
	rules := dictionary.Default()

	astatus, ok := rules.Enums().Enum("astatus")
	if !ok {
		t.Fatalf("expected astatus enum")
	}

	cases := map[string][]string{
		"started":   {"started", "complete", "suspended", "notdone", "cancelled"},
		"pending":   {"pending", "started", "cancelled"},
		"complete":  {"complete"},
		"cancelled": {"cancelled"},
	}
	for current, want := range cases {
		if diff := cmp.Diff(want, optionLabels(astatus.Options(current))); diff != "" {
			t.Fatalf("options for %s mismatch (-want +got):\n%s", current, diff)
		}
	}
}

func TestEnum_OptionsForUnknownValuePassThrough(t *testing.T) {
	invpool, _ := dictionary.Default().Enums().Enum("invpool")

	got := invpool.Options("forged")
	want := []dictionary.State{{Label: "forged", Translation: "forged"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestDefault_Tables(t *testing.T) {
	rules := dictionary.Default()

	readOnly := [][2]string{
		{"data", "apiVersion"}, {"data", "method"}, {"data", "entity"},
		{"resource", "pid"}, {"resource", "pname"}, {"resource", "gender"},
	}
	for _, pair := range readOnly {
		if !rules.IsReadOnly(pair[0], pair[1]) {
			t.Fatalf("expected %s.%s to be read-only", pair[0], pair[1])
		}
	}
	if rules.IsReadOnly("activity", "apiVersion") {
		t.Fatalf("read-only table must be keyed by parent")
	}

	if !rules.IsMandatory("activity", "aid") || !rules.IsMandatory("inventory", "invid") {
		t.Fatalf("expected mandatory whitelist entries")
	}
	if rules.IsMandatory("data", "aid") {
		t.Fatalf("mandatory whitelist must be keyed by parent")
	}

	if rules.SignatureField() != "csign" || rules.RootKey() != "data" {
		t.Fatalf("unexpected reserved names: %q %q", rules.SignatureField(), rules.RootKey())
	}
	if diff := cmp.Diff([]string{"entity", "resource"}, rules.StrippedKeys()); diff != "" {
		t.Fatalf("stripped keys mismatch (-want +got):\n%s", diff)
	}
}

func TestEnum_StateReturnsCopies(t *testing.T) {
	astatus, _ := dictionary.Default().Enums().Enum("astatus")

	state, _ := astatus.State("started")
	state.Outs[0] = "mutated"

	again, _ := astatus.State("started")
	if again.Outs[0] != "complete" {
		t.Fatalf("enum state mutated through returned copy: %v", again.Outs)
	}
}

func TestLoad_YAML(t *testing.T) {
	doc := `
enums:
  wstatus:
    - label: open
      translation: Open
      outs: [closed]
      color: "#fff"
    - label: closed
      translation: Closed
read_only:
  data: [method]
mandatory:
  order: [oid]
`
	rules, err := dictionary.Load([]byte(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	enum, ok := rules.Enums().Enum("wstatus")
	if !ok {
		t.Fatalf("expected wstatus enum")
	}
	if diff := cmp.Diff([]string{"open", "closed"}, optionLabels(enum.Options("open"))); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if !rules.IsReadOnly("data", "method") || !rules.IsMandatory("order", "oid") {
		t.Fatalf("expected tables to load")
	}
	if rules.SignatureField() != dictionary.DefaultSignatureField {
		t.Fatalf("expected default signature field, got %q", rules.SignatureField())
	}
}

func TestLoad_RejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":          "  ",
		"unknown key":    "colour: red\n",
		"missing label":  "enums:\n  s:\n    - translation: X\n",
		"bad transition": "enums:\n  s:\n    - label: a\n      outs: [b]\n",
		"duplicate":      "enums:\n  s:\n    - label: a\n    - label: a\n",
		"wrong type":     "read_only: [data]\n",
	}
	for name, doc := range cases {
		if _, err := dictionary.Load([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestEncode_RoundTrips(t *testing.T) {
	data, err := dictionary.Encode(dictionary.Default())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(data), "astatus:") {
		t.Fatalf("expected astatus in encoded rules:\n%s", data)
	}

	rules, err := dictionary.Load(data)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if diff := cmp.Diff([]string{"astatus", "invpool"}, rules.Enums().Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if !rules.IsMandatory("activity", "aid") {
		t.Fatalf("expected mandatory table to survive round trip")
	}
}
