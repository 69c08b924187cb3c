package render_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-formplugin/pkg/render"
)

func TestLabels_DefaultsWithoutTranslator(t *testing.T) {
	labels := render.Labels(render.RenderOptions{})
	if got := labels[render.LabelSubmit]; got != "Submit" {
		t.Fatalf("submit label = %q", got)
	}
	if got := labels[render.LabelGenerate]; got != "Generate" {
		t.Fatalf("generate label = %q", got)
	}
}

func TestLabels_UsesCatalogAndFallsBack(t *testing.T) {
	catalog := render.Catalog{
		"es": {render.LabelSubmit: "Enviar"},
	}
	labels := render.Labels(render.RenderOptions{Locale: "es", Translator: catalog})

	if got := labels[render.LabelSubmit]; got != "Enviar" {
		t.Fatalf("submit label = %q, want Enviar", got)
	}
	if got := labels[render.LabelResponse]; got != "Response" {
		t.Fatalf("missing key should fall back, got %q", got)
	}
}

func TestLabels_OnMissingHandler(t *testing.T) {
	var seen []error
	labels := render.Labels(render.RenderOptions{
		OnMissing: func(_ string, key string, _ []any, err error) string {
			seen = append(seen, err)
			return "[" + key + "]"
		},
	})
	if got := labels[render.LabelSubmit]; got != "[plugin.submit]" {
		t.Fatalf("submit label = %q", got)
	}
	if len(seen) == 0 || !errors.Is(seen[0], render.ErrMissingTranslator) {
		t.Fatalf("expected ErrMissingTranslator, got %v", seen)
	}
}

func TestCatalog_FormatsArgs(t *testing.T) {
	catalog := render.Catalog{"en": {"greet": "hi %s"}}
	got, err := catalog.Translate("en", "greet", "Ada")
	if err != nil || got != "hi Ada" {
		t.Fatalf("translate = %q, %v", got, err)
	}
	if _, err := catalog.Translate("fr", "greet"); err == nil {
		t.Fatalf("expected unknown locale error")
	}
}
