package vanilla_test

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formplugin/pkg/dictionary"
	"github.com/goliatone/go-formplugin/pkg/form"
	"github.com/goliatone/go-formplugin/pkg/render"
	"github.com/goliatone/go-formplugin/pkg/renderers/vanilla"
	"github.com/goliatone/go-formplugin/pkg/testsupport"
)

func renderedView(t *testing.T) render.View {
	t.Helper()

	builder := form.NewBuilder(dictionary.Default())
	root := builder.Build(testsupport.MustRecord(t, testsupport.OpenActivity))
	return render.View{
		SessionID:      "s-1",
		State:          "rendered",
		Root:           root,
		Request:        `{"apiVersion": 1}`,
		RequestVisible: true,
		Response:       `{"method": "close"}`,
		LocalStorage:   `{"pluginInitData":1}`,
		Back:           form.BackNavigation{Screen: "default"},
		BackScreens:    []string{"default", "activity_by_id"},
	}
}

func renderPage(t *testing.T, view render.View, opts render.RenderOptions) string {
	t.Helper()

	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), view, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRenderer_Metadata(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if renderer.Name() != "html" {
		t.Fatalf("name = %q", renderer.Name())
	}
	if !strings.HasPrefix(renderer.ContentType(), "text/html") {
		t.Fatalf("content type = %q", renderer.ContentType())
	}
}

func TestRenderer_RendersForm(t *testing.T) {
	html := renderPage(t, renderedView(t), render.RenderOptions{})

	mustContain := []string{
		`<div class="form">`,
		`<div class="key">activity</div>`,
		`data-path="[&#34;activity&#34;,&#34;aid&#34;]"`,
		`<div class="value value__item writable" contenteditable="true">text_comments</div>`,
		`<button type="button" class="button button__generate_sign">Generate</button>`,
		`<option value="started" selected>Started</option>`,
		`<option value="complete">Completed</option>`,
		`<option value="activity_by_id">activity_by_id</option>`,
		`<option value="default" selected>default</option>`,
		`<pre class="json__request">{&quot;apiVersion&quot;: 1}</pre>`,
		`<pre class="json__local-storage">`,
	}
	for _, want := range mustContain {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(html, "<script") {
		t.Errorf("runtime script emitted without an API base")
	}
	if !strings.Contains(html, `<section class="section__response" hidden>`) {
		t.Errorf("response section should be hidden")
	}
	if !strings.Contains(html, `<label class="back_activity_label" hidden>`) {
		t.Errorf("back activity input should be hidden")
	}
}

func TestRenderer_ReadOnlyItemsAreNotEditable(t *testing.T) {
	html := renderPage(t, renderedView(t), render.RenderOptions{})

	if !strings.Contains(html, `<div class="key">pid</div><span class="delimiter">: </span><div class="value value__item">17</div>`) {
		t.Fatalf("read-only resource pid rendered as writable:\n%s", html)
	}
}

func TestRenderer_WaitingWithoutForm(t *testing.T) {
	html := renderPage(t, render.View{State: "ready"}, render.RenderOptions{})

	if !strings.Contains(html, `<p class="waiting">Waiting for data from host</p>`) {
		t.Fatalf("waiting message missing:\n%s", html)
	}
	if strings.Contains(html, `class="form"`) {
		t.Fatalf("form emitted before open")
	}
}

func TestRenderer_RuntimeThemeAndLabels(t *testing.T) {
	view := renderedView(t)
	view.Alerts = []string{"Unknown method"}

	html := renderPage(t, view, render.RenderOptions{
		APIBase:    "/sessions/s-1/",
		AssetsBase: "/assets",
		Locale:     "es",
		Translator: render.Catalog{"es": {render.LabelSubmit: "Enviar"}},
		Theme: &theme.RendererConfig{
			Theme:   "plain",
			Variant: "dark",
			CSSVars: map[string]string{"--fp-text": "#eee", "--fp-background": "#111"},
		},
	})

	mustContain := []string{
		`data-api="/sessions/s-1"`,
		`<script src="/assets/formplugin.js" defer></script>`,
		`<link rel="stylesheet" href="/assets/formplugin.css">`,
		"<style>:root {\n--fp-background: #111;\n--fp-text: #eee;\n}</style>",
		`data-theme="plain"`,
		`data-variant="dark"`,
		`<button type="button" class="submit">Enviar</button>`,
		`<li class="alert">Unknown method</li>`,
	}
	for _, want := range mustContain {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestAssetsFS(t *testing.T) {
	for _, name := range []string{vanilla.StylesheetName, vanilla.RuntimeScriptName} {
		data, err := fs.ReadFile(vanilla.AssetsFS(), name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("%s is empty", name)
		}
	}
}
