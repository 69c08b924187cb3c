package vanilla

import (
	"encoding/json"
	"html"
	"strconv"
	"strings"

	"github.com/goliatone/go-formplugin/pkg/widget"
)

// formMarkup renders the widget tree as nested item blocks. The root
// collection itself is rendered, matching the layout hosts expect.
func formMarkup(root *widget.Item, generateLabel string) string {
	if root == nil {
		return ""
	}
	var b strings.Builder
	writeItem(&b, root, generateLabel)
	return b.String()
}

func writeItem(b *strings.Builder, item *widget.Item, generateLabel string) {
	classes := []string{string(ClassItem)}
	if item.Edited() {
		classes = append(classes, string(ClassEdited))
	}

	b.WriteString(`<div class="`)
	b.WriteString(strings.Join(classes, " "))
	b.WriteString(`" data-kind="`)
	b.WriteString(string(item.Kind))
	b.WriteString(`" data-level="`)
	b.WriteString(strconv.Itoa(item.Level))
	b.WriteString(`" data-path="`)
	b.WriteString(html.EscapeString(pathAttr(item.Path())))
	b.WriteString(`">`)

	b.WriteString(`<div class="key">`)
	b.WriteString(html.EscapeString(item.Key))
	b.WriteString(`</div>`)

	if item.IsContainer() {
		b.WriteString(`<br><div class="value value__collection"><div class="items">`)
		for _, child := range item.Children {
			writeItem(b, child, generateLabel)
		}
		b.WriteString(`</div></div></div>`)
		return
	}

	b.WriteString(`<span class="delimiter">: </span>`)
	switch item.Kind {
	case widget.KindSignature:
		b.WriteString(`<button type="button" class="button button__generate_sign">`)
		b.WriteString(html.EscapeString(generateLabel))
		b.WriteString(`</button>`)
	case widget.KindCanvas:
		b.WriteString(`<img class="value value__canvas" width="320" height="240" alt="`)
		b.WriteString(html.EscapeString(item.Key))
		b.WriteString(`" src="`)
		b.WriteString(html.EscapeString(item.Value()))
		b.WriteString(`">`)
	case widget.KindChoice:
		writeSelect(b, item)
	default:
		b.WriteString(`<div class="value value__item`)
		if item.Writable {
			b.WriteString(` writable" contenteditable="true`)
		}
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(item.Value()))
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)
}

func writeSelect(b *strings.Builder, item *widget.Item) {
	b.WriteString(`<select class="value value__item`)
	if item.Writable && !item.Disabled {
		b.WriteString(` writable`)
	}
	b.WriteString(`"`)
	if item.Color != "" {
		b.WriteString(` style="background: `)
		b.WriteString(html.EscapeString(item.Color))
		b.WriteString(`"`)
	}
	if item.Disabled {
		b.WriteString(` disabled`)
	}
	b.WriteString(`>`)

	selected := item.Value()
	for _, opt := range item.Options {
		b.WriteString(`<option value="`)
		b.WriteString(html.EscapeString(opt.Value))
		b.WriteString(`"`)
		if opt.Value == selected {
			b.WriteString(` selected`)
		}
		b.WriteString(`>`)
		b.WriteString(html.EscapeString(opt.Label))
		b.WriteString(`</option>`)
	}
	b.WriteString(`</select>`)
}

func pathAttr(path []string) string {
	if path == nil {
		path = []string{}
	}
	raw, err := json.Marshal(path)
	if err != nil {
		return "[]"
	}
	return string(raw)
}
