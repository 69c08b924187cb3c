package form

import (
	"github.com/goliatone/go-formplugin/pkg/dictionary"
	"github.com/goliatone/go-formplugin/pkg/record"
	"github.com/goliatone/go-formplugin/pkg/widget"
)

// ScreenActivityByID is the back screen that carries an activity id.
const ScreenActivityByID = "activity_by_id"

// APIVersion is the protocol version stamped on every outbound message.
const APIVersion = 1

// BackNavigation holds the two standalone controls that tell the host where
// to return after the plugin closes.
type BackNavigation struct {
	Screen     string `json:"backScreen"`
	ActivityID string `json:"backActivityId,omitempty"`
}

// Parser converts widget trees into outbound records.
type Parser struct {
	rules dictionary.Rules
}

// NewParser returns a parser for rules.
func NewParser(rules dictionary.Rules) *Parser {
	return &Parser{rules: rules}
}

// Parse builds the close message for root. Protocol fields come first, then
// the edited content of the root collection. Rendering-only keys are removed.
func (p *Parser) Parse(root *widget.Item, back BackNavigation) *record.Record {
	out := record.New()
	out.Set("apiVersion", APIVersion)
	out.Set("method", "close")
	out.Set("backScreen", back.Screen)
	if back.Screen == ScreenActivityByID {
		out.Set("backActivityId", back.ActivityID)
	}

	if root != nil && root.IsContainer() && root.Edited() {
		out.Merge(p.Collection(root))
	}

	for _, key := range p.rules.StrippedKeys() {
		out.Delete(key)
	}
	return out
}

// Collection serializes the children of container that were edited or are
// mandatory for their (container key, key) pair.
func (p *Parser) Collection(container *widget.Item) *record.Record {
	out := record.New()
	if container == nil {
		return out
	}
	for _, child := range container.Children {
		if !child.Edited() && !p.mandatory(container, child) {
			continue
		}
		if child.IsContainer() {
			out.Set(child.Key, p.Collection(child))
			continue
		}
		out.Set(child.Key, child.Value())
	}
	return out
}

func (p *Parser) mandatory(container, child *widget.Item) bool {
	if child.Mandatory {
		return true
	}
	return p.rules.IsMandatory(container.Key, child.Key)
}
