package render

import (
	"github.com/goliatone/go-formplugin/pkg/form"
	"github.com/goliatone/go-formplugin/pkg/widget"
)

// View is a point-in-time snapshot of a plugin session, detached from the
// live session so renderers can read it without locking.
type View struct {
	SessionID string `json:"sessionId,omitempty"`
	State     string `json:"state"`

	// Root is nil until the host sent an open request.
	Root *widget.Item `json:"-"`

	Request         string `json:"request,omitempty"`
	RequestVisible  bool   `json:"requestVisible"`
	Response        string `json:"response,omitempty"`
	ResponseVisible bool   `json:"responseVisible"`
	LocalStorage    string `json:"localStorage,omitempty"`

	Back                form.BackNavigation `json:"back"`
	BackScreens         []string            `json:"backScreens"`
	BackActivityVisible bool                `json:"backActivityVisible"`

	Alerts []string `json:"alerts,omitempty"`
}

// Rendered reports whether the view carries a form.
func (v View) Rendered() bool {
	return v.Root != nil
}
