package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formplugin/pkg/form"
	"github.com/goliatone/go-formplugin/pkg/plugin"
	"github.com/goliatone/go-formplugin/pkg/render"
	"github.com/goliatone/go-formplugin/pkg/widget"
)

// Session is the subset of a plugin session the editor drives.
type Session interface {
	View() render.View
	SetText(path []string, text string) error
	Select(path []string, value string) error
	GenerateSignature(path []string, dataURL string) error
	SetBackScreen(screen string) error
	SetBackActivityID(id string) error
	ToggleResponse()
	EditResponse(text string) error
	Response() string
	Submit(ctx context.Context) error
}

// Editor walks the writable items of a session and prompts for each one.
type Editor struct {
	driver      PromptDriver
	rawResponse bool
}

// NewEditor constructs an editor. The survey driver is used unless
// WithPromptDriver is given.
func NewEditor(options ...Option) *Editor {
	cfg := newConfig(options)
	return &Editor{driver: cfg.driver, rawResponse: cfg.rawResponse}
}

// Edit prompts for every editable leaf, the back navigation and finally asks
// whether to submit. With WithRawResponse the response JSON is offered for
// editing before submitting, and again while it does not parse. It reports
// whether the form was submitted.
func (e *Editor) Edit(ctx context.Context, session Session) (bool, error) {
	view := session.View()
	if !view.Rendered() {
		return false, ErrNoForm
	}
	for _, alert := range view.Alerts {
		if err := e.driver.Info(ctx, "! "+alert); err != nil {
			return false, err
		}
	}

	err := view.Root.Walk(func(item *widget.Item) error {
		if item.IsContainer() || !item.Writable || item.Disabled {
			return nil
		}
		return e.editItem(ctx, session, item)
	})
	if err != nil {
		return false, err
	}

	if err := e.editBack(ctx, session, view); err != nil {
		return false, err
	}
	if e.rawResponse {
		if err := e.editResponse(ctx, session); err != nil {
			return false, err
		}
	}

	submit, err := e.driver.Confirm(ctx, ConfirmConfig{Message: "Submit form?", Default: true})
	if err != nil {
		return false, err
	}
	if !submit {
		return false, nil
	}
	for {
		err := session.Submit(ctx)
		if err == nil {
			return true, nil
		}
		if !e.rawResponse || !errors.Is(err, plugin.ErrInvalidResponse) {
			return false, fmt.Errorf("tui: submit: %w", err)
		}
		if err := e.driver.Info(ctx, "! "+plugin.AlertJSONParse); err != nil {
			return false, err
		}
		if err := e.editResponse(ctx, session); err != nil {
			return false, err
		}
	}
}

// editResponse opens the raw response editor and stores the edited text.
func (e *Editor) editResponse(ctx context.Context, session Session) error {
	if !session.View().ResponseVisible {
		session.ToggleResponse()
	}
	text, err := e.driver.TextArea(ctx, TextAreaConfig{
		Message: "Response JSON",
		Default: session.Response(),
		Help:    "The text is sent as the close message when it is valid JSON.",
	})
	if err != nil {
		return err
	}
	return session.EditResponse(text)
}

func (e *Editor) editItem(ctx context.Context, session Session, item *widget.Item) error {
	path := item.Path()
	message := strings.Join(path, ".")

	switch item.Kind {
	case widget.KindText:
		text, err := e.driver.Input(ctx, InputConfig{Message: message, Default: item.Value()})
		if err != nil {
			return err
		}
		if text == item.Value() {
			return nil
		}
		return session.SetText(path, text)

	case widget.KindChoice:
		labels := make([]string, 0, len(item.Options))
		current := 0
		for i, opt := range item.Options {
			labels = append(labels, opt.Label)
			if opt.Value == item.Value() {
				current = i
			}
		}
		idx, err := e.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: current})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(item.Options) || idx == current {
			return nil
		}
		return session.Select(path, item.Options[idx].Value)

	case widget.KindSignature:
		sign, err := e.driver.Confirm(ctx, ConfirmConfig{Message: "Capture signature for " + message + "?"})
		if err != nil {
			return err
		}
		if !sign {
			return nil
		}
		return session.GenerateSignature(path, "")
	}
	return nil
}

func (e *Editor) editBack(ctx context.Context, session Session, view render.View) error {
	if len(view.BackScreens) == 0 {
		return nil
	}
	current := 0
	for i, screen := range view.BackScreens {
		if screen == view.Back.Screen {
			current = i
		}
	}
	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:      "Back screen",
		Options:      view.BackScreens,
		DefaultIndex: current,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(view.BackScreens) {
		return nil
	}
	screen := view.BackScreens[idx]
	if err := session.SetBackScreen(screen); err != nil {
		return err
	}
	if screen != form.ScreenActivityByID {
		return nil
	}

	id, err := e.driver.Input(ctx, InputConfig{
		Message: "Back activity id",
		Default: view.Back.ActivityID,
		Validator: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("activity id is required")
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	return session.SetBackActivityID(id)
}
