package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoForm is returned when editing a session that has not been opened.
	ErrNoForm = errors.New("tui: session has no form")
)
