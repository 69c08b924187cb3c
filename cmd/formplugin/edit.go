package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formplugin/pkg/renderers/tui"
)

// newEditorFunc builds the editor used by the edit command. Tests swap in a
// scripted prompt driver.
var newEditorFunc = func(options ...tui.Option) *tui.Editor {
	return tui.NewEditor(options...)
}

func newEditCmd(a *app) *cobra.Command {
	var (
		referrer    string
		rawResponse bool
	)

	cmd := &cobra.Command{
		Use:   "edit <request.json|->",
		Short: "Edit a host request interactively and print the close message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := readRequest(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			poster := &linePoster{w: cmd.ErrOrStderr()}
			p, err := a.openSession(cmd.Context(), request, referrer, poster)
			if err != nil {
				return err
			}

			outline, err := tui.New().Render(cmd.Context(), p.View(), renderOptions(a))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.ErrOrStderr(), string(outline))

			// The close message goes to stdout so it can be piped back to the host.
			poster.redirect(cmd.OutOrStdout())
			submitted, err := newEditorFunc(tui.WithRawResponse(rawResponse)).Edit(cmd.Context(), p)
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
				return nil
			}
			if err != nil {
				return err
			}
			if !submitted {
				fmt.Fprintln(cmd.ErrOrStderr(), "not submitted")
			}
			for _, alert := range p.Alerts() {
				fmt.Fprintln(cmd.ErrOrStderr(), "! "+alert)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&referrer, "referrer", "", "host page URL (defaults to the configured referrer)")
	cmd.Flags().BoolVar(&rawResponse, "raw-response", false, "edit the response JSON before submitting")
	return cmd
}
