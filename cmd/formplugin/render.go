package main

import (
	"github.com/spf13/cobra"

	formplugin "github.com/goliatone/go-formplugin"
	"github.com/goliatone/go-formplugin/pkg/render"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		rendererName string
		referrer     string
		apiBase      string
	)

	cmd := &cobra.Command{
		Use:   "render <request.json|->",
		Short: "Render a host request with one of the built-in renderers",
		Long: `Opens the request as the host would and writes the rendered form to
stdout. Outbound frames, such as the ready handshake, go to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := readRequest(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			renderers, err := formplugin.NewRenderers()
			if err != nil {
				return err
			}
			renderer, err := renderers.Resolve(rendererName)
			if err != nil {
				return err
			}

			p, err := a.openSession(cmd.Context(), request, referrer, &linePoster{w: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}

			opts := renderOptions(a)
			opts.APIBase = apiBase
			out, err := renderer.Render(cmd.Context(), p.View(), opts)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&rendererName, "renderer", "r", "html", "renderer to use (html, json, tui)")
	cmd.Flags().StringVar(&referrer, "referrer", "", "host page URL (defaults to the configured referrer)")
	cmd.Flags().StringVar(&apiBase, "api-base", "", "session API base written into the html page")
	return cmd
}

func renderOptions(a *app) render.RenderOptions {
	return render.RenderOptions{
		AssetsBase: a.cfg.Server.AssetsPrefix,
		Theme:      a.cfg.RendererTheme(),
		Locale:     a.cfg.Plugin.Locale,
	}
}
