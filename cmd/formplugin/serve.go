package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formplugin/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept host connections and serve the editing page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := server.OpenStore(ctx, a.cfg.Storage)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeStore(); err != nil {
					a.logger.Warn("close store", zap.Error(err))
				}
			}()

			srv, err := server.New(a.cfg,
				server.WithLogger(a.logger),
				server.WithStore(store),
			)
			if err != nil {
				return err
			}
			a.logger.Info("starting formplugin",
				zap.String("addr", a.cfg.Server.Addr),
				zap.String("storage", a.cfg.Storage.Driver),
			)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
