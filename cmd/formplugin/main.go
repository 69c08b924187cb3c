// Command formplugin runs the form plugin as a server or edits a single host
// request from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formplugin/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds state shared by every subcommand. It is filled in by the root
// command before a subcommand runs.
type app struct {
	configPath string
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "formplugin",
		Short:         "Host-embedded editor for JSON work records",
		SilenceUsage:  true,
		Long: `formplugin renders the JSON request sent by a host application as an
editable form and posts the edited result back when the user submits.

Run "formplugin serve" to accept host connections, or "formplugin edit" to
work on a saved request in the terminal.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.debug {
				cfg.Logging.Debug = true
			}
			a.cfg = cfg

			if a.logger != nil {
				return nil
			}
			logger, err := buildLogger(cfg.Logging.Debug)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to the YAML config file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging and message tracing")

	root.AddCommand(
		newServeCmd(a),
		newRenderCmd(a),
		newEditCmd(a),
		newDictionaryCmd(a),
		newConfigCmd(a),
	)
	return root
}

func buildLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
