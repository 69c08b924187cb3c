package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formplugin/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the formplugin config file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init <path>",
		Short: "Write a config file with default settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DefaultConfig().Save(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load and validate the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Loading already validated the file.
			fmt.Fprintf(cmd.OutOrStdout(), "addr %s, storage %s, %d back screens\n",
				a.cfg.Server.Addr, a.cfg.Storage.Driver, len(a.cfg.Plugin.BackScreens))
			return nil
		},
	})
	return cmd
}
