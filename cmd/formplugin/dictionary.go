package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formplugin/pkg/dictionary"
)

func newDictionaryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dictionary",
		Short: "Inspect and validate enum and permission rules",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the active rules as YAML",
		Long: `Prints the rules file named in the config, or the built-in rules when
none is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := dictionary.Default()
			if a.cfg.Plugin.RulesFile != "" {
				loaded, err := dictionary.LoadFile(a.cfg.Plugin.RulesFile)
				if err != nil {
					return err
				}
				rules = loaded
			}
			data, err := dictionary.Encode(rules)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check <rules.yaml>",
		Short: "Validate a rules file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := dictionary.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d enums, signature field %q)\n",
				args[0], len(rules.Enums().Fields()), rules.SignatureField())
			return nil
		},
	})
	return cmd
}
