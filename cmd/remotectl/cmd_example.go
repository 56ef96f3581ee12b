package main

import (
	"fmt"
	"os"

	"remote-tools/pkg/protocolyaml"

	"github.com/spf13/cobra"
)

var flagExampleOutput string

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print the built-in catalog as a starting point for custom catalogs",
	Long: "Print the built-in catalog as a starting point for custom catalogs.\n\n" +
		"Protocol names must be unique across all loaded catalogs: rename the copied\n" +
		"protocols, or set no_default = true in config.toml to replace the built-in set.",
	Example: "  " + appName + " example -o ~/.config/" + appName + "/catalogs/custom.yml",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagExampleOutput == "" {
			_, err := cmd.OutOrStdout().Write(protocolyaml.DefaultCatalog)
			return err
		}
		if _, err := os.Stat(flagExampleOutput); err == nil {
			return fmt.Errorf("%s already exists", flagExampleOutput)
		}
		if err := os.WriteFile(flagExampleOutput, protocolyaml.DefaultCatalog, 0o644); err != nil {
			return fmt.Errorf("write catalog: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "wrote", flagExampleOutput)
		return nil
	},
}

func init() {
	exampleCmd.Flags().StringVarP(&flagExampleOutput, "output", "o", "", "write to this file instead of stdout (must not exist)")
}
