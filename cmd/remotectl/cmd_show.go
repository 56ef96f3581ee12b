package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:               "show <protocol>",
	Short:             "Show a protocol definition and its signature",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: protocolCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry()
		if err != nil {
			return err
		}
		def, err := reg.Definition(args[0])
		if err != nil {
			return err
		}
		sig, err := reg.Signature(def.Name)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderProtocol(def, sig))
		if ex, ok := exampleCommand(def); ok {
			fmt.Fprintln(cmd.OutOrStdout(), "\n "+styleDim.Render("try: ")+appName+" validate '"+ex+"'")
		}
		return nil
	},
}
