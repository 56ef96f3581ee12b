package main

import (
	"errors"
	"fmt"

	"remote-tools/pkg/protocol"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
)

var flagPickExample bool

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Fuzzy-find a protocol and print its signature",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry()
		if err != nil {
			return err
		}
		defs, err := definitions(reg)
		if err != nil {
			return err
		}
		def, err := fzfSelect(defs)
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		if err != nil {
			return err
		}
		if flagPickExample {
			if ex, ok := exampleCommand(def); ok {
				fmt.Fprintln(cmd.OutOrStdout(), ex)
				return nil
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), protocol.Signature(def))
		return nil
	},
}

// definitions returns every definition of reg in catalog order.
func definitions(reg *protocol.Registry) ([]protocol.ProtocolDefinition, error) {
	names := reg.ValidProtocols()
	defs := make([]protocol.ProtocolDefinition, 0, len(names))
	for _, name := range names {
		def, err := reg.Definition(name)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func pickLabel(def protocol.ProtocolDefinition) string {
	return fmt.Sprintf("%-18s %-6s %s", def.Name, def.Type, def.Desc)
}

func fzfSelect(defs []protocol.ProtocolDefinition) (protocol.ProtocolDefinition, error) {
	idx, err := fuzzyfinder.Find(
		defs,
		func(i int) string {
			return pickLabel(defs[i])
		},
		fuzzyfinder.WithPromptString("Protocol: "),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i < 0 {
				return ""
			}
			return renderProtocol(defs[i], protocol.Signature(defs[i]))
		}),
	)
	if err != nil {
		return protocol.ProtocolDefinition{}, err
	}
	return defs[idx], nil
}

func init() {
	pickCmd.Flags().BoolVarP(&flagPickExample, "example", "e", false, "print an example command instead of the signature")
}
