package main

import (
	"errors"
	"fmt"
	"strings"

	"remote-tools/pkg/protocol"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var formCmd = &cobra.Command{
	Use:               "form [protocol]",
	Short:             "Build a command interactively, one field per argument",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: protocolCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry()
		if err != nil {
			return err
		}
		name := ""
		if len(args) == 1 {
			name = args[0]
		} else if name, err = selectProtocol(reg); err != nil {
			return formErr(err)
		}
		schema, err := reg.Schema(name)
		if err != nil {
			return err
		}
		values, err := argumentForm(schema)
		if err != nil {
			return formErr(err)
		}
		out, err := reg.ValidateCommand(formCommand(schema.Name(), values))
		if err != nil {
			return invalid(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.String())
		return nil
	},
}

func formErr(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	return err
}

func selectProtocol(reg *protocol.Registry) (string, error) {
	defs, err := definitions(reg)
	if err != nil {
		return "", err
	}
	opts := make([]huh.Option[string], len(defs))
	for i, d := range defs {
		opts[i] = huh.NewOption(fmt.Sprintf("%-18s %s", d.Name, d.Desc), d.Name)
	}
	var name string
	err = huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Protocol").
			Options(opts...).
			Height(15).
			Value(&name),
	)).Run()
	return name, err
}

// argumentForm asks for every argument of the schema and returns the raw
// answers in declaration order.
func argumentForm(schema *protocol.ProtocolSchema) ([]string, error) {
	args := schema.Arguments()
	values := make([]string, len(args))
	fields := make([]huh.Field, len(args))
	for i, v := range args {
		def := v.Definition()
		fields[i] = huh.NewInput().
			Title(fieldTitle(def)).
			Description(def.Desc).
			Placeholder(fieldPlaceholder(def)).
			Validate(fieldValidator(v)).
			Value(&values[i])
	}
	err := huh.NewForm(huh.NewGroup(fields...).Title(schema.Name())).Run()
	return values, err
}

func fieldTitle(def protocol.ArgumentDefinition) string {
	t := def.Name + " (" + def.Type.String() + ")"
	if def.HasDefault {
		t += " optional"
	}
	return t
}

func fieldPlaceholder(def protocol.ArgumentDefinition) string {
	if def.HasDefault {
		return protocol.FormatValue(def.Default)
	}
	return def.Example
}

// fieldValidator checks one answer with the compiled argument validator.
// Blank answers are accepted for optional arguments.
func fieldValidator(v *protocol.ArgValidator) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			if _, ok := v.Default(); ok {
				return nil
			}
			return errors.New("required")
		}
		_, err := v.Validate(s)
		return err
	}
}

// formCommand turns form answers into a positional command. Blank answers
// stay unset so the defaults apply.
func formCommand(name string, values []string) protocol.RawCommand {
	n := len(values)
	for n > 0 && strings.TrimSpace(values[n-1]) == "" {
		n--
	}
	if n == 0 && len(values) > 0 {
		n = 1
	}
	raw := protocol.RawCommand{Protocol: name, Args: make([]any, n)}
	for i := range n {
		if s := strings.TrimSpace(values[i]); s != "" {
			raw.Args[i] = s
		}
	}
	return raw
}
