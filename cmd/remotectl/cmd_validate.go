package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"remote-tools/pkg/protocol"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [command ...]",
	Short: "Validate commands such as nec:0x04:0x08",
	Long: "Validate each command against the catalog and print it with defaults filled in.\n" +
		"Without arguments, commands are read from stdin, one per line.\n\n" +
		"In text mode the first invalid command stops processing. In json mode every\n" +
		"command is reported. Invalid input exits with status 2.",
	Example: "  " + appName + " validate nec:0x04:0x08 'raw:\"1000,-500,1000\":38000'\n" +
		"  cat commands.txt | " + appName + " validate --output json",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		format = firstNonEmpty(format, current.cfg.Output, outputText)
		if err := checkOutput(format); err != nil {
			return err
		}
		reg, err := registry()
		if err != nil {
			return err
		}
		inputs := args
		if len(inputs) == 0 {
			if inputs, err = readLines(cmd.InOrStdin()); err != nil {
				return err
			}
		}
		return runValidate(cmd.OutOrStdout(), reg, inputs, format)
	},
}

func runValidate(w io.Writer, reg *protocol.Registry, inputs []string, format string) error {
	failed := 0
	for _, in := range inputs {
		cmd, err := reg.ValidateSendCommand(in)
		if format == outputJSON {
			if werr := writeJSON(w, newValidationResult(in, cmd, err)); werr != nil {
				return werr
			}
			if err != nil {
				failed++
			}
			continue
		}
		if err != nil {
			return invalid(err)
		}
		fmt.Fprintln(w, cmd.String())
	}
	if failed > 0 {
		return invalid(fmt.Errorf("%d of %d commands are invalid", failed, len(inputs)))
	}
	return nil
}

// readLines returns the non-blank, non-comment lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return lines, nil
}

func init() {
	validateCmd.Flags().StringP("output", "o", "", "output format: text or json (default from config, else text)")
}
