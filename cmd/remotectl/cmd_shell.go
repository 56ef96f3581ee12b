package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"remote-tools/pkg/protocol"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Validate commands interactively with history and tab completion",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry()
		if err != nil {
			return err
		}
		return runShell(cmd.OutOrStdout(), reg)
	},
}

var errExit = errors.New("exit")

func runShell(w io.Writer, reg *protocol.Registry) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            styleKey.Render(appName) + "> ",
		HistoryFile:       filepath.Join(os.TempDir(), "."+appName+"_history"),
		AutoComplete:      shellCompleter(reg),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	current.logger.Debug().Int("protocols", reg.Len()).Msg("shell started")
	fmt.Fprintln(w, styleHelp.Render("Type a command such as nec:0x04:0x08, or 'help'. Use TAB for completion."))

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				continue
			}
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		if err := handleLine(w, reg, line); errors.Is(err, errExit) {
			return nil
		}
	}
}

// handleLine runs one shell line. Validation failures are printed, not
// returned; only errExit ends the session.
func handleLine(w io.Writer, reg *protocol.Registry, line string) error {
	input := strings.TrimSpace(line)
	if input == "" {
		return nil
	}
	word, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch word {
	case "exit", "quit":
		return errExit
	case "help", "?":
		fmt.Fprintln(w, shellHelp)
		return nil
	case "list":
		fmt.Fprintln(w, strings.Join(reg.ValidProtocols(), " "))
		return nil
	case "show", "sig":
		if rest == "" {
			fmt.Fprintln(w, styleErr.Render("usage: "+word+" <protocol>"))
			return nil
		}
		def, err := reg.Definition(rest)
		if err != nil {
			fmt.Fprintln(w, styleErr.Render(err.Error()))
			return nil
		}
		if word == "sig" {
			fmt.Fprintln(w, protocol.Signature(def))
		} else {
			fmt.Fprintln(w, renderProtocol(def, protocol.Signature(def)))
		}
		return nil
	}

	cmd, err := reg.ValidateSendCommand(input)
	if err != nil {
		fmt.Fprintln(w, styleErr.Render(err.Error()))
		return nil
	}
	fmt.Fprintln(w, styleOK.Render(cmd.String()))
	return nil
}

const shellHelp = `Commands:
  <protocol>:<arg>:...   validate a command and print it with defaults filled in
  list                   list protocol names
  show <protocol>        show a protocol definition
  sig <protocol>         print a protocol signature
  help, ?                show this help
  exit, quit             leave the shell`

func shellCompleter(reg *protocol.Registry) *readline.PrefixCompleter {
	names := func(string) []string { return reg.ValidProtocols() }
	commandPrefixes := func(string) []string {
		out := make([]string, 0, reg.Len())
		for _, n := range reg.ValidProtocols() {
			out = append(out, n+":")
		}
		return out
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("list"),
		readline.PcItem("show", readline.PcItemDynamic(names)),
		readline.PcItem("sig", readline.PcItemDynamic(names)),
		readline.PcItem("exit"),
		readline.PcItemDynamic(commandPrefixes),
	)
}
