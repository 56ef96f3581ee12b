package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"remote-tools/pkg/protocol"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			Padding(0, 1)

	styleHelp = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	styleKey = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	styleDim = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	styleSignature = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	styleOK = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	styleErr = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// renderProtocol formats a definition for the terminal: header, signature,
// links and one block per argument.
func renderProtocol(def protocol.ProtocolDefinition, signature string) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(def.Name) + styleDim.Render("["+string(def.Type)+"]") + "\n")
	b.WriteString(" " + def.Desc + "\n\n")
	b.WriteString(" " + styleSignature.Render(signature) + "\n")

	if def.Note != "" {
		b.WriteString("\n " + styleKey.Render("note") + " " + def.Note + "\n")
	}
	for _, l := range def.Links {
		b.WriteString(" " + styleKey.Render("link") + " " + l + "\n")
	}

	b.WriteString("\n")
	for _, a := range def.Args {
		b.WriteString(renderArgument(a))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderArgument(a protocol.ArgumentDefinition) string {
	var b strings.Builder
	head := styleKey.Render(a.Name) + " " + styleDim.Render(a.Type.String())
	if a.HasDefault {
		head += styleDim.Render(" = " + protocol.FormatValue(a.Default))
	}
	b.WriteString(" " + head + "\n")
	b.WriteString("   " + a.Desc + "\n")
	if a.Example != "" {
		b.WriteString("   " + styleDim.Render("example: ") + a.Example + "\n")
	}
	for _, c := range a.Schema {
		b.WriteString("   " + styleDim.Render("constraint: ") + describeConstraint(c) + "\n")
	}
	return b.String()
}

func describeConstraint(c protocol.ConstraintSpec) string {
	var parts []string
	for _, v := range c.Args {
		parts = append(parts, fmt.Sprint(v))
	}
	for _, k := range slices.Sorted(maps.Keys(c.Kwargs)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, c.Kwargs[k]))
	}
	if len(parts) == 0 {
		return c.Name
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// exampleCommand builds a command from the argument examples. Arguments
// without an example end the command, leaving the rest to their defaults.
func exampleCommand(def protocol.ProtocolDefinition) (string, bool) {
	parts := []string{def.Name}
	for _, a := range def.Args {
		if a.Example == "" {
			break
		}
		parts = append(parts, a.Example)
	}
	if len(parts) < def.RequiredArgs()+1 || len(parts) == 1 {
		return "", false
	}
	return strings.Join(parts, ":"), true
}
