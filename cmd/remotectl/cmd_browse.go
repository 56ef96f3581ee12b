package main

import (
	"strconv"

	"remote-tools/pkg/protocol"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the catalog and try commands in a terminal UI",
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
		p := tea.NewProgram(newBrowseModel(reg, defs), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

type browseState int

const (
	stateList browseState = iota
	stateTry
)

type browseModel struct {
	table  table.Model
	input  textinput.Model
	reg    *protocol.Registry
	defs   []protocol.ProtocolDefinition
	state  browseState
	result string
	err    error
}

func newBrowseModel(reg *protocol.Registry, defs []protocol.ProtocolDefinition) browseModel {
	columns := []table.Column{
		{Title: "PROTOCOL", Width: 18},
		{Title: "TYPE", Width: 6},
		{Title: "ARGS", Width: 5},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(browseRows(defs)),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("99"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 512
	in.Placeholder = "protocol:arg:..."

	return browseModel{table: t, input: in, reg: reg, defs: defs, state: stateList}
}

func browseRows(defs []protocol.ProtocolDefinition) []table.Row {
	rows := make([]table.Row, len(defs))
	for i, d := range defs {
		rows[i] = table.Row{d.Name, string(d.Type), argCount(d)}
	}
	return rows
}

func argCount(d protocol.ProtocolDefinition) string {
	req := d.RequiredArgs()
	if req == len(d.Args) {
		return strconv.Itoa(req)
	}
	return strconv.Itoa(req) + "-" + strconv.Itoa(len(d.Args))
}

func (m browseModel) selected() (protocol.ProtocolDefinition, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.defs) {
		return protocol.ProtocolDefinition{}, false
	}
	return m.defs[idx], true
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateTry:
		return m.updateTry(msg)
	}
	return m.updateList(msg)
}

func (m browseModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter", "t":
			def, ok := m.selected()
			if !ok {
				return m, nil
			}
			m.state = stateTry
			m.result, m.err = "", nil
			value := def.Name + ":"
			if ex, ok := exampleCommand(def); ok {
				value = ex
			}
			m.input.SetValue(value)
			m.input.CursorEnd()
			return m, m.input.Focus()
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m browseModel) updateTry(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.state = stateList
			m.input.Blur()
			return m, nil
		case "enter":
			m = m.try(m.input.Value())
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// try validates text and stores the outcome for the view.
func (m browseModel) try(text string) browseModel {
	cmd, err := m.reg.ValidateSendCommand(text)
	m.err = err
	m.result = ""
	if err == nil {
		m.result = cmd.String()
	}
	return m
}

func (m browseModel) View() string {
	title := styleTitle.Render("REMOTECTL  [" + strconv.Itoa(len(m.defs)) + " protocols]")

	detail := ""
	if def, ok := m.selected(); ok {
		detail = stylePanel.Width(72).Render(renderProtocol(def, protocol.Signature(def)))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, stylePanel.Render(m.table.View()), detail)

	switch m.state {
	case stateTry:
		var out string
		switch {
		case m.err != nil:
			out = styleErr.Render(m.err.Error())
		case m.result != "":
			out = styleOK.Render(m.result)
		}
		help := styleHelp.Render("enter  validate    esc  back    ctrl+c  quit")
		return title + "\n" + body + "\n" + m.input.View() + "\n" + out + "\n" + help

	default:
		help := styleHelp.Render("↑/↓  navigate    enter  try a command    q  quit")
		return title + "\n" + body + "\n" + help
	}
}
