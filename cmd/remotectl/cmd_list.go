package main

import (
	"fmt"
	"io"
	"strings"

	"remote-tools/pkg/protocol"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var (
	flagListCategory string
	flagListOutput   string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the protocols of the catalog",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := firstNonEmpty(flagListOutput, current.cfg.Output, outputText)
		if err := checkOutput(format); err != nil {
			return err
		}
		reg, err := registry()
		if err != nil {
			return err
		}
		entries, err := listEntries(reg, flagListCategory)
		if err != nil {
			return err
		}
		if format == outputJSON {
			return writeJSON(cmd.OutOrStdout(), entries)
		}
		renderList(cmd.OutOrStdout(), entries)
		return nil
	},
}

type listEntry struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Desc      string `json:"desc"`
	Signature string `json:"signature"`
}

// listEntries returns the protocols in catalog order, optionally restricted
// to one category. "IR" and "RF" also match protocols of category IR/RF.
func listEntries(reg *protocol.Registry, category string) ([]listEntry, error) {
	category = strings.ToUpper(strings.TrimSpace(category))
	if category != "" && !protocol.Category(category).Valid() {
		return nil, fmt.Errorf("unknown category %q (want IR, RF or IR/RF)", category)
	}
	var out []listEntry
	for _, name := range reg.ValidProtocols() {
		def, err := reg.Definition(name)
		if err != nil {
			return nil, err
		}
		if !matchCategory(def.Type, category) {
			continue
		}
		out = append(out, listEntry{
			Name:      def.Name,
			Category:  string(def.Type),
			Desc:      def.Desc,
			Signature: protocol.Signature(def),
		})
	}
	return out, nil
}

func matchCategory(c protocol.Category, want string) bool {
	switch want {
	case "":
		return true
	case string(protocol.CategoryIRRF):
		return c == protocol.CategoryIRRF
	}
	return c == protocol.Category(want) || c == protocol.CategoryIRRF
}

func renderList(w io.Writer, entries []listEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("PROTOCOL"),
		text.FgHiCyan.Sprint("TYPE"),
		text.FgHiCyan.Sprint("SIGNATURE"),
	})
	for _, e := range entries {
		t.AppendRow(table.Row{text.Bold.Sprint(e.Name), e.Category, e.Signature})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d protocols", len(entries))})
	t.Render()
}

func init() {
	listCmd.Flags().StringVar(&flagListCategory, "category", "", "only list IR, RF or IR/RF protocols")
	listCmd.Flags().StringVarP(&flagListOutput, "output", "o", "", "output format: text or json")
}
