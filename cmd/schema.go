package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cortexai-cli/internal/loader"
	"github.com/KaramelBytes/cortexai-cli/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <file.csv>",
	Short: "Detect column types, identifier columns and the target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tb, _, err := loader.New(cfg.LoaderOptions(), logger).Load(args[0])
		if err != nil {
			return err
		}
		s := schema.NewDetector(cfg.SchemaOptions(), logger).Detect(tb)

		w := cmd.OutOrStdout()
		format := outputFormat("table")
		if ok, err := renderData(w, format, s); ok {
			return err
		}
		t := newTable(w)
		t.AppendHeader(table.Row{"Column", "Category", "Unique", "Identifier", "Target"})
		for _, name := range s.Columns {
			c, _ := tb.Column(name)
			cat, _ := s.Category(name)
			t.AppendRow(table.Row{name, string(cat), c.Distinct(), mark(s.IsIdentifier(name)), mark(name == s.Target)})
		}
		renderTable(t, format)
		if !s.HasTarget() {
			fmt.Fprintln(w, "No target column detected.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func mark(b bool) string {
	if b {
		return "✓"
	}
	return ""
}
