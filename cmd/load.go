package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cortexai-cli/internal/loader"
)

var loadHead int

var loadCmd = &cobra.Command{
	Use:   "load <file.csv>",
	Short: "Validate and read a CSV file, then show what was detected",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tb, meta, err := loader.New(cfg.LoaderOptions(), logger).Load(args[0])
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		format := outputFormat("table")
		if ok, err := renderData(w, format, meta); ok {
			return err
		}

		t := newTable(w)
		t.AppendHeader(table.Row{"Property", "Value"})
		t.AppendRows([]table.Row{
			{"File", baseName(meta.Path)},
			{"Size", fmt.Sprintf("%.2f MB (%d bytes)", meta.SizeMB(), meta.SizeBytes)},
			{"Rows", meta.Rows},
			{"Columns", meta.Columns},
			{"Encoding", meta.Encoding},
			{"Separator", fmt.Sprintf("%q", meta.Delimiter)},
		})
		renderTable(t, format)

		n := loadHead
		if n > tb.NumRows() {
			n = tb.NumRows()
		}
		if n <= 0 || tb.NumCols() == 0 {
			return nil
		}
		fmt.Fprintln(w)
		head := newTable(w)
		header := make(table.Row, tb.NumCols())
		for i, name := range tb.ColumnNames() {
			header[i] = name
		}
		head.AppendHeader(header)
		for i := 0; i < n; i++ {
			row := make(table.Row, tb.NumCols())
			for j, c := range tb.Columns {
				row[j] = c.Values[i].String()
			}
			head.AppendRow(row)
		}
		renderTable(head, format)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().IntVar(&loadHead, "head", 5, "number of leading rows to print (0 = none)")
}
