package cmd

import (
	"bytes"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cortexai-cli/internal/cleaner"
	"github.com/KaramelBytes/cortexai-cli/internal/loader"
	"github.com/KaramelBytes/cortexai-cli/internal/schema"
	"github.com/KaramelBytes/cortexai-cli/internal/utils"
)

var (
	cleanOutputPath string
	cleanDropDups   bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file.csv>",
	Short: "Clean a CSV and report every change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tb, _, err := loader.New(cfg.LoaderOptions(), logger).Load(args[0])
		if err != nil {
			return err
		}
		s := schema.NewDetector(cfg.SchemaOptions(), logger).Detect(tb)
		opt := cfg.CleanerOptions()
		if cmd.Flags().Changed("drop-duplicates") {
			opt.DropDuplicateRows = cleanDropDups
		}
		cleaned, rep := cleaner.New(opt, logger).Clean(tb, s)

		if cleanOutputPath != "" {
			var buf bytes.Buffer
			if err := cleaned.WriteCSV(&buf, ','); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(cleanOutputPath, buf.Bytes()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote cleaned data to %s\n", cleanOutputPath)
		}

		w := cmd.OutOrStdout()
		format := outputFormat("table")
		if ok, err := renderData(w, format, rep); ok {
			return err
		}
		if format == "markdown" {
			_, err := fmt.Fprint(w, rep.Markdown())
			return err
		}
		fmt.Fprintf(w, "Rows: %d -> %d, columns: %d -> %d\n", rep.RowsBefore, rep.RowsAfter, rep.ColumnsBefore, rep.ColumnsAfter)
		if len(rep.Actions) == 0 {
			fmt.Fprintln(w, "No cleaning was needed.")
			return nil
		}
		t := newTable(w)
		t.AppendHeader(table.Row{"#", "Action", "Column", "Count", "Detail"})
		for i, a := range rep.Actions {
			t.AppendRow(table.Row{i + 1, string(a.Type), a.Column, a.Count, actionDetail(a)})
		}
		renderTable(t, format)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanOutputPath, "output", "o", "", "optional path to write the cleaned CSV")
	cleanCmd.Flags().BoolVar(&cleanDropDups, "drop-duplicates", false, "remove exact duplicate rows (overrides config)")
}

func actionDetail(a cleaner.Action) string {
	switch v := a.Value.(type) {
	case cleaner.Bounds:
		return fmt.Sprintf("[%.4g, %.4g]", v.Lower, v.Upper)
	default:
		return formatCell(v)
	}
}
