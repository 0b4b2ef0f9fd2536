package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cortexai-cli/internal/analysis"
	"github.com/KaramelBytes/cortexai-cli/internal/pipeline"
)

var (
	anaOutputPath string
	anaSampleRows int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.csv>",
	Short: "Clean a CSV and produce an exploratory summary with a quality score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := pipelineOptions()
		if cmd.Flags().Changed("sample-rows") {
			opt.Analysis.SampleRows = anaSampleRows
		}
		res, err := pipeline.NewRunner(opt, logger).Run(args[0])
		if err != nil {
			return err
		}
		md := res.EDA.Markdown()

		if anaOutputPath != "" {
			if err := os.WriteFile(anaOutputPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}

		w := cmd.OutOrStdout()
		format := outputFormat("markdown")
		if ok, err := renderData(w, format, res.EDA); ok {
			return err
		}
		if format == "markdown" {
			_, err := fmt.Fprintln(w, md)
			return err
		}
		printColumnSummaries(w, res.EDA)
		fmt.Fprintf(w, "Learnability score: %d/100 (%s)\n", res.Quality.Score, res.Quality.Verdict)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write analysis (Markdown)")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows to include")
}

func printColumnSummaries(w io.Writer, rep *analysis.Report) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Column", "Kind", "Non-null", "Missing", "Unique", "Mean", "Std", "Top"})
	for _, c := range rep.Cols {
		var mean, std any
		if c.Numeric != nil {
			mean, std = c.Numeric.Mean, c.Numeric.Std
		}
		top := ""
		if len(c.TopValues) > 0 {
			top = fmt.Sprintf("%s (%d)", c.TopValues[0].Value, c.TopValues[0].Count)
		}
		t.AppendRow(table.Row{c.Name, string(c.Kind), c.NonNull, c.Missing, c.Unique, formatCell(mean), formatCell(std), top})
	}
	t.Render()
	if rep.Target != nil {
		fmt.Fprintf(w, "Target: %s (%s)\n", rep.Target.Column, rep.Target.Type)
	}
}
