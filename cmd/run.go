package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cortexai-cli/internal/pipeline"
)

var runOutputDir string

var runCmd = &cobra.Command{
	Use:   "run <file.csv>",
	Short: "Run the whole pipeline and write every artifact to disk",
	Long: `Run loads the CSV, detects its schema, cleans it and analyzes the result.
Artifacts (cleaned.csv, schema.yaml, cleaning_report.json, eda.md and
metadata.json) are written to <output-dir>/<run-id>/.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := pipeline.NewRunner(pipelineOptions(), logger).Run(args[0])
		if err != nil {
			return err
		}
		base := runOutputDir
		if base == "" {
			base = cfg.OutputDir
		}
		dir := filepath.Join(base, res.RunID)
		paths, err := res.WriteArtifacts(dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %d artifacts to %s\n", len(paths), dir)

		w := cmd.OutOrStdout()
		format := outputFormat("table")
		if ok, err := renderData(w, format, res.Manifest()); ok {
			return err
		}
		target := res.Schema.Target
		if target == "" {
			target = "(none)"
		}
		t := newTable(w)
		t.AppendHeader(table.Row{"Property", "Value"})
		t.AppendRows([]table.Row{
			{"Run ID", res.RunID},
			{"Source", baseName(res.Metadata.Path)},
			{"Rows", fmt.Sprintf("%d -> %d", res.Cleaning.RowsBefore, res.Cleaning.RowsAfter)},
			{"Columns", fmt.Sprintf("%d -> %d", res.Cleaning.ColumnsBefore, res.Cleaning.ColumnsAfter)},
			{"Target", target},
			{"Cleaning actions", len(res.Cleaning.Actions)},
			{"Quality", fmt.Sprintf("%d/100 (%s)", res.Quality.Score, res.Quality.Verdict)},
			{"Duration", res.Duration().Round(time.Millisecond).String()},
			{"Output", dir},
		})
		renderTable(t, format)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runOutputDir, "output-dir", "o", "", "base directory for run artifacts (default from config output_dir)")
}
