package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/cortexai-cli/internal/config"
	"github.com/KaramelBytes/cortexai-cli/internal/logging"
	"github.com/KaramelBytes/cortexai-cli/internal/pipeline"
)

var (
	// Global flags
	cfgFile       string
	flagLogLevel  string
	flagLogFormat string
	flagMaxSizeMB int
	flagFormat    string

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cortex",
	Short: "CortexAI CLI: load, profile and clean CSV datasets for machine learning",
	Long: `CortexAI reads a CSV file, detects column types, identifier columns and the
prediction target, cleans the data and reports how promising it looks for
supervised learning.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Assigned here: loadConfig reads rootCmd's flags.
	rootCmd.PersistentPreRunE = loadConfig
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.cortexai/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagMaxSizeMB, "max-size-mb", 0, "maximum CSV size in MB (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "", "output format: table|json|yaml|markdown")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") {
		if err := cfg.Set("log_level", flagLogLevel); err != nil {
			return err
		}
	}
	if f.Changed("log-format") {
		if err := cfg.Set("log_format", flagLogFormat); err != nil {
			return err
		}
	}
	if f.Changed("max-size-mb") {
		if err := cfg.Set("max_file_size_mb", fmt.Sprint(flagMaxSizeMB)); err != nil {
			return err
		}
	}
	switch strings.ToLower(flagFormat) {
	case "", "table", "json", "yaml", "markdown", "md":
	default:
		return fmt.Errorf("unsupported --format: %s (use table, json, yaml or markdown)", flagFormat)
	}
	logger = logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	return nil
}

func pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Loader:   cfg.LoaderOptions(),
		Schema:   cfg.SchemaOptions(),
		Cleaner:  cfg.CleanerOptions(),
		Analysis: cfg.AnalysisOptions(),
	}
}

func outputFormat(def string) string {
	f := strings.ToLower(flagFormat)
	switch f {
	case "":
		return def
	case "md":
		return "markdown"
	}
	return f
}

func baseName(path string) string { return filepath.Base(path) }
