package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cortexai-cli/internal/loader"
	"github.com/KaramelBytes/cortexai-cli/internal/pipeline"
)

const irisCSV = "Id,Width,Species\n1,3.0,a\n2,NaN,b\n3,5.0,a\n"

// resetFlags restores every flag to its default. Cobra keeps flag state
// between Execute calls on the same command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execRoot executes the root command with args and returns stdout and stderr.
func execRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// isolate points HOME at a temp dir so no user config is read, and returns a
// CSV path inside it.
func isolate(t *testing.T, body string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := filepath.Join(home, "iris.csv")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestCLI_LoadJSON(t *testing.T) {
	p := isolate(t, irisCSV)
	out, _, err := execRoot(t, "load", p, "--format", "json")
	require.NoError(t, err)

	var meta loader.Metadata
	require.NoError(t, json.Unmarshal([]byte(out), &meta))
	assert.Equal(t, 3, meta.Rows)
	assert.Equal(t, 3, meta.Columns)
	assert.Equal(t, "utf-8", meta.Encoding)
	assert.Equal(t, ",", meta.Delimiter)
}

func TestCLI_LoadTableShowsHead(t *testing.T) {
	p := isolate(t, irisCSV)
	out, _, err := execRoot(t, "load", p, "--head", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Encoding")
	assert.Contains(t, out, "utf-8")
	assert.Contains(t, out, "Species")
	assert.Contains(t, out, "Width")
	assert.NotContains(t, out, "SPECIES")
}

func TestNewTableKeepsHeaderCase(t *testing.T) {
	var buf bytes.Buffer
	tw := newTable(&buf)
	tw.AppendHeader(table.Row{"PatientID", "Species"})
	tw.AppendRow(table.Row{1, "a"})
	tw.Render()
	assert.Contains(t, buf.String(), "PatientID")
	assert.Contains(t, buf.String(), "Species")
}

func TestCLI_MaxSizeFlagOverridesConfig(t *testing.T) {
	p := isolate(t, "v\n"+strings.Repeat("123456789\n", 120_000))
	_, _, err := execRoot(t, "load", p, "--max-size-mb", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, loader.ErrFileTooLarge)

	_, _, err = execRoot(t, "load", p, "--head", "0")
	require.NoError(t, err)
}

func TestCLI_LoadMissingFile(t *testing.T) {
	isolate(t, irisCSV)
	_, _, err := execRoot(t, "load", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, loader.ErrFileNotFound)
}

func TestCLI_LoadRejectsWrongExtension(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := filepath.Join(home, "data.txt")
	require.NoError(t, os.WriteFile(p, []byte(irisCSV), 0o644))

	_, _, err := execRoot(t, "load", p)
	assert.ErrorIs(t, err, loader.ErrInvalidFileType)
}

func TestCLI_SchemaYAML(t *testing.T) {
	p := isolate(t, irisCSV)
	out, _, err := execRoot(t, "schema", p, "-f", "yaml")
	require.NoError(t, err)

	var got struct {
		Columns     []string `yaml:"columns"`
		Identifiers []string `yaml:"id_columns"`
		Target      string   `yaml:"target"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"Id", "Width", "Species"}, got.Columns)
	assert.Equal(t, []string{"Id"}, got.Identifiers)
	assert.Equal(t, "Species", got.Target)
}

func TestCLI_CleanWritesCSV(t *testing.T) {
	p := isolate(t, irisCSV)
	dst := filepath.Join(t.TempDir(), "clean.csv")
	out, errOut, err := execRoot(t, "clean", p, "-o", dst)
	require.NoError(t, err)

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "Width,Species\n3,a\n4,b\n5,a\n", string(b))
	assert.Contains(t, errOut, "Wrote cleaned data")
	assert.Contains(t, out, "drop")
	assert.Contains(t, out, "impute")
}

func TestCLI_CleanMarkdown(t *testing.T) {
	p := isolate(t, irisCSV)
	out, _, err := execRoot(t, "clean", p, "--format", "md")
	require.NoError(t, err)
	assert.Contains(t, out, "[CLEANING SUMMARY]")
	assert.Contains(t, out, "Rows: 3 -> 3")
	assert.Contains(t, out, "Columns: 3 -> 2")
}

func TestCLI_AnalyzeDefaultsToMarkdown(t *testing.T) {
	p := isolate(t, irisCSV)
	out, _, err := execRoot(t, "analyze", p)
	require.NoError(t, err)
	assert.Contains(t, out, "[DATASET SUMMARY]")
	assert.Contains(t, out, "[QUALITY]")
	assert.Contains(t, out, "Learnability score:")
}

func TestCLI_AnalyzeWritesFile(t *testing.T) {
	p := isolate(t, irisCSV)
	dst := filepath.Join(t.TempDir(), "eda.md")
	out, _, err := execRoot(t, "analyze", p, "-o", dst)
	require.NoError(t, err)
	assert.Empty(t, out)

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[TARGET]")
}

func TestCLI_RunWritesArtifacts(t *testing.T) {
	p := isolate(t, irisCSV)
	base := t.TempDir()
	out, _, err := execRoot(t, "run", p, "--output-dir", base, "-f", "json")
	require.NoError(t, err)

	var m pipeline.Manifest
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	require.Len(t, m.RunID, 36)
	assert.Equal(t, "Species", m.Target)
	assert.Equal(t, 3, m.RowsOut)
	assert.Equal(t, 2, m.ColumnsOut)

	for _, name := range m.Artifacts {
		assert.FileExists(t, filepath.Join(base, m.RunID, name))
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	isolate(t, irisCSV)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	_, _, err := execRoot(t, "--config", cfgPath, "config", "set", "iqr_multiplier", "3")
	require.NoError(t, err)
	_, _, err = execRoot(t, "--config", cfgPath, "config", "set", "log_level", "loud")
	require.Error(t, err)

	out, _, err := execRoot(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got["iqr_multiplier"])
	assert.Equal(t, "info", got["log_level"])

	out, _, err = execRoot(t, "--config", cfgPath, "config", "show", "-f", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "high_corr_threshold")
}

func TestCLI_ConfigSetDoesNotPersistFlagOverrides(t *testing.T) {
	isolate(t, irisCSV)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	_, _, err := execRoot(t, "--config", cfgPath, "--log-level", "debug", "config", "set", "sniff_bytes", "4096")
	require.NoError(t, err)

	b, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "sniff_bytes: 4096")
	assert.Contains(t, string(b), "log_level: info")
}

func TestCLI_ConfigSetDoesNotPersistEnv(t *testing.T) {
	isolate(t, irisCSV)
	t.Setenv("CORTEX_LOG_FORMAT", "json")
	t.Setenv("CORTEX_HIGH_CORR_THRESHOLD", "0.5")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	_, _, err := execRoot(t, "--config", cfgPath, "config", "set", "sniff_bytes", "4096")
	require.NoError(t, err)

	b, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "sniff_bytes: 4096")
	assert.Contains(t, string(b), "log_format: text")
	assert.Contains(t, string(b), "high_corr_threshold: 0.8")
}

func TestCLI_RejectsUnknownFormat(t *testing.T) {
	p := isolate(t, irisCSV)
	_, _, err := execRoot(t, "load", p, "-f", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported --format")
}

func TestCLI_JSONLogsGoToStderr(t *testing.T) {
	p := isolate(t, irisCSV)
	out, errOut, err := execRoot(t, "schema", p, "-f", "json", "--log-format", "json", "--log-level", "debug")
	require.NoError(t, err)

	var s map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Contains(t, errOut, `"component":"schema"`)
}
