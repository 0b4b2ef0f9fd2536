package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cfgpkg "github.com/KaramelBytes/cortexai-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set CortexAI configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(w, "No config loaded")
			return nil
		}
		format := outputFormat("yaml")
		if ok, err := renderData(w, format, cfg); ok {
			return err
		}
		values, err := configValues(cfg)
		if err != nil {
			return err
		}
		t := newTable(w)
		t.AppendHeader(table.Row{"Key", "Value"})
		for _, k := range cfgpkg.Keys() {
			t.AppendRow(table.Row{k, formatCell(values[k])})
		}
		renderTable(t, format)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Reload from the file alone so flag and env overrides are not persisted.
		c, err := cfgpkg.LoadFile(cfgFile)
		if err != nil {
			return err
		}
		if err := c.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// configValues flattens c into its yaml keys.
func configValues(c *cfgpkg.Global) (map[string]any, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
