package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cortexai-cli/internal/analysis"
	"github.com/KaramelBytes/cortexai-cli/internal/cleaner"
	"github.com/KaramelBytes/cortexai-cli/internal/loader"
	"github.com/KaramelBytes/cortexai-cli/internal/schema"
)

// Global configuration structure.
type Global struct {
	// Loader
	MaxFileSizeMB int `mapstructure:"max_file_size_mb" yaml:"max_file_size_mb"`
	SniffBytes    int `mapstructure:"sniff_bytes" yaml:"sniff_bytes"`

	// Schema detection thresholds
	NumericMinRatio  float64 `mapstructure:"numeric_min_ratio" yaml:"numeric_min_ratio"`
	DatetimeMinRatio float64 `mapstructure:"datetime_min_ratio" yaml:"datetime_min_ratio"`
	IDUniqueRatio    float64 `mapstructure:"id_unique_ratio" yaml:"id_unique_ratio"`
	TargetMaxClasses int     `mapstructure:"target_max_classes" yaml:"target_max_classes"`

	// Cleaning
	IQRMultiplier        float64 `mapstructure:"iqr_multiplier" yaml:"iqr_multiplier"`
	HighCardinalityLimit int     `mapstructure:"high_cardinality_limit" yaml:"high_cardinality_limit"`
	DropDuplicateRows    bool    `mapstructure:"drop_duplicate_rows" yaml:"drop_duplicate_rows"`

	// Analysis
	HighCorrThreshold float64 `mapstructure:"high_corr_threshold" yaml:"high_corr_threshold"`

	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

var defaults = map[string]any{
	"max_file_size_mb":       200,
	"sniff_bytes":            2048,
	"numeric_min_ratio":      0.95,
	"datetime_min_ratio":     0.5,
	"id_unique_ratio":        0.98,
	"target_max_classes":     20,
	"iqr_multiplier":         1.5,
	"high_cardinality_limit": 20,
	"drop_duplicate_rows":    false,
	"high_corr_threshold":    0.8,
	"output_dir":             "cortex_results",
	"log_level":              "info",
	"log_format":             "text",
}

// Keys returns every configuration key in a stable order.
func Keys() []string {
	return []string{
		"max_file_size_mb", "sniff_bytes",
		"numeric_min_ratio", "datetime_min_ratio", "id_unique_ratio", "target_max_classes",
		"iqr_multiplier", "high_cardinality_limit", "drop_duplicate_rows",
		"high_corr_threshold",
		"output_dir", "log_level", "log_format",
	}
}

// Default returns the configuration used when no file or env is present.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

func setDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// DefaultPath returns ~/.cortexai/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".cortexai", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.cortexai/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
// A missing config file is not an error; a malformed one is.
func Load(cfgFile string) (*Global, error) {
	return load(cfgFile, true)
}

// LoadFile is Load without the CORTEX_* environment overrides. Use it when
// the result is written back with Save.
func LoadFile(cfgFile string) (*Global, error) {
	return load(cfgFile, false)
}

func load(cfgFile string, withEnv bool) (*Global, error) {
	v := viper.New()
	if withEnv {
		v.SetEnvPrefix("CORTEX")
		v.AutomaticEnv()
	}
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".cortexai"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Set parses val for key and stores it on c. c is unchanged on error.
func (c *Global) Set(key, val string) error {
	val = strings.TrimSpace(val)
	setInt := func(dst *int, min int) error {
		i, err := strconv.Atoi(val)
		if err != nil || i < min {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		*dst = i
		return nil
	}
	setRatio := func(dst *float64) error {
		f, err := strconv.ParseFloat(val, 64)
		// Zero means unset to the option converters, so it is not accepted.
		if err != nil || f <= 0 || f > 1 {
			return fmt.Errorf("invalid ratio for %s: %v (want 0 < ratio <= 1)", key, val)
		}
		*dst = f
		return nil
	}
	switch key {
	case "max_file_size_mb":
		return setInt(&c.MaxFileSizeMB, 1)
	case "sniff_bytes":
		return setInt(&c.SniffBytes, 1)
	case "numeric_min_ratio":
		return setRatio(&c.NumericMinRatio)
	case "datetime_min_ratio":
		return setRatio(&c.DatetimeMinRatio)
	case "id_unique_ratio":
		return setRatio(&c.IDUniqueRatio)
	case "target_max_classes":
		return setInt(&c.TargetMaxClasses, 2)
	case "iqr_multiplier":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid float for iqr_multiplier: %v", val)
		}
		c.IQRMultiplier = f
	case "high_cardinality_limit":
		return setInt(&c.HighCardinalityLimit, 1)
	case "drop_duplicate_rows":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for drop_duplicate_rows: %v", val)
		}
		c.DropDuplicateRows = b
	case "high_corr_threshold":
		return setRatio(&c.HighCorrThreshold)
	case "output_dir":
		if val == "" {
			return errors.New("output_dir must not be empty")
		}
		c.OutputDir = val
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// LoaderOptions converts the loader settings.
func (c *Global) LoaderOptions() loader.Options {
	opt := loader.DefaultOptions()
	if c.MaxFileSizeMB > 0 {
		opt.MaxFileSize = int64(c.MaxFileSizeMB) << 20
	}
	if c.SniffBytes > 0 {
		opt.SniffBytes = c.SniffBytes
	}
	return opt
}

// SchemaOptions converts the detection thresholds.
func (c *Global) SchemaOptions() schema.Options {
	opt := schema.DefaultOptions()
	if c.NumericMinRatio > 0 {
		opt.NumericMinRatio = c.NumericMinRatio
	}
	if c.DatetimeMinRatio > 0 {
		opt.DatetimeMinRatio = c.DatetimeMinRatio
	}
	if c.IDUniqueRatio > 0 {
		opt.IDUniqueRatio = c.IDUniqueRatio
	}
	if c.TargetMaxClasses > 0 {
		opt.TargetMaxClasses = c.TargetMaxClasses
	}
	return opt
}

// CleanerOptions converts the cleaning settings.
func (c *Global) CleanerOptions() cleaner.Options {
	opt := cleaner.DefaultOptions()
	if c.IQRMultiplier > 0 {
		opt.IQRMultiplier = c.IQRMultiplier
	}
	if c.HighCardinalityLimit > 0 {
		opt.HighCardinalityLimit = c.HighCardinalityLimit
	}
	opt.DropDuplicateRows = c.DropDuplicateRows
	return opt
}

// AnalysisOptions converts the analysis settings.
func (c *Global) AnalysisOptions() analysis.Options {
	opt := analysis.DefaultOptions()
	if c.HighCorrThreshold > 0 {
		opt.HighCorrThreshold = c.HighCorrThreshold
	}
	if c.TargetMaxClasses > 0 {
		opt.ClassificationMaxClasses = c.TargetMaxClasses
	}
	return opt
}
