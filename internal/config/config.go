// Package config loads the run configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/molonc/treealign/internal/runtime"
)

// Config is the full run configuration.
type Config struct {
	Thresholds Thresholds `mapstructure:"thresholds"`
	Assigner   Assigner   `mapstructure:"assigner"`
	Inputs     Inputs     `mapstructure:"inputs"`
	Redis      Redis      `mapstructure:"redis"`

	Diagnostics bool   `mapstructure:"diagnostics"`
	LogLevel    string `mapstructure:"log_level"`
}

// Thresholds controls the traversal cutoffs.
type Thresholds struct {
	MinCellCountExpr int     `mapstructure:"min_cell_count_expr"`
	MinCellCountCNV  int     `mapstructure:"min_cell_count_cnv"`
	MinGeneDiff      int     `mapstructure:"min_gene_diff"`
	MinSNPDiff       int     `mapstructure:"min_snp_diff"`
	LevelCutoff      int     `mapstructure:"level_cutoff"`
	MinRecordFreq    float64 `mapstructure:"min_record_freq"`
	MinProceedFreq   float64 `mapstructure:"min_proceed_freq"`
	Repeat           int     `mapstructure:"repeat"`
}

// Assigner names the external inference command.
type Assigner struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// Inputs holds the paths of the tree and profile matrices. Matrix paths
// are optional; a missing path disables its track. Paths ending in .gz
// are read as gzipped CSV.
type Inputs struct {
	Tree      string `mapstructure:"tree"`
	Expr      string `mapstructure:"expr"`
	CNV       string `mapstructure:"cnv"`
	HSCN      string `mapstructure:"hscn"`
	SNVAllele string `mapstructure:"snv_allele"`
	SNV       string `mapstructure:"snv"`
}

// Redis configures the optional result store. An empty Addr keeps results
// in memory only.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Default returns the configuration with all thresholds at their
// standard values.
func Default() *Config {
	return &Config{
		Thresholds: Thresholds{
			MinCellCountExpr: runtime.DefaultMinCellCountExpr,
			MinCellCountCNV:  runtime.DefaultMinCellCountCNV,
			MinGeneDiff:      runtime.DefaultMinGeneDiff,
			MinSNPDiff:       runtime.DefaultMinSNPDiff,
			LevelCutoff:      runtime.DefaultLevelCutoff,
			MinRecordFreq:    runtime.DefaultMinRecordFreq,
			MinProceedFreq:   runtime.DefaultMinProceedFreq,
			Repeat:           runtime.DefaultRepeat,
		},
		LogLevel: "info",
	}
}

// Load reads a YAML file and merges it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse merges YAML content over the defaults.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Thresholds.MinRecordFreq < 0 || c.Thresholds.MinRecordFreq > 1 {
		return fmt.Errorf("min_record_freq must be in [0, 1], got %v", c.Thresholds.MinRecordFreq)
	}
	if c.Thresholds.MinProceedFreq < 0 || c.Thresholds.MinProceedFreq > 1 {
		return fmt.Errorf("min_proceed_freq must be in [0, 1], got %v", c.Thresholds.MinProceedFreq)
	}
	if c.Thresholds.LevelCutoff < 0 {
		return fmt.Errorf("level_cutoff must not be negative, got %d", c.Thresholds.LevelCutoff)
	}
	if c.Thresholds.Repeat < 1 {
		return fmt.Errorf("repeat must be at least 1, got %d", c.Thresholds.Repeat)
	}
	return nil
}
