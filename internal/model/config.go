package model

import "runtime"

// Config holds all runtime settings for annostat
type Config struct {
	Input        InputConfig        `yaml:"input" mapstructure:"input"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Analysis     AnalysisConfig     `yaml:"analysis" mapstructure:"analysis"`
	Charts       ChartsConfig       `yaml:"charts" mapstructure:"charts"`
	Municipality MunicipalityConfig `yaml:"municipality" mapstructure:"municipality"`
}

// InputConfig describes where annotation files live
type InputConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`
	Extension string `yaml:"extension" mapstructure:"extension"`
}

// OutputConfig describes what gets written and where
type OutputConfig struct {
	TablesDir    string `yaml:"tables_dir" mapstructure:"tables_dir"`
	ChartsDir    string `yaml:"charts_dir" mapstructure:"charts_dir"`
	SQLite       string `yaml:"sqlite" mapstructure:"sqlite"` // Optional database export path
	Charts       bool   `yaml:"charts" mapstructure:"charts"`
	StaticCharts bool   `yaml:"static_charts" mapstructure:"static_charts"`
	Verbose      bool   `yaml:"verbose" mapstructure:"verbose"`
}

// ConcurrencyConfig bounds parallel file parsing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// AnalysisConfig tunes the aggregates
type AnalysisConfig struct {
	TopN int `yaml:"top_n" mapstructure:"top_n"`
}

// ChartsConfig sets chart canvas size in pixels
type ChartsConfig struct {
	Width  int `yaml:"width" mapstructure:"width"`
	Height int `yaml:"height" mapstructure:"height"`
}

// MunicipalityConfig controls filename classification
type MunicipalityConfig struct {
	Unknown string `yaml:"unknown" mapstructure:"unknown"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Dir:       "data/inception",
			Extension: ".json",
		},
		Output: OutputConfig{
			TablesDir:    "results/statistics",
			ChartsDir:    "results/figures",
			Charts:       true,
			StaticCharts: true,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Analysis: AnalysisConfig{
			TopN: 10,
		},
		Charts: ChartsConfig{
			Width:  1200,
			Height: 600,
		},
		Municipality: MunicipalityConfig{
			Unknown: "unknown",
		},
	}
}
