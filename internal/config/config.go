// Package config provides configuration structures and loading for mitobreak.
package config

import "runtime"

// Config represents the complete application configuration.
type Config struct {
	Reference  ReferenceConfig  `yaml:"reference" mapstructure:"reference"`
	Processing ProcessingConfig `yaml:"processing" mapstructure:"processing"`
	Aligner    AlignerConfig    `yaml:"aligner" mapstructure:"aligner"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	ResultsDB  ResultsDBConfig  `yaml:"results_db" mapstructure:"results_db"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// ReferenceConfig points at the single-contig reference FASTA.
type ReferenceConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ProcessingConfig represents breakpoint inference settings.
type ProcessingConfig struct {
	MinAlignmentLength int    `yaml:"min_alignment_length" mapstructure:"min_alignment_length"`
	Workers            int    `yaml:"workers" mapstructure:"workers"`         // 0 = one per CPU
	Format             string `yaml:"format" mapstructure:"format"`           // psl or sam
	SkipHeader         bool   `yaml:"skip_header" mapstructure:"skip_header"` // PSL files carry the 5-line BLAT header
}

// AlignerConfig represents the external aligner used by find-breakpoints.
type AlignerConfig struct {
	BlatPath         string `yaml:"blat_path" mapstructure:"blat_path"`
	KeepIntermediate bool   `yaml:"keep_intermediate" mapstructure:"keep_intermediate"`
}

// OutputConfig represents report settings.
type OutputConfig struct {
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
	VCF    bool   `yaml:"vcf" mapstructure:"vcf"`
}

// ResultsDBConfig represents the optional MySQL database that breakpoint
// calls are published to.
type ResultsDBConfig struct {
	Enabled            bool   `yaml:"enabled" mapstructure:"enabled"`
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	Table              string `yaml:"table" mapstructure:"table"`
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// Supported evidence formats.
const (
	FormatPSL = "psl"
	FormatSAM = "sam"
)

// DefaultMinAlignmentLength is the minimum flanking block length trusted as
// junction evidence.
const DefaultMinAlignmentLength = 25

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Processing: ProcessingConfig{
			MinAlignmentLength: DefaultMinAlignmentLength,
			Workers:            0,
			Format:             FormatPSL,
			SkipHeader:         true,
		},
		Aligner: AlignerConfig{
			BlatPath:         "blat",
			KeepIntermediate: false,
		},
		ResultsDB: ResultsDBConfig{
			Enabled:            false,
			Port:               3306,
			TLS:                "preferred",
			Table:              "breakpoint_calls",
			MaxConnections:     4,
			MaxIdleConnections: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// EffectiveWorkers returns the worker count used for per-query reconciliation.
func (p ProcessingConfig) EffectiveWorkers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.NumCPU()
}
