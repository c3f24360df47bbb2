package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/mitobreak/internal/config"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile   string
	logLevel  string
	logFormat string
	minLength int
	workers   int
	blatPath  string
)

var rootCmd = &cobra.Command{
	Use:   "mitobreak",
	Short: "Mitochondrial deletion breakpoint caller",
	Long: `Infer large mitochondrial deletions from paired-end split-read alignments
against a circular reference.

Features:
  - Split-read breakpoint extraction with minimum anchor length
  - Left-alignment inside tandem repeats and across the origin
  - Cross-mate reconciliation (nested collapse, conflict filter)
  - Global merge of repeat-equivalent breakpoints
  - TSV, VCF and MySQL result sinks`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "mitobreak.yaml",
		"Path to configuration file (defaults are used when it does not exist)")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	rootCmd.PersistentFlags().IntVarP(&minLength, "length", "l", 0,
		"Override minimum flanking alignment length for breakpoint evidence")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0,
		"Override number of reconciliation workers (0 = one per CPU)")
	rootCmd.PersistentFlags().StringVar(&blatPath, "blat", "",
		"Override path to the blat executable")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() config.Overrides {
	return config.Overrides{
		LogLevel:           logLevel,
		LogFormat:          logFormat,
		MinAlignmentLength: minLength,
		Workers:            workers,
		BlatPath:           blatPath,
	}
}
