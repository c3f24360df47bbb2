package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dbsmedya/mitobreak/internal/config"
	"github.com/dbsmedya/mitobreak/internal/display"
	"github.com/dbsmedya/mitobreak/internal/reference"
	"github.com/dbsmedya/mitobreak/internal/store"
)

var validatePrint bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and run preflight checks",
	Long: `Validate checks the configuration file and the resources it points at.

Checks performed:
  - Configuration syntax and required fields
  - Reference FASTA is readable and holds one sequence
  - BLAT executable is on the PATH
  - Results database connectivity and schema (when enabled)

Example:
  mitobreak validate --config mitobreak.yaml --print`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validatePrint, "print", false,
		"Print the effective configuration as YAML")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()
	out := cmd.OutOrStdout()

	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyOverrides(GetCLIOverrides())

	fmt.Fprintf(out, "\n%s\n", display.Heading("Configuration Validation"))
	fmt.Fprintf(out, "Config file: %s\n\n", configFile)

	if validatePrint {
		printed := *cfg
		if printed.ResultsDB.Password != "" {
			printed.ResultsDB.Password = "********"
		}
		data, err := yaml.Marshal(&printed)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		fmt.Fprintf(out, "%s\n", data)
	}

	hasErrors := false

	if err := cfg.Validate(); err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, v := range verrs {
				fmt.Fprintln(out, display.Fail("%s", v.Error()))
			}
		} else {
			fmt.Fprintln(out, display.Fail("%v", err))
		}
		hasErrors = true
	} else {
		fmt.Fprintln(out, display.Pass("Configuration is valid"))
	}

	if cfg.Reference.Path != "" {
		ref, err := reference.Load(cfg.Reference.Path)
		if err != nil {
			fmt.Fprintln(out, display.Fail("Reference: %v", err))
			hasErrors = true
		} else {
			fmt.Fprintln(out, display.Pass("Reference %s: %d bp", ref.Name, ref.Len()))
		}
	} else {
		fmt.Fprintln(out, display.Warn("No reference configured; commands take it as an argument"))
	}

	if path, err := exec.LookPath(cfg.Aligner.BlatPath); err != nil {
		fmt.Fprintln(out, display.Warn("BLAT not found (%s); only 'call' can be used", cfg.Aligner.BlatPath))
	} else {
		fmt.Fprintln(out, display.Pass("BLAT: %s", path))
	}

	if cfg.ResultsDB.Enabled && !hasErrors {
		if err := checkResultsDB(cmd.Context(), cfg); err != nil {
			fmt.Fprintln(out, display.Fail("Results database: %v", err))
			hasErrors = true
		} else {
			fmt.Fprintln(out, display.Pass("Results database %s reachable, table %s ready",
				cfg.ResultsDB.Database, cfg.ResultsDB.Table))
		}
	}

	fmt.Fprintln(out)
	if hasErrors {
		return fmt.Errorf("validation failed")
	}
	fmt.Fprintln(out, display.Heading("Validation Complete"))
	return nil
}

func checkResultsDB(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, mgr, err := store.Open(ctx, &cfg.ResultsDB, nil)
	if err != nil {
		return err
	}
	defer mgr.Close()
	return mgr.Ping(ctx)
}
