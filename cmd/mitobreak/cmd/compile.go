package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/mitobreak/internal/config"
	"github.com/dbsmedya/mitobreak/internal/display"
	"github.com/dbsmedya/mitobreak/internal/logger"
	"github.com/dbsmedya/mitobreak/internal/report"
	"github.com/dbsmedya/mitobreak/internal/store"
)

var (
	compileFromDB  bool
	compileSamples []string
)

var compileCmd = &cobra.Command{
	Use:   "compile-breakpoint-results [list] <output>",
	Short: "Combine breakpoint tables of several samples into one matrix",
	Long: `Compile-breakpoint-results builds a breakpoint-by-sample support matrix.

The list file has one "<prefix>.breakpoints.txt\t<sample id>" line per sample.
With --from-db the calls are read from the results database instead; all
stored samples are used unless --samples is given.

Examples:
  mitobreak compile-breakpoint-results samples.txt matrix.tsv
  mitobreak compile-breakpoint-results --from-db --samples s1,s2 matrix.tsv`,
	Args: func(cmd *cobra.Command, args []string) error {
		if compileFromDB {
			return cobra.ExactArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().BoolVar(&compileFromDB, "from-db", false,
		"Read calls from the results database")
	compileCmd.Flags().StringSliceVar(&compileSamples, "samples", nil,
		"Samples to read with --from-db (default: all stored samples)")

	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(c *config.Config) {
		if compileFromDB {
			c.ResultsDB.Enabled = true
		}
	})
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	var matrix *report.Matrix
	var output string

	if compileFromDB {
		output = args[0]
		matrix, err = compileFromStore(cmd.Context(), cfg, log, compileSamples)
	} else {
		output = args[1]
		matrix, err = compileFromList(args[0])
	}
	if err != nil {
		return err
	}

	if err := report.WriteMatrixFile(output, matrix); err != nil {
		return err
	}

	log.Infow("Compiled breakpoint results",
		"samples", len(matrix.Samples()),
		"output", output,
	)
	cmd.Println(display.Pass("%d sample(s), %d breakpoint(s) written to %s",
		len(matrix.Samples()), len(matrix.Rows()), output))
	return nil
}

func compileFromList(listPath string) (*report.Matrix, error) {
	entries, err := report.ReadListFile(listPath)
	if err != nil {
		return nil, err
	}
	return report.CompileFiles(entries)
}

func compileFromStore(ctx context.Context, cfg *config.Config, log *logger.Logger, samples []string) (*report.Matrix, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s, mgr, err := store.Open(ctx, &cfg.ResultsDB, log)
	if err != nil {
		return nil, err
	}
	defer mgr.Close()

	if len(samples) == 0 {
		samples, err = s.ListSamples(ctx)
		if err != nil {
			return nil, err
		}
	}
	return report.CompileLoaded(ctx, s, samples)
}
