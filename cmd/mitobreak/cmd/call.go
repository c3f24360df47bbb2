package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/mitobreak/internal/aligner"
	"github.com/dbsmedya/mitobreak/internal/alignment"
	"github.com/dbsmedya/mitobreak/internal/config"
	"github.com/dbsmedya/mitobreak/internal/logger"
	"github.com/dbsmedya/mitobreak/internal/psl"
	"github.com/dbsmedya/mitobreak/internal/reference"
	"github.com/dbsmedya/mitobreak/internal/samio"
)

var (
	callPSL1   string
	callPSL2   string
	callSAM    string
	callSample string
	callVCF    bool
)

var callCmd = &cobra.Command{
	Use:   "call <reference.fasta> <prefix>",
	Short: "Call breakpoints from existing alignments",
	Long: `Call runs breakpoint inference on alignments that were produced earlier,
either one PSL file per mate or a single SAM/BAM file against the doubled
reference. Without --psl1/--psl2/--sam the PSL files written by
find-breakpoints for <prefix> are used.

Examples:
  mitobreak call chrM.fa out/sample1
  mitobreak call chrM.fa out/sample1 --psl1 a.psl --psl2 b.psl
  mitobreak call chrM.fa out/sample1 --sam sample1.bam --vcf`,
	Args: cobra.ExactArgs(2),
	RunE: runCall,
}

func init() {
	callCmd.Flags().StringVar(&callPSL1, "psl1", "", "PSL alignments of mate 1")
	callCmd.Flags().StringVar(&callPSL2, "psl2", "", "PSL alignments of mate 2")
	callCmd.Flags().StringVar(&callSAM, "sam", "", "SAM or BAM alignments of both mates")
	callCmd.Flags().StringVar(&callSample, "sample", "",
		"Sample name used in the VCF and results database (default: prefix base name)")
	callCmd.Flags().BoolVar(&callVCF, "vcf", false, "Also write <prefix>.breakpoints.vcf")
	callCmd.MarkFlagsRequiredTogether("psl1", "psl2")
	callCmd.MarkFlagsMutuallyExclusive("psl1", "sam")
	callCmd.MarkFlagsMutuallyExclusive("psl2", "sam")

	rootCmd.AddCommand(callCmd)
}

// evidenceProvider picks the alignment source for call.
func evidenceProvider(cfg *config.Config, prefix, samPath, psl1, psl2 string) (alignment.Provider, error) {
	if samPath != "" {
		return samio.NewProvider(samPath), nil
	}
	if cfg.Processing.Format == config.FormatSAM {
		return nil, fmt.Errorf("processing.format is sam but no --sam file was given")
	}
	if psl1 == "" && psl2 == "" {
		paths := aligner.Paths{Prefix: prefix}
		psl1, psl2 = paths.PSL(alignment.Mate1), paths.PSL(alignment.Mate2)
	}
	return &psl.Provider{Mate1Path: psl1, Mate2Path: psl2, SkipHeader: cfg.Processing.SkipHeader}, nil
}

func runCall(cmd *cobra.Command, args []string) error {
	refPath, prefix := args[0], args[1]

	cfg, err := loadConfig(func(c *config.Config) {
		c.Reference.Path = refPath
		c.Output.Prefix = prefix
		if callVCF {
			c.Output.VCF = true
		}
		if callSAM != "" {
			c.Processing.Format = config.FormatSAM
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

	ctx, cancel := setupSignalHandler(cancelNotice(log))
	defer cancel()

	ref, err := reference.Load(refPath)
	if err != nil {
		return err
	}

	evidence, err := evidenceProvider(cfg, prefix, callSAM, callPSL1, callPSL2)
	if err != nil {
		return err
	}

	result, err := runSample(ctx, cfg, log, sampleRun{
		Sample:    sampleName(callSample, prefix),
		Prefix:    prefix,
		Reference: ref,
		Evidence:  evidence,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Breakpoint calling cancelled by user")
			return nil
		}
		return fmt.Errorf("breakpoint calling failed: %w", err)
	}

	return printResult(cmd.OutOrStdout(), cfg, prefix, result)
}
