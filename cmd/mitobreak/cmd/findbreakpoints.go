package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/mitobreak/internal/aligner"
	"github.com/dbsmedya/mitobreak/internal/config"
	"github.com/dbsmedya/mitobreak/internal/logger"
	"github.com/dbsmedya/mitobreak/internal/psl"
	"github.com/dbsmedya/mitobreak/internal/reference"
)

var (
	findSample           string
	findVCF              bool
	findKeepIntermediate bool
)

var findBreakpointsCmd = &cobra.Command{
	Use:   "find-breakpoints <read1.fastq> <read2.fastq> <reference.fasta> <prefix>",
	Short: "Align paired reads and call deletion breakpoints",
	Long: `Find-breakpoints aligns both mates against the doubled reference with
BLAT and calls deletion breakpoints from the split reads.

Steps:
  1. Convert each FASTQ file to FASTA
  2. Write the doubled reference and align each mate with BLAT
  3. Reconcile the breakpoints of every read pair
  4. Merge repeat-equivalent breakpoints and write <prefix>.breakpoints.txt

Example:
  mitobreak find-breakpoints r1.fastq r2.fastq chrM.fa out/sample1`,
	Args: cobra.ExactArgs(4),
	RunE: runFindBreakpoints,
}

func init() {
	findBreakpointsCmd.Flags().StringVar(&findSample, "sample", "",
		"Sample name used in the VCF and results database (default: prefix base name)")
	findBreakpointsCmd.Flags().BoolVar(&findVCF, "vcf", false,
		"Also write <prefix>.breakpoints.vcf")
	findBreakpointsCmd.Flags().BoolVar(&findKeepIntermediate, "keep-intermediate", false,
		"Keep the converted FASTA files")

	rootCmd.AddCommand(findBreakpointsCmd)
}

func runFindBreakpoints(cmd *cobra.Command, args []string) error {
	read1, read2, refPath, prefix := args[0], args[1], args[2], args[3]

	cfg, err := loadConfig(func(c *config.Config) {
		c.Reference.Path = refPath
		c.Output.Prefix = prefix
		if findVCF {
			c.Output.VCF = true
		}
		if findKeepIntermediate {
			c.Aligner.KeepIntermediate = true
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

	sample := sampleName(findSample, prefix)
	log.Infow("Starting breakpoint search",
		"sample", sample,
		"reference", ref.Name,
		"read1", read1,
		"read2", read2,
	)

	job := &aligner.Job{
		Read1:            read1,
		Read2:            read2,
		Reference:        ref,
		Paths:            aligner.Paths{Prefix: prefix},
		Runner:           &aligner.BLAT{Path: cfg.Aligner.BlatPath},
		KeepIntermediate: cfg.Aligner.KeepIntermediate,
		Logger:           log,
	}
	psl1, psl2, err := job.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Alignment cancelled by user")
			return nil
		}
		return fmt.Errorf("alignment failed: %w", err)
	}

	evidence := &psl.Provider{Mate1Path: psl1, Mate2Path: psl2, SkipHeader: cfg.Processing.SkipHeader}
	result, err := runSample(ctx, cfg, log, sampleRun{
		Sample:    sample,
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
