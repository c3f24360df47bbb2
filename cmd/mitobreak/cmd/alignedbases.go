package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/mitobreak/internal/config"
	"github.com/dbsmedya/mitobreak/internal/coverage"
	"github.com/dbsmedya/mitobreak/internal/reference"
)

var alignedBasesCmd = &cobra.Command{
	Use:   "get-aligned-bases <prefix> <reference.fasta>",
	Short: "Count reference bases covered by the aligned reads",
	Long: `Get-aligned-bases reads <prefix>.read_1.psl and <prefix>.read_2.psl and
counts the reference positions covered by at least one alignment block,
folding the doubled reference back onto the circle. The result is written
to <prefix>.aligned_bases.txt.

Example:
  mitobreak get-aligned-bases out/sample1 chrM.fa`,
	Args: cobra.ExactArgs(2),
	RunE: runAlignedBases,
}

func init() {
	rootCmd.AddCommand(alignedBasesCmd)
}

func runAlignedBases(cmd *cobra.Command, args []string) error {
	prefix, refPath := args[0], args[1]

	cfg, err := loadConfig(func(c *config.Config) {
		c.Reference.Path = refPath
	})
	if err != nil {
		return err
	}

	ref, err := reference.Load(refPath)
	if err != nil {
		return err
	}

	count, err := coverage.FromPrefix(prefix, ref.Len(), cfg.Processing.SkipHeader)
	if err != nil {
		return fmt.Errorf("failed to count aligned bases: %w", err)
	}

	if err := coverage.WriteFile(prefix, count); err != nil {
		return err
	}
	return coverage.Write(cmd.OutOrStdout(), prefix, count)
}
