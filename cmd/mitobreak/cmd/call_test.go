package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gookit/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/mitobreak/internal/alignment"
	"github.com/dbsmedya/mitobreak/internal/config"
	"github.com/dbsmedya/mitobreak/internal/psl"
	"github.com/dbsmedya/mitobreak/internal/samio"
)

func TestCallCommandStructure(t *testing.T) {
	assert.Equal(t, "call <reference.fasta> <prefix>", callCmd.Use)
	assert.NotEmpty(t, callCmd.Short)
	assert.Contains(t, callCmd.Long, "Examples:")
	assert.NotNil(t, callCmd.RunE)

	for _, name := range []string{"psl1", "psl2", "sam", "sample", "vcf"} {
		assert.NotNil(t, callCmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestCall_EndToEnd(t *testing.T) {
	ref, prefix := writeFixture(t)

	out, err := executeCommand(t, "call", ref, prefix,
		"--config", missingConfig(t),
		"--log-level", "error",
		"--vcf",
		"--workers", "2",
	)
	require.NoError(t, err)

	table, err := os.ReadFile(prefix + ".breakpoints.txt")
	require.NoError(t, err)
	assert.Equal(t, "Start\tEnd\tCount\n41\t70\t2\n", string(table))

	vcf, err := os.ReadFile(prefix + ".breakpoints.vcf")
	require.NoError(t, err)
	assert.Contains(t, string(vcf), "SVTYPE=DEL")

	plain := color.ClearCode(out)
	assert.Contains(t, plain, "Breakpoint Calling Complete")
	assert.Contains(t, plain, "s1")
	assert.Contains(t, plain, "1 breakpoint(s) written")
}

func TestCall_MissingEvidence(t *testing.T) {
	ref, _ := writeFixture(t)
	prefix := filepath.Join(t.TempDir(), "absent")

	_, err := executeCommand(t, "call", ref, prefix, "--config", missingConfig(t), "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read alignment evidence")
}

func TestCall_RequiresTwoArgs(t *testing.T) {
	_, err := executeCommand(t, "call", "only-one")
	assert.Error(t, err)
}

func TestEvidenceProvider(t *testing.T) {
	cfg := config.DefaultConfig()

	p, err := evidenceProvider(cfg, "out/s1", "", "", "")
	require.NoError(t, err)
	require.IsType(t, &psl.Provider{}, p)
	assert.Equal(t, "out/s1."+alignment.Mate1.String()+".psl", p.(*psl.Provider).Mate1Path)
	assert.Equal(t, "out/s1.read_2.psl", p.(*psl.Provider).Mate2Path)
	assert.True(t, p.(*psl.Provider).SkipHeader)

	p, err = evidenceProvider(cfg, "out/s1", "", "a.psl", "b.psl")
	require.NoError(t, err)
	assert.Equal(t, "a.psl", p.(*psl.Provider).Mate1Path)
	assert.Equal(t, "b.psl", p.(*psl.Provider).Mate2Path)

	p, err = evidenceProvider(cfg, "out/s1", "s1.bam", "", "")
	require.NoError(t, err)
	assert.IsType(t, &samio.Provider{}, p)

	cfg.Processing.Format = config.FormatSAM
	_, err = evidenceProvider(cfg, "out/s1", "", "", "")
	assert.Error(t, err)
}
