package cmd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignedBasesCommandStructure(t *testing.T) {
	assert.Equal(t, "get-aligned-bases <prefix> <reference.fasta>", alignedBasesCmd.Use)
	assert.NotEmpty(t, alignedBasesCmd.Short)
	assert.Contains(t, alignedBasesCmd.Long, "Example:")
}

func TestAlignedBases_EndToEnd(t *testing.T) {
	ref, prefix := writeFixture(t)

	out, err := executeCommand(t, "get-aligned-bases", prefix, ref, "--config", missingConfig(t))
	require.NoError(t, err)

	// Both split reads cover 1..40 and 71..100.
	assert.Equal(t, prefix+"\t70\n", out)

	written, err := os.ReadFile(prefix + ".aligned_bases.txt")
	require.NoError(t, err)
	assert.Equal(t, prefix+"\t70\n", string(written))
}
