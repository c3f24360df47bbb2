package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and returns its output.
// Flag values are restored to their defaults afterwards.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if strings.HasSuffix(f.Value.Type(), "Slice") {
			return
		}
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// testReferenceSeq is a 100 bp sequence whose (40, 71) junction needs no
// left shift.
func testReferenceSeq() string {
	const bases = "ACGT"
	seq := make([]byte, 100)
	x := uint32(2463534242)
	for i := range seq {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		seq[i] = bases[x%4]
	}
	seq[39] = 'A'
	seq[69] = 'C'
	return string(seq)
}

const pslHeader = `psLayout version 3

match	mis- 	rep. 	N's	Q gap	Q gap	T gap	T gap	strand	Q        	Q   	Q    	Q  	T        	T   	T    	T  	block	blockSizes 	qStarts	 tStarts
     	match	match	   	count	bases	count	bases	      	name     	size	start	end	name     	size	start	end	count
---------------------------------------------------------------------------------------------------------------------------------------------------------------
`

// splitRow is a read whose 40 and 30 base blocks join reference
// positions 40 and 71.
func splitRow(query string) string {
	return fmt.Sprintf("70\t0\t0\t0\t0\t0\t1\t30\t+\t%s\t70\t0\t70\tchrM\t200\t0\t100\t2\t40,30,\t0,40,\t0,70,", query)
}

// writeFixture writes a reference and both mate PSL files and returns the
// reference path and the output prefix.
func writeFixture(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	ref := filepath.Join(dir, "chrM.fa")
	require.NoError(t, os.WriteFile(ref, []byte(">chrM\n"+testReferenceSeq()+"\n"), 0o644))

	prefix := filepath.Join(dir, "s1")
	mate1 := pslHeader + splitRow("r1") + "\n" + splitRow("r2") + "\n"
	require.NoError(t, os.WriteFile(prefix+".read_1.psl", []byte(mate1), 0o644))
	require.NoError(t, os.WriteFile(prefix+".read_2.psl", []byte(pslHeader), 0o644))

	return ref, prefix
}

// missingConfig returns a config path that does not exist so defaults apply.
func missingConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "none.yaml")
}
