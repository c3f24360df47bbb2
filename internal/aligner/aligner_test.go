package aligner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/mitobreak/internal/alignment"
	"github.com/dbsmedya/mitobreak/internal/reference"
)

const fastq = "@r1/1\nACGTACGT\n+\nIIIIIIII\n@r2/1\nTTTTGGGG\n+\nIIIIIIII\n"

func TestFASTQToFASTA(t *testing.T) {
	var buf bytes.Buffer
	n, err := FASTQToFASTA(strings.NewReader(fastq), &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "> @r1/1\nACGTACGT\n> @r2/1\nTTTTGGGG\n", buf.String())
}

func TestPaths(t *testing.T) {
	p := Paths{Prefix: "out/s1"}
	assert.Equal(t, "out/s1.read_1.fasta", p.FASTA(alignment.Mate1))
	assert.Equal(t, "out/s1.read_2.psl", p.PSL(alignment.Mate2))
	assert.Equal(t, "out/s1.read_1.blat.out", p.BlatOut(alignment.Mate1))
	assert.Equal(t, "out/s1.padded_reference.fasta", p.PaddedReference())
	assert.Len(t, p.Intermediate(), 3)
}

type fakeRunner struct {
	calls []string
	err   error
}

func (f *fakeRunner) Align(_ context.Context, target, query, output string, stdout io.Writer) error {
	f.calls = append(f.calls, query)
	if f.err != nil {
		return f.err
	}
	if _, err := os.Stat(target); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Loaded reference")
	return os.WriteFile(output, []byte("psl\n"), 0o644)
}

func newJob(t *testing.T, runner Runner, keep bool) *Job {
	t.Helper()
	dir := t.TempDir()
	read1 := filepath.Join(dir, "r1.fastq")
	read2 := filepath.Join(dir, "r2.fastq")
	require.NoError(t, os.WriteFile(read1, []byte(fastq), 0o644))
	require.NoError(t, os.WriteFile(read2, []byte(fastq), 0o644))

	return &Job{
		Read1:            read1,
		Read2:            read2,
		Reference:        &reference.Reference{Name: "chrM", Seq: "ACGTACGTAA"},
		Paths:            Paths{Prefix: filepath.Join(dir, "s1")},
		Runner:           runner,
		KeepIntermediate: keep,
	}
}

func TestJobRun(t *testing.T) {
	runner := &fakeRunner{}
	job := newJob(t, runner, false)

	psl1, psl2, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, job.Paths.PSL(alignment.Mate1), psl1)
	assert.Equal(t, job.Paths.PSL(alignment.Mate2), psl2)
	assert.Equal(t, []string{job.Paths.FASTA(alignment.Mate1), job.Paths.FASTA(alignment.Mate2)}, runner.calls)

	assert.FileExists(t, psl1)
	assert.FileExists(t, psl2)
	assert.FileExists(t, job.Paths.BlatOut(alignment.Mate1))
	for _, path := range job.Paths.Intermediate() {
		assert.NoFileExists(t, path)
	}
}

func TestJobRun_KeepIntermediate(t *testing.T) {
	job := newJob(t, &fakeRunner{}, true)

	_, _, err := job.Run(context.Background())
	require.NoError(t, err)

	padded, err := os.ReadFile(job.Paths.PaddedReference())
	require.NoError(t, err)
	assert.Equal(t, "> Padded reference\nACGTACGTAAACGTACGTAA\n", string(padded))
	assert.FileExists(t, job.Paths.FASTA(alignment.Mate2))
}

func TestJobRun_RunnerError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("boom")}
	job := newJob(t, runner, false)

	_, _, err := job.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, runner.calls, 1)
	for _, path := range job.Paths.Intermediate() {
		assert.NoFileExists(t, path)
	}
}

func TestJobRun_MissingReads(t *testing.T) {
	job := newJob(t, &fakeRunner{}, false)
	job.Read2 = filepath.Join(t.TempDir(), "missing.fastq")

	_, _, err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open FASTQ file")
}

func TestBLAT_NotFound(t *testing.T) {
	b := &BLAT{Path: filepath.Join(t.TempDir(), "no-such-blat")}
	err := b.Align(context.Background(), "t.fa", "q.fa", "o.psl", io.Discard)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlignerNotFound))
}

func TestBLAT_ExecutesBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "blat")
	body := "#!/bin/sh\necho \"target=$1 query=$2\"\necho psLayout > \"$3\"\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

	out := filepath.Join(dir, "o.psl")
	var stdout bytes.Buffer
	err := (&BLAT{Path: script}).Align(context.Background(), "t.fa", "q.fa", out, &stdout)
	require.NoError(t, err)
	assert.Equal(t, "target=t.fa query=q.fa\n", stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "psLayout\n", string(data))
}

func TestBLAT_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}
	script := filepath.Join(t.TempDir(), "blat")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho bad input >&2\nexit 3\n"), 0o755))

	err := (&BLAT{Path: script}).Align(context.Background(), "t.fa", "q.fa", "o.psl", io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad input")
}
