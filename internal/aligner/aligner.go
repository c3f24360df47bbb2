// Package aligner prepares reads and reference for BLAT and runs it once per
// mate, leaving one PSL file per mate next to the output prefix.
package aligner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dbsmedya/mitobreak/internal/alignment"
	"github.com/dbsmedya/mitobreak/internal/logger"
	"github.com/dbsmedya/mitobreak/internal/reference"
)

// ErrAlignerNotFound is returned when the aligner binary cannot be located.
var ErrAlignerNotFound = errors.New("aligner binary not found")

// Paths names every file a run writes for an output prefix.
type Paths struct {
	Prefix string
}

// FASTA is the converted read file for mate m.
func (p Paths) FASTA(m alignment.Mate) string {
	return fmt.Sprintf("%s.%s.fasta", p.Prefix, m)
}

// PSL is the alignment output for mate m.
func (p Paths) PSL(m alignment.Mate) string {
	return fmt.Sprintf("%s.%s.psl", p.Prefix, m)
}

// BlatOut captures the aligner's standard output for mate m.
func (p Paths) BlatOut(m alignment.Mate) string {
	return fmt.Sprintf("%s.%s.blat.out", p.Prefix, m)
}

// PaddedReference is the doubled reference used as alignment target.
func (p Paths) PaddedReference() string {
	return p.Prefix + ".padded_reference.fasta"
}

// Intermediate lists the files removed after a run.
func (p Paths) Intermediate() []string {
	return []string{p.PaddedReference(), p.FASTA(alignment.Mate1), p.FASTA(alignment.Mate2)}
}

// FASTQToFASTA converts four-line FASTQ records to FASTA. The header line is
// kept verbatim after "> ". It returns the number of records written.
func FASTQToFASTA(r io.Reader, w io.Writer) (int, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	bw := bufio.NewWriter(w)

	line, records := 0, 0
	for s.Scan() {
		switch line % 4 {
		case 0:
			fmt.Fprintf(bw, "> %s\n", strings.TrimSpace(s.Text()))
			records++
		case 1:
			bw.WriteString(s.Text())
			bw.WriteByte('\n')
		}
		line++
	}
	if err := s.Err(); err != nil {
		return records, err
	}
	return records, bw.Flush()
}

// ConvertFASTQ converts the FASTQ file src into the FASTA file dst.
func ConvertFASTQ(src, dst string) (int, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open FASTQ file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create FASTA file: %w", err)
	}
	n, err := FASTQToFASTA(in, out)
	if err != nil {
		out.Close()
		return n, fmt.Errorf("failed to convert %s: %w", src, err)
	}
	return n, out.Close()
}

// WritePaddedFile writes the doubled reference FASTA to path.
func WritePaddedFile(path string, ref *reference.Reference) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create padded reference: %w", err)
	}
	if err := reference.WritePadded(f, ref); err != nil {
		f.Close()
		return fmt.Errorf("failed to write padded reference: %w", err)
	}
	return f.Close()
}

// Runner aligns a query FASTA against a target FASTA and writes PSL output.
type Runner interface {
	Align(ctx context.Context, target, query, output string, stdout io.Writer) error
}

// BLAT runs the blat executable with default settings.
type BLAT struct {
	Path string
}

// Align implements Runner.
func (b *BLAT) Align(ctx context.Context, target, query, output string, stdout io.Writer) error {
	bin, err := exec.LookPath(b.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrAlignerNotFound, b.Path, err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, target, query, output)
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to execute blat on %s: %v: %s", query, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Job aligns both mates of a sample.
type Job struct {
	Read1            string
	Read2            string
	Reference        *reference.Reference
	Paths            Paths
	Runner           Runner
	KeepIntermediate bool
	Logger           *logger.Logger
}

// Run converts the reads, writes the padded reference and aligns each mate
// in turn. It returns the PSL paths for mate 1 and mate 2.
func (j *Job) Run(ctx context.Context) (psl1, psl2 string, err error) {
	log := j.Logger
	if log == nil {
		log = logger.NewNop()
	}

	if !j.KeepIntermediate {
		defer func() {
			if cerr := j.Cleanup(); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}

	if err := WritePaddedFile(j.Paths.PaddedReference(), j.Reference); err != nil {
		return "", "", err
	}

	inputs := map[alignment.Mate]string{alignment.Mate1: j.Read1, alignment.Mate2: j.Read2}
	for _, m := range alignment.Mates {
		n, err := ConvertFASTQ(inputs[m], j.Paths.FASTA(m))
		if err != nil {
			return "", "", err
		}
		log.Debugw("converted reads", "mate", m.String(), "records", n)
	}

	for _, m := range alignment.Mates {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		if err := j.alignMate(ctx, m); err != nil {
			return "", "", err
		}
		log.Infow("aligned reads", "mate", m.String(), "psl", j.Paths.PSL(m))
	}

	return j.Paths.PSL(alignment.Mate1), j.Paths.PSL(alignment.Mate2), nil
}

func (j *Job) alignMate(ctx context.Context, m alignment.Mate) error {
	out, err := os.Create(j.Paths.BlatOut(m))
	if err != nil {
		return fmt.Errorf("failed to create aligner log: %w", err)
	}
	defer out.Close()

	return j.Runner.Align(ctx, j.Paths.PaddedReference(), j.Paths.FASTA(m), j.Paths.PSL(m), out)
}

// Cleanup removes the intermediate FASTA files. Missing files are ignored.
func (j *Job) Cleanup() error {
	for _, path := range j.Paths.Intermediate() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}
