// Package reference loads the single-contig circular reference used by the
// breakpoint pipeline and provides circular coordinate arithmetic.
package reference

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrMalformedReference is returned when the FASTA input holds more than one
// sequence header.
var ErrMalformedReference = errors.New("reference FASTA contains more than one sequence")

// ErrEmptyReference is returned when the FASTA input holds no sequence.
var ErrEmptyReference = errors.New("reference FASTA contains no sequence")

// Reference is an upper-cased single-contig sequence.
type Reference struct {
	Name string
	Seq  string
}

// Len returns the contig length.
func (r *Reference) Len() int {
	return len(r.Seq)
}

// Circle returns the coordinate utility for this reference.
func (r *Reference) Circle() *Circle {
	return NewCircle(r.Seq)
}

// Provider supplies the reference to the pipeline.
type Provider interface {
	Reference() (*Reference, error)
}

// Reference implements Provider for an already loaded reference.
func (r *Reference) Reference() (*Reference, error) {
	return r, nil
}

// File is a Provider backed by a FASTA file path.
type File string

// Reference implements Provider.
func (f File) Reference() (*Reference, error) {
	return Load(string(f))
}

// Load reads a single-contig FASTA file.
func Load(path string) (*Reference, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference: %w", err)
	}
	defer file.Close()

	ref, err := ReadFASTA(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ref, nil
}

// ReadFASTA parses a single FASTA record from r. Sequence lines are joined
// and upper-cased; a second header line is rejected.
func ReadFASTA(r io.Reader) (*Reference, error) {
	sc := bufio.NewScanner(r)
	const maxLine = 64 * 1024 * 1024
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var (
		name    string
		headers int
		seq     strings.Builder
	)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, ">") {
			headers++
			if headers > 1 {
				return nil, ErrMalformedReference
			}
			name = strings.TrimSpace(strings.TrimPrefix(line, ">"))
			if fields := strings.Fields(name); len(fields) > 0 {
				name = fields[0]
			}
			continue
		}
		seq.WriteString(line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reference: %w", err)
	}
	if seq.Len() == 0 {
		return nil, ErrEmptyReference
	}

	return &Reference{
		Name: name,
		Seq:  strings.ToUpper(seq.String()),
	}, nil
}

// WritePadded writes the doubled reference as a single FASTA record, which
// is the target the aligner is run against.
func WritePadded(w io.Writer, ref *Reference) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "> Padded reference\n%s%s\n", ref.Seq, ref.Seq); err != nil {
		return err
	}
	return bw.Flush()
}
