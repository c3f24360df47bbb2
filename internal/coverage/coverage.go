// Package coverage counts reference bases covered by the alignments of a run.
package coverage

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dbsmedya/mitobreak/internal/alignment"
	"github.com/dbsmedya/mitobreak/internal/psl"
)

// Counter accumulates the distinct target blocks of each read name and
// counts the reference positions they cover. Both mates share a read name,
// so a position covered by either mate counts once.
type Counter struct {
	length int
	blocks map[string]map[alignment.Interval]struct{}
}

// NewCounter returns a Counter for a circular reference of the given length.
func NewCounter(length int) *Counter {
	return &Counter{
		length: length,
		blocks: make(map[string]map[alignment.Interval]struct{}),
	}
}

// AddRow records every target block of row, in doubled-reference coordinates.
func (c *Counter) AddRow(row *psl.Row) {
	set, ok := c.blocks[row.QName]
	if !ok {
		set = make(map[alignment.Interval]struct{})
		c.blocks[row.QName] = set
	}
	for i := range row.BlockSizes {
		set[row.TargetBlock(i)] = struct{}{}
	}
}

// AddFile records every row of a PSL file.
func (c *Counter) AddFile(path string, skipHeader bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open PSL file: %w", err)
	}
	defer f.Close()

	r := psl.NewReader(f, path, skipHeader)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		c.AddRow(row)
	}
}

// Reads returns the number of distinct read names seen.
func (c *Counter) Reads() int {
	return len(c.blocks)
}

// Count returns the number of covered reference positions summed over reads.
func (c *Counter) Count() int {
	covered := make([]bool, c.length+1)
	total := 0
	for _, set := range c.blocks {
		for i := range covered {
			covered[i] = false
		}
		for block := range set {
			for _, iv := range c.fold(block) {
				for p := iv.Start; p <= iv.End; p++ {
					if p < 1 || p > c.length || covered[p] {
						continue
					}
					covered[p] = true
					total++
				}
			}
		}
	}
	return total
}

// fold maps a doubled-reference block onto [1, length], splitting a block
// that straddles the end of the first copy.
func (c *Counter) fold(b alignment.Interval) []alignment.Interval {
	l := c.length
	switch {
	case b.Start <= l && b.End <= l:
		return []alignment.Interval{b}
	case b.Start <= l:
		return []alignment.Interval{{Start: b.Start, End: l}, {Start: 1, End: b.End - l}}
	default:
		return []alignment.Interval{{Start: b.Start - l, End: b.End - l}}
	}
}

// OutputPath returns the aligned-bases report path for a prefix.
func OutputPath(prefix string) string {
	return prefix + ".aligned_bases.txt"
}

// MatePaths returns the PSL files written for both mates of a prefix.
func MatePaths(prefix string) (string, string) {
	return prefix + ".read_1.psl", prefix + ".read_2.psl"
}

// FromPrefix counts the aligned bases of both mate PSL files of a run.
func FromPrefix(prefix string, length int, skipHeader bool) (int, error) {
	c := NewCounter(length)
	read1, read2 := MatePaths(prefix)
	for _, path := range []string{read1, read2} {
		if err := c.AddFile(path, skipHeader); err != nil {
			return 0, err
		}
	}
	return c.Count(), nil
}

// Write prints the two-column "<prefix>\t<count>" line.
func Write(w io.Writer, prefix string, count int) error {
	_, err := fmt.Fprintf(w, "%s\t%d\n", prefix, count)
	return err
}

// WriteFile writes the aligned-bases report for prefix.
func WriteFile(prefix string, count int) error {
	f, err := os.Create(OutputPath(prefix))
	if err != nil {
		return fmt.Errorf("failed to create aligned bases report: %w", err)
	}
	if err := Write(f, prefix, count); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
