// Package alignment holds the alignment evidence consumed by the breakpoint
// pipeline: per-query, per-mate alignment records split into mapped blocks.
package alignment

import (
	"context"
	"fmt"
	"sort"

	"github.com/dbsmedya/mitobreak/internal/reference"
)

// Mate identifies one read of a paired-end fragment.
type Mate int

const (
	Mate1 Mate = iota + 1
	Mate2
)

// Mates lists both mates in processing order.
var Mates = [2]Mate{Mate1, Mate2}

// Other returns the opposite mate.
func (m Mate) Other() Mate {
	if m == Mate1 {
		return Mate2
	}
	return Mate1
}

func (m Mate) String() string {
	switch m {
	case Mate1:
		return "read_1"
	case Mate2:
		return "read_2"
	default:
		return fmt.Sprintf("mate(%d)", int(m))
	}
}

// Strand is the orientation of an alignment against the reference.
type Strand byte

const (
	Forward Strand = '+'
	Reverse Strand = '-'
)

func (s Strand) String() string {
	return string(s)
}

// ParseStrand converts "+" or "-" to a Strand.
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+":
		return Forward, nil
	case "-":
		return Reverse, nil
	default:
		return 0, fmt.Errorf("invalid strand %q", s)
	}
}

// Interval is a 1-based inclusive coordinate range.
type Interval struct {
	Start int
	End   int
}

// Len returns the number of positions covered, independent of orientation.
func (iv Interval) Len() int {
	d := iv.End - iv.Start
	if d < 0 {
		d = -d
	}
	return d + 1
}

// Contains reports whether p lies in [Start, End].
func (iv Interval) Contains(p int) bool {
	return p >= iv.Start && p <= iv.End
}

// Block is one contiguous aligned segment of a record. Query coordinates are
// along the original (unreversed) read; target coordinates are folded into
// [1, L], so Target.Start may exceed Target.End for a block that crossed the
// origin of the doubled reference.
type Block struct {
	Query  Interval
	Target Interval
}

// Record is one alignment of one query read against the doubled reference.
type Record struct {
	QueryID        string
	Mate           Mate
	Strand         Strand
	Matches        int
	QueryGapCount  int
	TargetGapCount int
	Blocks         []Block
}

// IsSplit reports whether the record aligns in two or more blocks.
func (r *Record) IsSplit() bool {
	return len(r.Blocks) > 1
}

// Equal reports whether two records carry the same evidence: identical
// blocks, strand, matches and gap counts.
func (r *Record) Equal(o *Record) bool {
	if r.Strand != o.Strand || r.Matches != o.Matches ||
		r.QueryGapCount != o.QueryGapCount || r.TargetGapCount != o.TargetGapCount ||
		len(r.Blocks) != len(o.Blocks) {
		return false
	}
	for i := range r.Blocks {
		if r.Blocks[i] != o.Blocks[i] {
			return false
		}
	}
	return true
}

// OrderedBlocks returns a copy of the blocks ordered along the original read:
// ascending query start on the forward strand, descending on the reverse.
func (r *Record) OrderedBlocks() []Block {
	blocks := make([]Block, len(r.Blocks))
	copy(blocks, r.Blocks)
	if r.Strand == Reverse {
		sort.SliceStable(blocks, func(i, j int) bool {
			return blocks[i].Query.Start > blocks[j].Query.Start
		})
	} else {
		sort.SliceStable(blocks, func(i, j int) bool {
			return blocks[i].Query.Start < blocks[j].Query.Start
		})
	}
	return blocks
}

// TargetSpans returns the reference range the record aligns through,
// from the first block's start to the last block's end along the read. A span
// that wraps the origin is split into [1, end] and [start, L].
func (r *Record) TargetSpans(length int) []Interval {
	if len(r.Blocks) == 0 {
		return nil
	}
	blocks := r.OrderedBlocks()
	span := Interval{Start: blocks[0].Target.Start, End: blocks[len(blocks)-1].Target.End}
	if span.Start > span.End {
		return []Interval{
			{Start: 1, End: span.End},
			{Start: span.Start, End: length},
		}
	}
	return []Interval{span}
}

// Provider is the source of alignment evidence. Implementations parse an
// aligner's output and fold target coordinates with the given circle.
type Provider interface {
	Evidence(ctx context.Context, circle *reference.Circle) (*Evidence, error)
}
