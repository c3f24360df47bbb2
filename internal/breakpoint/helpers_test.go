package breakpoint

import (
	"github.com/dbsmedya/mitobreak/internal/alignment"
	"github.com/dbsmedya/mitobreak/internal/reference"
)

// testSeq returns a deterministic pseudo-random sequence of length n.
func testSeq(n int) []byte {
	const bases = "ACGT"
	seq := make([]byte, n)
	x := uint32(2463534242)
	for i := range seq {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		seq[i] = bases[x%4]
	}
	return seq
}

// setBase assigns a base at a 1-based position.
func setBase(seq []byte, pos int, b byte) {
	seq[pos-1] = b
}

// noShiftAt makes the left-alignment test for (a, b) fail on the first base.
func noShiftAt(seq []byte, a, b int) {
	setBase(seq, a, 'A')
	setBase(seq, b-1, 'C')
}

func circleOf(seq []byte) *reference.Circle {
	return reference.NewCircle(string(seq))
}

func blk(qs, qe, ts, te int) alignment.Block {
	return alignment.Block{
		Query:  alignment.Interval{Start: qs, End: qe},
		Target: alignment.Interval{Start: ts, End: te},
	}
}

func rec(id string, m alignment.Mate, s alignment.Strand, blocks ...alignment.Block) alignment.Record {
	return alignment.Record{QueryID: id, Mate: m, Strand: s, Blocks: blocks}
}

func qset(m1, m2 []Breakpoint) QuerySet {
	q := NewQuerySet()
	for _, bp := range m1 {
		q.Add(alignment.Mate1, bp)
	}
	for _, bp := range m2 {
		q.Add(alignment.Mate2, bp)
	}
	return q
}
