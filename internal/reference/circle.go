package reference

// Circle is the coordinate-normalization utility for a circular contig.
// Positions are 1-based; the aligner works against the sequence doubled
// end-to-end, so positions in (L, 2L] fold back onto [1, L].
type Circle struct {
	seq    string
	padded string
}

// NewCircle builds a Circle over seq, which must already be upper-cased.
func NewCircle(seq string) *Circle {
	return &Circle{
		seq:    seq,
		padded: seq + seq,
	}
}

// Len returns the contig length L.
func (c *Circle) Len() int {
	return len(c.seq)
}

// Seq returns the linear contig sequence.
func (c *Circle) Seq() string {
	return c.seq
}

// Padded returns the doubled sequence used for wrap-safe slicing.
func (c *Circle) Padded() string {
	return c.padded
}

// Fold maps a doubled-reference coordinate back into [1, L].
func (c *Circle) Fold(p int) int {
	if p > len(c.seq) {
		return p - len(c.seq)
	}
	return p
}

// Unwrap returns (a, b) with b moved into the second copy when the
// interval crosses the origin (b < a).
func (c *Circle) Unwrap(a, b int) (int, int) {
	if b < a {
		return a, b + len(c.seq)
	}
	return a, b
}

// Slice returns seq[from:to] using 0-based half-open offsets. Bounds are
// clamped and an inverted range yields "".
func (c *Circle) Slice(from, to int) string {
	return clampSlice(c.seq, from, to)
}

// PaddedSlice is Slice over the doubled sequence.
func (c *Circle) PaddedSlice(from, to int) string {
	return clampSlice(c.padded, from, to)
}

func clampSlice(s string, from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(s) {
		to = len(s)
	}
	if from >= to {
		return ""
	}
	return s[from:to]
}
