package breakpoint

import (
	"github.com/dbsmedya/mitobreak/internal/reference"
)

// LeftAlign moves every breakpoint of in to its leftmost equivalent
// representation and returns a new QuerySet.
func LeftAlign(c *reference.Circle, in QuerySet) (QuerySet, error) {
	out := NewQuerySet()
	for m, set := range in {
		for _, bp := range set.Sorted() {
			aligned, err := LeftAlignBreakpoint(c, bp)
			if err != nil {
				return nil, err
			}
			out.Add(m, aligned)
		}
	}
	return out, nil
}

// LeftAlignBreakpoint shifts bp left while the deleted window ends with the
// same bases that precede it, so that a deletion inside a tandem repeat gets
// one canonical coordinate pair. A window that wraps the origin is handled
// on the doubled sequence and folded back afterwards.
func LeftAlignBreakpoint(c *reference.Circle, bp Breakpoint) (Breakpoint, error) {
	a, b := c.Unwrap(bp.Start, bp.End)

	// Every shift moves a left by at least one and a never goes below zero.
	limit := a + 1
	for shifts := 0; ; shifts++ {
		k := repeatShift(c, a, b)
		if k == 0 {
			break
		}
		if shifts >= limit {
			return Breakpoint{}, &ConvergenceError{Stage: StageLeftAlign, Limit: limit, Breakpoint: &bp}
		}
		a -= k
		b -= k
	}

	return Breakpoint{Start: a, End: c.Fold(b)}, nil
}

// repeatShift returns the smallest k such that the last k bases of the
// deleted window equal the k bases immediately before a, or 0.
func repeatShift(c *reference.Circle, a, b int) int {
	window := c.PaddedSlice(a, b-1)
	for k := 1; k <= len(window); k++ {
		if a-k < 0 {
			return 0
		}
		if window[len(window)-k:] == c.PaddedSlice(a-k, a) {
			return k
		}
	}
	return 0
}
