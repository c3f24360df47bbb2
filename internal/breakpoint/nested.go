package breakpoint

import (
	"github.com/dbsmedya/mitobreak/internal/alignment"
)

type mateBreakpoint struct {
	mate alignment.Mate
	bp   Breakpoint
}

// CollapseNested resolves containment between a query's breakpoints across
// both mates. Whenever one breakpoint lies strictly inside another, the outer
// entry takes the inner coordinates while keeping its own mate. Rounds repeat
// until nothing changes.
func CollapseNested(in QuerySet) (QuerySet, error) {
	entries := flatten(in)

	// Each change replaces an entry with a strictly smaller interval drawn
	// from the current entries, so every entry changes at most n times.
	limit := len(entries)*len(entries) + 1
	for round := 0; ; round++ {
		next := make([]mateBreakpoint, len(entries))
		copy(next, entries)

		changed := false
		for i := range entries {
			inner := entries[i]
			for j := range entries {
				outer := entries[j]
				if i == j || inner.bp == outer.bp {
					continue
				}
				if inner.bp.Within(outer.bp) {
					next[j] = mateBreakpoint{mate: outer.mate, bp: inner.bp}
					changed = true
				}
			}
		}

		entries = next
		if !changed {
			break
		}
		if round >= limit {
			return nil, &ConvergenceError{Stage: StageNested, Limit: limit}
		}
	}

	out := NewQuerySet()
	for _, e := range entries {
		out.Add(e.mate, e.bp)
	}
	return out, nil
}

// flatten lists (mate, breakpoint) entries in a stable order.
func flatten(in QuerySet) []mateBreakpoint {
	var entries []mateBreakpoint
	for _, m := range alignment.Mates {
		for _, bp := range in[m].Sorted() {
			entries = append(entries, mateBreakpoint{mate: m, bp: bp})
		}
	}
	return entries
}
