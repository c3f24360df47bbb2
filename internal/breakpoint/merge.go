package breakpoint

import (
	"github.com/dbsmedya/mitobreak/internal/reference"
)

// MergeRepeats folds together breakpoints that describe the same deletion
// under a flanking repeat. For b1=(s1,e1) and b2=(s2,e2) with
// s1 < s2 < e1 < e2, the two are equivalent when the reference bases
// [s1, s2) equal [e1-1, e2-1); b1 then absorbs b2's support and b2 is
// removed. Scans repeat until no merge fires. It returns the number of
// merges performed.
func (t *SupportTable) MergeRepeats(c *reference.Circle) (int, error) {
	// Every merge removes a key.
	limit := t.Len()
	merges := 0
	for {
		merged := false
		keys := t.Breakpoints()
		for _, b1 := range keys {
			if _, ok := t.counts[b1]; !ok {
				continue
			}
			for _, b2 := range keys {
				if b1 == b2 {
					continue
				}
				if _, ok := t.counts[b2]; !ok {
					continue
				}
				if !repeatEquivalent(c, b1, b2) {
					continue
				}
				t.counts[b1] += t.counts[b2]
				delete(t.counts, b2)
				merges++
				merged = true
			}
		}
		if !merged {
			return merges, nil
		}
		if merges > limit {
			return merges, &ConvergenceError{Stage: StageMerge, Limit: limit}
		}
	}
}

// repeatEquivalent reports whether b2 is a staggered representation of b1.
func repeatEquivalent(c *reference.Circle, b1, b2 Breakpoint) bool {
	if !(b1.Start < b2.Start && b2.Start < b1.End && b1.End < b2.End) {
		return false
	}
	return c.Slice(b1.Start, b2.Start) == c.Slice(b1.End-1, b2.End-1)
}
