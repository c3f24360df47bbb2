package breakpoint

import (
	"github.com/dbsmedya/mitobreak/internal/alignment"
)

// RemoveConflicts drops a mate's breakpoint when the other mate aligns
// straight through it and does not report the same breakpoint itself.
// Breakpoints seen by both mates always survive.
func RemoveConflicts(length int, q *alignment.QueryEvidence, in QuerySet) QuerySet {
	out := NewQuerySet()
	for _, m := range alignment.Mates {
		other := m.Other()
		spans := otherMateSpans(length, q, other)
		for _, bp := range in[m].Sorted() {
			if in[other].Has(bp) || !insideAny(bp, spans) {
				out.Add(m, bp)
			}
		}
	}
	return out
}

func otherMateSpans(length int, q *alignment.QueryEvidence, m alignment.Mate) []alignment.Interval {
	if q == nil {
		return nil
	}
	var spans []alignment.Interval
	records := q.Records(m)
	for i := range records {
		spans = append(spans, records[i].TargetSpans(length)...)
	}
	return spans
}

func insideAny(bp Breakpoint, spans []alignment.Interval) bool {
	for _, span := range spans {
		if span.Contains(bp.Start) && span.Contains(bp.End) {
			return true
		}
	}
	return false
}
