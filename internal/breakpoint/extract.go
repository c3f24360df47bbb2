package breakpoint

import (
	"github.com/dbsmedya/mitobreak/internal/alignment"
)

// Extractor derives raw breakpoint candidates from split alignments.
type Extractor struct {
	// MinAlignmentLength is the shortest block, in query bases, accepted as
	// an anchor on either side of a junction.
	MinAlignmentLength int
}

// NewExtractor returns an Extractor with the given anchor length.
func NewExtractor(minAlignmentLength int) *Extractor {
	return &Extractor{MinAlignmentLength: minAlignmentLength}
}

// Extract returns the raw breakpoints of every split record of the query,
// keyed by mate. A mate with only single-block records contributes nothing.
func (e *Extractor) Extract(q *alignment.QueryEvidence) QuerySet {
	out := NewQuerySet()
	for _, m := range alignment.Mates {
		records := q.Records(m)
		for i := range records {
			for _, bp := range e.ExtractRecord(&records[i]) {
				out.Add(m, bp)
			}
		}
	}
	return out
}

// ExtractRecord walks adjacent blocks along the original read and emits
// (upstream.Target.End, downstream.Target.Start) where both blocks are long
// enough to be trusted.
func (e *Extractor) ExtractRecord(rec *alignment.Record) []Breakpoint {
	if !rec.IsSplit() {
		return nil
	}

	blocks := rec.OrderedBlocks()
	var out []Breakpoint
	for i := 0; i < len(blocks)-1; i++ {
		up, down := blocks[i], blocks[i+1]
		if up.Query.Len() < e.MinAlignmentLength || down.Query.Len() < e.MinAlignmentLength {
			continue
		}
		out = append(out, Breakpoint{Start: up.Target.End, End: down.Target.Start})
	}
	return out
}
