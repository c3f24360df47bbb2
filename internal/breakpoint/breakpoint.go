// Package breakpoint infers deletion breakpoints from split-read alignment
// evidence. A query's raw candidates are extracted per mate, reconciled across
// the two mates (left-alignment, nested collapse, conflict removal), counted
// into a SupportTable and finally merged where a repeat makes two calls
// describe the same deletion.
package breakpoint

import (
	"fmt"
	"sort"

	"github.com/dbsmedya/mitobreak/internal/alignment"
)

// Breakpoint is the pair (end of upstream block, start of downstream block)
// in folded reference coordinates. Pairs are directional: (a, b) and (b, a)
// are different breakpoints.
type Breakpoint struct {
	Start int
	End   int
}

func (b Breakpoint) String() string {
	return fmt.Sprintf("(%d,%d)", b.Start, b.End)
}

// Less orders breakpoints by start, then end.
func (b Breakpoint) Less(o Breakpoint) bool {
	if b.Start != o.Start {
		return b.Start < o.Start
	}
	return b.End < o.End
}

// Within reports whether b lies inside o (o.Start <= b.Start, b.End <= o.End).
func (b Breakpoint) Within(o Breakpoint) bool {
	return b.Start >= o.Start && b.End <= o.End
}

// Set is a set of breakpoints.
type Set map[Breakpoint]struct{}

// Add inserts bp.
func (s Set) Add(bp Breakpoint) {
	s[bp] = struct{}{}
}

// Has reports whether bp is in the set.
func (s Set) Has(bp Breakpoint) bool {
	_, ok := s[bp]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []Breakpoint {
	out := make([]Breakpoint, 0, len(s))
	for bp := range s {
		out = append(out, bp)
	}
	sortBreakpoints(out)
	return out
}

// QuerySet holds a query's breakpoints per mate.
type QuerySet map[alignment.Mate]Set

// NewQuerySet returns an empty QuerySet with both mates present.
func NewQuerySet() QuerySet {
	return QuerySet{
		alignment.Mate1: Set{},
		alignment.Mate2: Set{},
	}
}

// Add inserts bp for mate m.
func (q QuerySet) Add(m alignment.Mate, bp Breakpoint) {
	s, ok := q[m]
	if !ok {
		s = Set{}
		q[m] = s
	}
	s.Add(bp)
}

// Len returns the number of (mate, breakpoint) entries.
func (q QuerySet) Len() int {
	n := 0
	for _, s := range q {
		n += len(s)
	}
	return n
}

// Distinct returns the union of both mates' breakpoints, sorted.
func (q QuerySet) Distinct() []Breakpoint {
	union := Set{}
	for _, s := range q {
		for bp := range s {
			union.Add(bp)
		}
	}
	return union.Sorted()
}

func sortBreakpoints(bps []Breakpoint) {
	sort.Slice(bps, func(i, j int) bool { return bps[i].Less(bps[j]) })
}
