// Package report turns a merged support table into deletion calls and
// writes them out.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dbsmedya/mitobreak/internal/breakpoint"
)

// ErrMalformedTable is returned when a breakpoint table cannot be parsed.
var ErrMalformedTable = errors.New("malformed breakpoint table")

// Call is a reported deletion: the first and last deleted reference base
// (1-based, inclusive) and its read support.
type Call struct {
	Start int
	End   int
	Count int
}

// Position identifies a call regardless of its support.
type Position struct {
	Start int
	End   int
}

// Position returns the call's coordinates.
func (c Call) Position() Position {
	return Position{Start: c.Start, End: c.End}
}

// Build converts breakpoints to deleted-interval calls. A breakpoint whose
// flanks are adjacent deletes nothing and is dropped. Coordinates that step
// past the origin wrap: 0 becomes length and length+1 becomes 1.
func Build(t *breakpoint.SupportTable, length int) []Call {
	wrap := func(p int) int {
		switch p {
		case 0:
			return length
		case length + 1:
			return 1
		}
		return p
	}

	var calls []Call
	for _, e := range t.Entries() {
		bp := e.Breakpoint
		if bp.Start+1 == bp.End {
			continue
		}
		calls = append(calls, Call{
			Start: wrap(bp.Start + 1),
			End:   wrap(bp.End - 1),
			Count: e.Count,
		})
	}
	Sort(calls)
	return calls
}

// Sort orders calls by start, then end, then descending count.
func Sort(calls []Call) {
	sort.SliceStable(calls, func(i, j int) bool {
		a, b := calls[i], calls[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.Count > b.Count
	})
}

// Coalesce folds calls that share a position into one call carrying their
// summed support, in table order. Distinct breakpoints on either side of the
// origin can report the same interval.
func Coalesce(calls []Call) []Call {
	if len(calls) == 0 {
		return nil
	}
	index := make(map[Position]int, len(calls))
	out := make([]Call, 0, len(calls))
	for _, c := range calls {
		if i, ok := index[c.Position()]; ok {
			out[i].Count += c.Count
			continue
		}
		index[c.Position()] = len(out)
		out = append(out, c)
	}
	Sort(out)
	return out
}

// Sink receives the calls of one sample.
type Sink interface {
	WriteCalls(ctx context.Context, sample string, calls []Call) error
}

// WriteAll hands calls to every sink in order and stops at the first error.
func WriteAll(ctx context.Context, sinks []Sink, sample string, calls []Call) error {
	for _, s := range sinks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.WriteCalls(ctx, sample, calls); err != nil {
			return fmt.Errorf("failed to write calls for %s: %w", sample, err)
		}
	}
	return nil
}
