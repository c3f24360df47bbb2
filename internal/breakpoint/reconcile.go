package breakpoint

import (
	"fmt"

	"github.com/dbsmedya/mitobreak/internal/alignment"
	"github.com/dbsmedya/mitobreak/internal/reference"
)

// Reconciler runs extraction and the three cross-mate passes for one query
// at a time. It only reads the evidence it is given, so a single Reconciler
// may be shared by concurrent workers.
type Reconciler struct {
	circle    *reference.Circle
	extractor *Extractor
}

// NewReconciler returns a Reconciler over the given reference.
func NewReconciler(circle *reference.Circle, minAlignmentLength int) *Reconciler {
	return &Reconciler{
		circle:    circle,
		extractor: NewExtractor(minAlignmentLength),
	}
}

// QueryResult is the outcome of reconciling one query.
type QueryResult struct {
	QueryID string
	// Raw is the number of (mate, breakpoint) candidates before reconciliation.
	Raw int
	// Breakpoints are the distinct breakpoints across both mates.
	Breakpoints []Breakpoint
}

// Reconcile returns the query's breakpoints per mate after left-alignment,
// nested collapse and conflict removal. Each stage produces a new set.
func (r *Reconciler) Reconcile(q *alignment.QueryEvidence) (raw, final QuerySet, err error) {
	raw = r.extractor.Extract(q)
	if raw.Len() == 0 {
		return raw, raw, nil
	}

	aligned, err := LeftAlign(r.circle, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", q.QueryID, err)
	}

	collapsed, err := CollapseNested(aligned)
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", q.QueryID, err)
	}

	return raw, RemoveConflicts(r.circle.Len(), q, collapsed), nil
}

// Query reconciles q and returns its distinct breakpoints, each of which
// contributes one unit of support.
func (r *Reconciler) Query(q *alignment.QueryEvidence) (QueryResult, error) {
	raw, final, err := r.Reconcile(q)
	if err != nil {
		return QueryResult{}, err
	}
	return QueryResult{
		QueryID:     q.QueryID,
		Raw:         raw.Len(),
		Breakpoints: final.Distinct(),
	}, nil
}
