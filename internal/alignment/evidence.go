package alignment

import "sort"

// QueryEvidence holds the retained records of one query read, per mate.
type QueryEvidence struct {
	QueryID string
	records map[Mate][]Record
}

// NewQueryEvidence builds the evidence of a single query from records that
// have already passed ingestion. Duplicates are dropped.
func NewQueryEvidence(queryID string, records ...Record) *QueryEvidence {
	q := &QueryEvidence{QueryID: queryID, records: make(map[Mate][]Record)}
	for _, rec := range records {
		q.add(rec)
	}
	return q
}

// Records returns the retained records for mate, in ingestion order.
func (q *QueryEvidence) Records(m Mate) []Record {
	return q.records[m]
}

// RecordCount returns the number of retained records across both mates.
func (q *QueryEvidence) RecordCount() int {
	return len(q.records[Mate1]) + len(q.records[Mate2])
}

func (q *QueryEvidence) add(rec Record) bool {
	for i := range q.records[rec.Mate] {
		if q.records[rec.Mate][i].Equal(&rec) {
			return false
		}
	}
	q.records[rec.Mate] = append(q.records[rec.Mate], rec)
	return true
}

// Evidence is the retained alignment evidence of a sample, keyed by query.
// It is built once and then only read by the pipeline.
type Evidence struct {
	queries map[string]*QueryEvidence
	order   []string
}

// NewEvidence returns an empty Evidence.
func NewEvidence() *Evidence {
	return &Evidence{queries: make(map[string]*QueryEvidence)}
}

// Collect applies the ingestion rule to the records of both mates.
//
// The first pass retains split records (two or more blocks) for each mate.
// The second pass retains any remaining record whose query already has
// retained evidence from either mate, so that a single-block alignment of
// one mate is available when the other mate was split. Duplicate records
// are never added twice.
func Collect(mate1, mate2 []Record) *Evidence {
	ev := NewEvidence()
	ev.ingest(mate1, false)
	ev.ingest(mate2, false)
	ev.ingest(mate1, true)
	ev.ingest(mate2, true)
	return ev
}

func (e *Evidence) ingest(records []Record, addIfPresent bool) {
	for _, rec := range records {
		_, present := e.queries[rec.QueryID]
		if !rec.IsSplit() && !(addIfPresent && present) {
			continue
		}
		e.query(rec.QueryID).add(rec)
	}
}

func (e *Evidence) query(id string) *QueryEvidence {
	q, ok := e.queries[id]
	if !ok {
		q = &QueryEvidence{QueryID: id, records: make(map[Mate][]Record)}
		e.queries[id] = q
		e.order = append(e.order, id)
	}
	return q
}

// Len returns the number of queries with retained evidence.
func (e *Evidence) Len() int {
	return len(e.queries)
}

// Query returns the evidence for a query, or nil.
func (e *Evidence) Query(id string) *QueryEvidence {
	return e.queries[id]
}

// QueryIDs returns the query IDs in sorted order.
func (e *Evidence) QueryIDs() []string {
	ids := make([]string, len(e.order))
	copy(ids, e.order)
	sort.Strings(ids)
	return ids
}

// RecordCount returns the number of retained records.
func (e *Evidence) RecordCount() int {
	n := 0
	for _, q := range e.queries {
		n += q.RecordCount()
	}
	return n
}
