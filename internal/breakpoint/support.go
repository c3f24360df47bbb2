package breakpoint

// SupportTable maps breakpoints to the number of queries supporting them.
// Tables built independently can be combined with Merge, which is
// associative and commutative, so per-query work can be reduced in any order.
type SupportTable struct {
	counts map[Breakpoint]int
}

// Entry is one row of a SupportTable.
type Entry struct {
	Breakpoint Breakpoint
	Count      int
}

// NewSupportTable returns an empty table.
func NewSupportTable() *SupportTable {
	return &SupportTable{counts: make(map[Breakpoint]int)}
}

// Add adds n units of support to bp.
func (t *SupportTable) Add(bp Breakpoint, n int) {
	t.counts[bp] += n
}

// AddQuery records one unit of support for each distinct breakpoint of a
// query. Repeated breakpoints in bps are counted once.
func (t *SupportTable) AddQuery(bps []Breakpoint) {
	seen := Set{}
	for _, bp := range bps {
		if seen.Has(bp) {
			continue
		}
		seen.Add(bp)
		t.counts[bp]++
	}
}

// Merge adds every count of o into t.
func (t *SupportTable) Merge(o *SupportTable) {
	for bp, n := range o.counts {
		t.counts[bp] += n
	}
}

// Count returns the support of bp.
func (t *SupportTable) Count(bp Breakpoint) int {
	return t.counts[bp]
}

// Len returns the number of distinct breakpoints.
func (t *SupportTable) Len() int {
	return len(t.counts)
}

// Total returns the summed support over all breakpoints.
func (t *SupportTable) Total() int {
	total := 0
	for _, n := range t.counts {
		total += n
	}
	return total
}

// Breakpoints returns the keys in ascending order.
func (t *SupportTable) Breakpoints() []Breakpoint {
	out := make([]Breakpoint, 0, len(t.counts))
	for bp := range t.counts {
		out = append(out, bp)
	}
	sortBreakpoints(out)
	return out
}

// Entries returns the rows in ascending breakpoint order.
func (t *SupportTable) Entries() []Entry {
	keys := t.Breakpoints()
	out := make([]Entry, len(keys))
	for i, bp := range keys {
		out[i] = Entry{Breakpoint: bp, Count: t.counts[bp]}
	}
	return out
}

// Aggregate folds per-query results into a new table.
func Aggregate(results []QueryResult) *SupportTable {
	t := NewSupportTable()
	for _, r := range results {
		t.AddQuery(r.Breakpoints)
	}
	return t
}
