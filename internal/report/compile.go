package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
)

// ListEntry is one line of a compile list: a breakpoint table and the
// sample name used as its column header.
type ListEntry struct {
	Path   string
	Sample string
}

// ReadList parses a two-column, whitespace-separated list without header.
func ReadList(r io.Reader) ([]ListEntry, error) {
	s := bufio.NewScanner(r)
	var entries []ListEntry
	line := 0
	for s.Scan() {
		line++
		fields := strings.Fields(s.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: list line %d: expected file and sample id, got %d columns",
				ErrMalformedTable, line, len(fields))
		}
		entries = append(entries, ListEntry{Path: fields[0], Sample: fields[1]})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadListFile reads a compile list from disk.
func ReadListFile(path string) ([]ListEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open list file: %w", err)
	}
	defer f.Close()
	return ReadList(f)
}

// Matrix is a breakpoint-by-sample count table. Samples keep the order in
// which they were added; rows keep first-seen order until sorted for output.
type Matrix struct {
	samples *orderedmap.OrderedMap[string, struct{}]
	rows    *orderedmap.OrderedMap[Position, map[string]int]
}

// MatrixRow is one output line of a Matrix.
type MatrixRow struct {
	Position Position
	Counts   []int
	Total    int
}

// NewMatrix returns an empty Matrix.
func NewMatrix() *Matrix {
	return &Matrix{
		samples: orderedmap.NewOrderedMap[string, struct{}](),
		rows:    orderedmap.NewOrderedMap[Position, map[string]int](),
	}
}

// Add records the calls of one sample. Adding a sample twice overwrites
// counts of repeated positions.
func (m *Matrix) Add(sample string, calls []Call) {
	m.samples.Set(sample, struct{}{})
	for _, c := range calls {
		counts, ok := m.rows.Get(c.Position())
		if !ok {
			counts = make(map[string]int)
			m.rows.Set(c.Position(), counts)
		}
		counts[sample] = c.Count
	}
}

// Samples returns the sample names in column order.
func (m *Matrix) Samples() []string {
	return m.samples.Keys()
}

// Rows returns zero-filled rows sorted by descending total. Ties keep the
// order in which positions were first seen.
func (m *Matrix) Rows() []MatrixRow {
	samples := m.Samples()
	rows := make([]MatrixRow, 0, m.rows.Len())
	for el := m.rows.Front(); el != nil; el = el.Next() {
		row := MatrixRow{Position: el.Key, Counts: make([]int, len(samples))}
		for i, s := range samples {
			row.Counts[i] = el.Value[s]
			row.Total += row.Counts[i]
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})
	return rows
}

// Write prints the matrix as a tab-separated table. The header line starts
// with an empty cell for each coordinate column.
func (m *Matrix) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("\t")
	for _, s := range m.Samples() {
		bw.WriteString("\t" + s)
	}
	bw.WriteString("\n")

	for _, row := range m.Rows() {
		bw.WriteString(strconv.Itoa(row.Position.Start) + "\t" + strconv.Itoa(row.Position.End))
		for _, n := range row.Counts {
			bw.WriteString("\t" + strconv.Itoa(n))
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// Loader returns the calls of every requested sample.
type Loader interface {
	LoadSamples(ctx context.Context, samples []string) (map[string][]Call, error)
}

// CompileFiles builds a Matrix from breakpoint tables on disk.
func CompileFiles(entries []ListEntry) (*Matrix, error) {
	m := NewMatrix()
	for _, e := range entries {
		calls, err := ReadTSVFile(e.Path)
		if err != nil {
			return nil, err
		}
		m.Add(e.Sample, calls)
	}
	return m, nil
}

// CompileLoaded builds a Matrix from calls fetched through a Loader, keeping
// the order of samples.
func CompileLoaded(ctx context.Context, l Loader, samples []string) (*Matrix, error) {
	loaded, err := l.LoadSamples(ctx, samples)
	if err != nil {
		return nil, err
	}
	m := NewMatrix()
	for _, s := range samples {
		m.Add(s, loaded[s])
	}
	return m, nil
}

// WriteMatrixFile writes m to path.
func WriteMatrixFile(path string, m *Matrix) error {
	return writeFile(path, m.Write)
}
