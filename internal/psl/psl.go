// Package psl reads BLAT PSL alignments into alignment records.
package psl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dbsmedya/mitobreak/internal/alignment"
	"github.com/dbsmedya/mitobreak/internal/reference"
)

// HeaderLines is the length of the header BLAT writes unless run with -noHead.
const HeaderLines = 5

// FieldCount is the number of columns of a PSL row.
const FieldCount = 21

// ErrMalformedRecord is returned for a row that cannot be parsed.
var ErrMalformedRecord = errors.New("malformed PSL record")

// ParseError describes where a row failed to parse.
type ParseError struct {
	Path  string
	Line  int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	loc := fmt.Sprintf("line %d", e.Line)
	if e.Path != "" {
		loc = e.Path + ":" + loc
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %v: field %s: %v", loc, ErrMalformedRecord, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", loc, ErrMalformedRecord, e.Err)
}

// Unwrap lets errors.Is match ErrMalformedRecord.
func (e *ParseError) Unwrap() error {
	return ErrMalformedRecord
}

// Row is one PSL line. Coordinates are kept exactly as written: 0-based
// starts, target positions against the doubled reference.
type Row struct {
	Matches     int
	MisMatches  int
	RepMatches  int
	NCount      int
	QNumInsert  int
	QBaseInsert int
	TNumInsert  int
	TBaseInsert int
	Strand      alignment.Strand
	QName       string
	QSize       int
	QStart      int
	QEnd        int
	TName       string
	TSize       int
	TStart      int
	TEnd        int
	BlockSizes  []int
	QStarts     []int
	TStarts     []int
}

// fieldNames indexes the PSL columns for error messages.
var fieldNames = [FieldCount]string{
	"matches", "misMatches", "repMatches", "nCount",
	"qNumInsert", "qBaseInsert", "tNumInsert", "tBaseInsert",
	"strand", "qName", "qSize", "qStart", "qEnd",
	"tName", "tSize", "tStart", "tEnd",
	"blockCount", "blockSizes", "qStarts", "tStarts",
}

// ParseRow parses a single whitespace-separated PSL line.
func ParseRow(line string) (*Row, error) {
	fields := strings.Fields(line)
	if len(fields) != FieldCount {
		return nil, &ParseError{Err: fmt.Errorf("expected %d fields, got %d", FieldCount, len(fields))}
	}

	var ints [FieldCount]int
	for i, f := range fields {
		switch i {
		case 8, 9, 13, 18, 19, 20:
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, &ParseError{Field: fieldNames[i], Err: err}
		}
		ints[i] = n
	}

	strand, err := alignment.ParseStrand(fields[8])
	if err != nil {
		return nil, &ParseError{Field: fieldNames[8], Err: err}
	}

	row := &Row{
		Matches:     ints[0],
		MisMatches:  ints[1],
		RepMatches:  ints[2],
		NCount:      ints[3],
		QNumInsert:  ints[4],
		QBaseInsert: ints[5],
		TNumInsert:  ints[6],
		TBaseInsert: ints[7],
		Strand:      strand,
		QName:       fields[9],
		QSize:       ints[10],
		QStart:      ints[11],
		QEnd:        ints[12],
		TName:       fields[13],
		TSize:       ints[14],
		TStart:      ints[15],
		TEnd:        ints[16],
	}

	for _, list := range []struct {
		idx int
		dst *[]int
	}{
		{18, &row.BlockSizes},
		{19, &row.QStarts},
		{20, &row.TStarts},
	} {
		values, err := parseList(fields[list.idx])
		if err != nil {
			return nil, &ParseError{Field: fieldNames[list.idx], Err: err}
		}
		*list.dst = values
	}

	if len(row.QStarts) != len(row.BlockSizes) || len(row.TStarts) != len(row.BlockSizes) {
		return nil, &ParseError{
			Field: fieldNames[18],
			Err: fmt.Errorf("block lists differ in length: %d sizes, %d qStarts, %d tStarts",
				len(row.BlockSizes), len(row.QStarts), len(row.TStarts)),
		}
	}
	return row, nil
}

// parseList parses a comma-terminated list such as "30,40,".
func parseList(s string) ([]int, error) {
	s = strings.TrimSuffix(s, ",")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// QueryBlock returns the i-th block in 1-based coordinates along the original
// read, undoing BLAT's reverse-strand query numbering.
func (r *Row) QueryBlock(i int) alignment.Interval {
	q, size := r.QStarts[i], r.BlockSizes[i]
	if r.Strand == alignment.Reverse {
		return alignment.Interval{Start: r.QSize - q - size + 1, End: r.QSize - q}
	}
	return alignment.Interval{Start: q + 1, End: q + size}
}

// TargetBlock returns the i-th block in 1-based coordinates on the doubled
// reference, without folding.
func (r *Row) TargetBlock(i int) alignment.Interval {
	t, size := r.TStarts[i], r.BlockSizes[i]
	return alignment.Interval{Start: t + 1, End: t + size}
}

// Record converts the row into an alignment record for mate, folding target
// coordinates onto the circle. Each endpoint is folded on its own.
func (r *Row) Record(m alignment.Mate, c *reference.Circle) alignment.Record {
	rec := alignment.Record{
		QueryID:        r.QName,
		Mate:           m,
		Strand:         r.Strand,
		Matches:        r.Matches,
		QueryGapCount:  r.QNumInsert,
		TargetGapCount: r.TNumInsert,
		Blocks:         make([]alignment.Block, len(r.BlockSizes)),
	}
	for i := range r.BlockSizes {
		t := r.TargetBlock(i)
		rec.Blocks[i] = alignment.Block{
			Query:  r.QueryBlock(i),
			Target: alignment.Interval{Start: c.Fold(t.Start), End: c.Fold(t.End)},
		}
	}
	return rec
}

// Reader reads PSL rows from an input stream.
type Reader struct {
	scanner    *bufio.Scanner
	path       string
	line       int
	skipHeader bool
}

// NewReader returns a Reader over r. When skipHeader is set the first
// HeaderLines lines are discarded. path is only used in error messages.
func NewReader(r io.Reader, path string, skipHeader bool) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Reader{scanner: s, path: path, skipHeader: skipHeader}
}

// Read returns the next row, or io.EOF when the input is exhausted.
func (r *Reader) Read() (*Row, error) {
	for r.scanner.Scan() {
		r.line++
		if r.skipHeader && r.line <= HeaderLines {
			continue
		}
		text := r.scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		row, err := ParseRow(text)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Path = r.path
				pe.Line = r.line
			}
			return nil, err
		}
		return row, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.path, err)
	}
	return nil, io.EOF
}

// ReadAll drains the reader.
func (r *Reader) ReadAll() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}
