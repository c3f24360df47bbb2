// Package samio reads SAM and BAM alignments against the doubled reference
// and turns them into alignment records. Each mapped SAM record becomes the
// equivalent PSL row, so both evidence formats share one coordinate
// conversion.
package samio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/dbsmedya/mitobreak/internal/alignment"
	"github.com/dbsmedya/mitobreak/internal/psl"
	"github.com/dbsmedya/mitobreak/internal/reference"
)

// ErrMalformedRecord is returned for a mapped record without a usable CIGAR.
var ErrMalformedRecord = errors.New("malformed SAM record")

// ctxCheckInterval is how many records are read between context checks.
const ctxCheckInterval = 10000

var nmTag = []byte("NM")

type recordReader interface {
	Read() (*sam.Record, error)
}

// Provider reads evidence for both mates from a single SAM or BAM file.
// Files ending in .bam are read as BAM, anything else as SAM text.
type Provider struct {
	Path string
}

// NewProvider returns a Provider for path.
func NewProvider(path string) *Provider {
	return &Provider{Path: path}
}

// Evidence reads every mapped record and applies the ingestion rule.
func (p *Provider) Evidence(ctx context.Context, c *reference.Circle) (*alignment.Evidence, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open alignment file: %w", err)
	}
	defer f.Close()

	var r recordReader
	if strings.EqualFold(filepath.Ext(p.Path), ".bam") {
		br, err := bam.NewReader(f, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to read BAM header of %s: %w", p.Path, err)
		}
		defer br.Close()
		r = br
	} else {
		sr, err := sam.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read SAM header of %s: %w", p.Path, err)
		}
		r = sr
	}

	mate1, mate2, err := ReadRecords(ctx, r, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Path, err)
	}
	return alignment.Collect(mate1, mate2), nil
}

// ReadRecords drains r and splits mapped records by mate. Unpaired reads
// count as mate 1.
func ReadRecords(ctx context.Context, r recordReader, c *reference.Circle) (mate1, mate2 []alignment.Record, err error) {
	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return mate1, mate2, nil
		}
		if err != nil {
			return nil, nil, err
		}
		if rec.Flags&sam.Unmapped != 0 || rec.Ref == nil {
			continue
		}

		row, err := ToRow(rec)
		if err != nil {
			return nil, nil, err
		}
		if rec.Flags&sam.Read2 != 0 {
			mate2 = append(mate2, row.Record(alignment.Mate2, c))
		} else {
			mate1 = append(mate1, row.Record(alignment.Mate1, c))
		}
	}
}

// ToRow converts a mapped SAM record to the PSL row BLAT would have written
// for the same alignment. Query offsets count along SEQ as stored, which for
// reverse-strand reads is the reverse complement, matching PSL's convention.
// Hard clips are part of the query size.
func ToRow(rec *sam.Record) (*psl.Row, error) {
	if len(rec.Cigar) == 0 {
		return nil, fmt.Errorf("%w: %s has no CIGAR", ErrMalformedRecord, rec.Name)
	}

	row := &psl.Row{
		Strand: alignment.Forward,
		QName:  rec.Name,
		TName:  rec.Ref.Name(),
		TSize:  rec.Ref.Len(),
		TStart: rec.Pos,
	}
	if rec.Flags&sam.Reverse != 0 {
		row.Strand = alignment.Reverse
	}

	qOff, tOff := 0, rec.Pos
	inBlock := false
	aligned := 0
	for _, co := range rec.Cigar {
		n := co.Len()
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if !inBlock {
				row.QStarts = append(row.QStarts, qOff)
				row.TStarts = append(row.TStarts, tOff)
				row.BlockSizes = append(row.BlockSizes, 0)
				inBlock = true
			}
			row.BlockSizes[len(row.BlockSizes)-1] += n
			aligned += n
		case sam.CigarInsertion:
			inBlock = false
			row.QNumInsert++
			row.QBaseInsert += n
		case sam.CigarDeletion, sam.CigarSkipped:
			inBlock = false
			row.TNumInsert++
			row.TBaseInsert += n
		case sam.CigarSoftClipped, sam.CigarHardClipped:
			inBlock = false
		}

		con := co.Type().Consumes()
		if con.Query == 1 || co.Type() == sam.CigarHardClipped {
			qOff += n
		}
		tOff += n * con.Reference
	}

	if len(row.BlockSizes) == 0 {
		return nil, fmt.Errorf("%w: %s has no aligned bases", ErrMalformedRecord, rec.Name)
	}

	row.QSize = qOff
	row.TEnd = tOff
	row.QStart = row.QStarts[0]
	last := len(row.BlockSizes) - 1
	row.QEnd = row.QStarts[last] + row.BlockSizes[last]

	row.Matches = aligned
	if aux, ok := rec.Tag(nmTag); ok {
		if nm, ok := auxInt(aux.Value()); ok {
			row.MisMatches = nm
			row.Matches = aligned - nm
			if row.Matches < 0 {
				row.Matches = 0
			}
		}
	}
	return row, nil
}

func auxInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int8:
		return int(n), true
	case uint8:
		return int(n), true
	case int16:
		return int(n), true
	case uint16:
		return int(n), true
	case int32:
		return int(n), true
	case uint32:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
