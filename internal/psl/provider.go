package psl

import (
	"context"
	"fmt"
	"os"

	"github.com/dbsmedya/mitobreak/internal/alignment"
	"github.com/dbsmedya/mitobreak/internal/reference"
)

// ReadFile parses every row of a PSL file into records for mate.
func ReadFile(path string, m alignment.Mate, c *reference.Circle, skipHeader bool) ([]alignment.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PSL file: %w", err)
	}
	defer f.Close()

	rows, err := NewReader(f, path, skipHeader).ReadAll()
	if err != nil {
		return nil, err
	}

	records := make([]alignment.Record, len(rows))
	for i, row := range rows {
		records[i] = row.Record(m, c)
	}
	return records, nil
}

// Provider reads evidence from one PSL file per mate.
type Provider struct {
	Mate1Path  string
	Mate2Path  string
	SkipHeader bool
}

// NewProvider returns a Provider for the two mate files. BLAT headers are
// skipped by default.
func NewProvider(mate1Path, mate2Path string) *Provider {
	return &Provider{Mate1Path: mate1Path, Mate2Path: mate2Path, SkipHeader: true}
}

// Evidence reads both files and applies the ingestion rule.
func (p *Provider) Evidence(ctx context.Context, c *reference.Circle) (*alignment.Evidence, error) {
	mate1, err := ReadFile(p.Mate1Path, alignment.Mate1, c, p.SkipHeader)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mate2, err := ReadFile(p.Mate2Path, alignment.Mate2, c, p.SkipHeader)
	if err != nil {
		return nil, err
	}

	return alignment.Collect(mate1, mate2), nil
}
