package psl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dbsmedya/mitobreak/internal/alignment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePSL(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()
	content := header
	for _, row := range rows {
		content += row + "\n"
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProvider_Evidence(t *testing.T) {
	dir := t.TempDir()
	lone := "71\t0\t0\t0\t0\t0\t0\t0\t+\tq2\t71\t0\t71\tchrM\t200\t19\t90\t1\t71,\t0,\t19,"

	p := NewProvider(
		writePSL(t, dir, "s.read_1.psl", splitForward),
		writePSL(t, dir, "s.read_2.psl", singleBlock, lone),
	)

	ev, err := p.Evidence(context.Background(), testCircle())
	require.NoError(t, err)

	assert.Equal(t, 1, ev.Len())
	q := ev.Query("q1")
	require.NotNil(t, q)
	assert.Len(t, q.Records(alignment.Mate1), 1)
	assert.Len(t, q.Records(alignment.Mate2), 1)
	assert.Nil(t, ev.Query("q2"))
}

func TestProvider_MissingFile(t *testing.T) {
	p := NewProvider(filepath.Join(t.TempDir(), "absent.psl"), "")

	_, err := p.Evidence(context.Background(), testCircle())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open PSL file")
}

func TestProvider_Cancelled(t *testing.T) {
	dir := t.TempDir()
	p := NewProvider(
		writePSL(t, dir, "a.psl", splitForward),
		writePSL(t, dir, "b.psl"),
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Evidence(ctx, testCircle())
	assert.ErrorIs(t, err, context.Canceled)
}
