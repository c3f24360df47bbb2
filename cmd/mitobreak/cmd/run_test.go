package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/mitobreak/internal/config"
	"github.com/dbsmedya/mitobreak/internal/pipeline"
	"github.com/dbsmedya/mitobreak/internal/report"
)

func TestSampleName(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		prefix string
		want   string
	}{
		{"explicit", "patient7", "out/s1", "patient7"},
		{"prefix base", "", "out/s1", "s1"},
		{"bare prefix", "", "s2", "s2"},
		{"trailing dot", "", "out/s3.", "s3"},
		{"current dir", "", ".", "sample"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sampleName(tt.sample, tt.prefix))
		})
	}
}

func TestDeletedLength(t *testing.T) {
	assert.Equal(t, 30, deletedLength(report.Call{Start: 41, End: 70}, 100))
	assert.Equal(t, 1, deletedLength(report.Call{Start: 5, End: 5}, 100))
	// Wraps the origin: 91..100 then 1..10.
	assert.Equal(t, 20, deletedLength(report.Call{Start: 91, End: 10}, 100))
}

func TestSortBySupport(t *testing.T) {
	calls := []report.Call{
		{Start: 10, End: 20, Count: 1},
		{Start: 30, End: 40, Count: 5},
		{Start: 5, End: 50, Count: 5},
		{Start: 5, End: 45, Count: 5},
	}
	sortBySupport(calls)
	assert.Equal(t, []report.Call{
		{Start: 5, End: 45, Count: 5},
		{Start: 5, End: 50, Count: 5},
		{Start: 30, End: 40, Count: 5},
		{Start: 10, End: 20, Count: 1},
	}, calls)
}

func TestPrintResult(t *testing.T) {
	cfg := config.DefaultConfig()
	res := &pipeline.Result{
		Sample:          "s1",
		ReferenceName:   "chrM",
		ReferenceLength: 16569,
		Duration:        time.Second,
		Queries:         12,
		Calls: []report.Call{
			{Start: 100, End: 200, Count: 1},
			{Start: 8470, End: 13447, Count: 9},
		},
		Support: 10,
	}

	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, cfg, "out/s1", res))
	plain := color.ClearCode(buf.String())

	assert.Contains(t, plain, "chrM (16569 bp)")
	assert.Contains(t, plain, "out/s1.breakpoints.txt")
	assert.NotContains(t, plain, ".vcf")
	// Highest support is listed first.
	assert.Less(t, strings.Index(plain, "8470"), strings.Index(plain, "100  "))
	assert.Contains(t, plain, "4978")
	assert.Contains(t, plain, "2 breakpoint(s) written")
}

func TestPrintResult_NoCalls(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, config.DefaultConfig(), "p", &pipeline.Result{Sample: "s"}))
	assert.Contains(t, color.ClearCode(buf.String()), "No breakpoints found")
}
