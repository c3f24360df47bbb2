// Package pipeline runs breakpoint inference for one sample: it loads the
// reference and the alignment evidence, reconciles every query on a worker
// pool, merges repeat-equivalent breakpoints and hands the calls to the
// configured report sinks.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/dbsmedya/mitobreak/internal/alignment"
	"github.com/dbsmedya/mitobreak/internal/breakpoint"
	"github.com/dbsmedya/mitobreak/internal/config"
	"github.com/dbsmedya/mitobreak/internal/logger"
	"github.com/dbsmedya/mitobreak/internal/reference"
	"github.com/dbsmedya/mitobreak/internal/report"
)

// Result contains statistics and the final calls of one run.
type Result struct {
	Sample      string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration

	ReferenceName   string
	ReferenceLength int
	Queries         int
	Records         int
	Candidates      int // (mate, breakpoint) pairs before reconciliation
	Supported       int // distinct breakpoints before the global merge
	Merged          int // breakpoints folded into a repeat-equivalent one
	Support         int // total support units
	Calls           []report.Call
}

// Orchestrator coordinates one sample's run.
type Orchestrator struct {
	sample     string
	reference  reference.Provider
	evidence   alignment.Provider
	processing config.ProcessingConfig
	sinks      []report.Sink
	logger     *logger.Logger
}

// NewOrchestrator creates an orchestrator for sample.
func NewOrchestrator(sample string, ref reference.Provider, ev alignment.Provider, processing config.ProcessingConfig) (*Orchestrator, error) {
	if ref == nil {
		return nil, fmt.Errorf("reference provider is nil")
	}
	if ev == nil {
		return nil, fmt.Errorf("evidence provider is nil")
	}
	if processing.MinAlignmentLength <= 0 {
		return nil, fmt.Errorf("min alignment length must be positive, got %d", processing.MinAlignmentLength)
	}

	return &Orchestrator{
		sample:     sample,
		reference:  ref,
		evidence:   ev,
		processing: processing,
		logger:     logger.NewDefault(),
	}, nil
}

// SetLogger sets a custom logger for the orchestrator.
func (o *Orchestrator) SetLogger(log *logger.Logger) {
	if log != nil {
		o.logger = log
	}
}

// AddSink registers a sink that receives the final calls.
func (o *Orchestrator) AddSink(s report.Sink) {
	o.sinks = append(o.sinks, s)
}

// Execute runs the pipeline. The context is checked between stages; a stage
// that has started runs to completion.
func (o *Orchestrator) Execute(ctx context.Context) (*Result, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is nil")
	}

	result := &Result{
		Sample:    o.sample,
		StartedAt: time.Now(),
	}
	log := o.logger.WithSample(o.sample)

	ref, err := o.reference.Reference()
	if err != nil {
		return nil, fmt.Errorf("failed to load reference: %w", err)
	}
	circle := ref.Circle()
	result.ReferenceName = ref.Name
	result.ReferenceLength = circle.Len()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ev, err := o.evidence.Evidence(ctx, circle)
	if err != nil {
		return nil, fmt.Errorf("failed to read alignment evidence: %w", err)
	}
	result.Queries = ev.Len()
	result.Records = ev.RecordCount()

	log.Infow("Loaded alignment evidence",
		"reference", ref.Name,
		"reference_length", circle.Len(),
		"queries", result.Queries,
		"records", result.Records,
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workers := o.processing.EffectiveWorkers()
	rec := breakpoint.NewReconciler(circle, o.processing.MinAlignmentLength)
	queries, err := ReconcileAll(rec, ev, workers, log)
	if err != nil {
		return nil, err
	}

	table := breakpoint.Aggregate(queries)
	for _, q := range queries {
		result.Candidates += q.Raw
	}
	result.Supported = table.Len()
	log.WithStage(breakpoint.StageReconcile).Infow("Reconciled queries",
		"workers", workers,
		"candidates", result.Candidates,
		"breakpoints", result.Supported,
		"support", table.Total(),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged, err := table.MergeRepeats(circle)
	if err != nil {
		return nil, err
	}
	result.Merged = merged
	result.Support = table.Total()
	log.WithStage(breakpoint.StageMerge).Infow("Merged repeat-equivalent breakpoints",
		"merged", merged,
		"remaining", table.Len(),
	)

	result.Calls = report.Build(table, circle.Len())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := report.WriteAll(ctx, o.sinks, o.sample, result.Calls); err != nil {
		return nil, err
	}

	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)

	log.Infow("Breakpoint inference completed",
		"calls", len(result.Calls),
		"support", result.Support,
		"duration", result.Duration,
	)

	return result, nil
}

// ReconcileAll reconciles every query of ev on at most workers goroutines.
// Workers only read ev; results are returned sorted by query ID. A query that
// fails is logged with its ID before the error is returned.
func ReconcileAll(rec *breakpoint.Reconciler, ev *alignment.Evidence, workers int, log *logger.Logger) ([]breakpoint.QueryResult, error) {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithStage(breakpoint.StageReconcile)
	reconcile := func(id string) (breakpoint.QueryResult, error) {
		r, err := rec.Query(ev.Query(id))
		if err != nil {
			log.WithQuery(id).Errorw("Query reconciliation failed", "error", err)
		}
		return r, err
	}

	ids := ev.QueryIDs()
	if workers < 1 {
		workers = 1
	}

	if workers == 1 {
		out := make([]breakpoint.QueryResult, 0, len(ids))
		for _, id := range ids {
			r, err := reconcile(id)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	}

	p := pool.NewWithResults[breakpoint.QueryResult]().WithErrors().WithMaxGoroutines(workers)
	for _, id := range ids {
		id := id
		p.Go(func() (breakpoint.QueryResult, error) {
			return reconcile(id)
		})
	}

	out, err := p.Wait()
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QueryID < out[j].QueryID })
	return out, nil
}
