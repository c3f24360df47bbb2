package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dbsmedya/mitobreak/internal/alignment"
	"github.com/dbsmedya/mitobreak/internal/config"
	"github.com/dbsmedya/mitobreak/internal/display"
	"github.com/dbsmedya/mitobreak/internal/logger"
	"github.com/dbsmedya/mitobreak/internal/pipeline"
	"github.com/dbsmedya/mitobreak/internal/reference"
	"github.com/dbsmedya/mitobreak/internal/report"
	"github.com/dbsmedya/mitobreak/internal/store"
)

// summaryCalls is the number of calls shown in the terminal summary.
const summaryCalls = 10

// sampleRun describes one sample's inference run.
type sampleRun struct {
	Sample    string
	Prefix    string
	Reference *reference.Reference
	Evidence  alignment.Provider
}

// runSample executes the pipeline and writes every configured sink.
func runSample(ctx context.Context, cfg *config.Config, log *logger.Logger, run sampleRun) (*pipeline.Result, error) {
	orch, err := pipeline.NewOrchestrator(run.Sample, run.Reference, run.Evidence, cfg.Processing)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	orch.SetLogger(log)

	orch.AddSink(&report.TSVSink{Path: report.BreakpointsPath(run.Prefix)})
	if cfg.Output.VCF {
		orch.AddSink(&report.VCFSink{Path: report.VCFPath(run.Prefix), Reference: run.Reference})
	}

	db, closeDB, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	defer closeDB()
	if db != nil {
		orch.AddSink(db)
	}

	result, err := orch.Execute(ctx)
	if err != nil {
		return nil, err
	}

	if db != nil {
		vr, err := db.VerifyCalls(ctx, run.Sample, result.Calls, store.MethodSHA256)
		if err != nil {
			return nil, fmt.Errorf("failed to verify published calls: %w", err)
		}
		if !vr.Match {
			return nil, fmt.Errorf("published calls for %s do not match: %s", run.Sample, vr.ErrorMessage)
		}
		log.Infow("Verified published calls", "sample", run.Sample, "rows", vr.StoredCount)
	}

	return result, nil
}

// printResult writes the run summary and the best-supported calls.
func printResult(w io.Writer, cfg *config.Config, prefix string, res *pipeline.Result) error {
	fmt.Fprintf(w, "\n%s\n", display.Heading("Breakpoint Calling Complete"))

	var kv display.KeyValues
	kv.Add("Sample", res.Sample)
	kv.Add("Reference", fmt.Sprintf("%s (%d bp)", res.ReferenceName, res.ReferenceLength))
	kv.Add("Duration", res.Duration)
	kv.Add("Queries", res.Queries)
	kv.Add("Alignments", res.Records)
	kv.Add("Candidates", res.Candidates)
	kv.Add("Merged", res.Merged)
	kv.Add("Calls", len(res.Calls))
	kv.Add("Support", res.Support)
	kv.Add("Breakpoints", report.BreakpointsPath(prefix))
	if cfg.Output.VCF {
		kv.Add("VCF", report.VCFPath(prefix))
	}
	if cfg.ResultsDB.Enabled {
		kv.Add("Results table", cfg.ResultsDB.Database+"."+cfg.ResultsDB.Table)
	}
	if err := kv.Render(w); err != nil {
		return err
	}

	if len(res.Calls) == 0 {
		fmt.Fprintln(w, display.Warn("No breakpoints found"))
		return nil
	}

	top := make([]report.Call, len(res.Calls))
	copy(top, res.Calls)
	sortBySupport(top)
	if len(top) > summaryCalls {
		top = top[:summaryCalls]
	}

	fmt.Fprintln(w)
	tbl := display.NewTable("Start", "End", "Deleted", "Support")
	for _, c := range top {
		tbl.AddRow(strconv.Itoa(c.Start), strconv.Itoa(c.End), strconv.Itoa(deletedLength(c, res.ReferenceLength)), strconv.Itoa(c.Count))
	}
	if err := tbl.Render(w); err != nil {
		return err
	}
	fmt.Fprintln(w, display.Pass("%d breakpoint(s) written", len(res.Calls)))
	return nil
}

// deletedLength is the number of bases between start and end inclusive,
// walking forward around the circle.
func deletedLength(c report.Call, length int) int {
	if c.End >= c.Start {
		return c.End - c.Start + 1
	}
	return length - c.Start + 1 + c.End
}

// sortBySupport orders calls by support descending, then by position.
func sortBySupport(calls []report.Call) {
	sort.SliceStable(calls, func(i, j int) bool {
		if calls[i].Count != calls[j].Count {
			return calls[i].Count > calls[j].Count
		}
		if calls[i].Start != calls[j].Start {
			return calls[i].Start < calls[j].Start
		}
		return calls[i].End < calls[j].End
	})
}
