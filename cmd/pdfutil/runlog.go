// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/pdfutil/internal/journal"
	"github.com/pdiddy/pdfutil/internal/merge"
	"github.com/pdiddy/pdfutil/internal/pipeline"
	"github.com/pdiddy/pdfutil/internal/protect"
	"github.com/pdiddy/pdfutil/pkg/types"
)

// mergeRun builds the journal row for a merge. Images that failed to
// convert count as skipped inputs.
func mergeRun(target string, report pipeline.MergeReport, err error, started time.Time) journal.Run {
	run := journal.Run{
		Kind:      journal.KindMerge,
		Target:    target,
		Output:    report.Merge.Output,
		Succeeded: len(report.Merge.Merged),
		Skipped:   report.Merge.Skipped + report.Normalize.Failed,
		Total:     report.Merge.Total() + report.Normalize.Failed,
		Leftover:  report.Cleanup.Leftover,
		StartedAt: started,
		Duration:  time.Since(started),
	}
	if report.Target != "" {
		run.Target = report.Target
	}

	switch {
	case err == nil:
		run.Outcome = journal.OutcomeMerged
	case errors.Is(err, merge.ErrNothingToMerge):
		run.Outcome = journal.OutcomeNothingToMerge
	case errors.Is(err, merge.ErrWriteFailed):
		run.Outcome = journal.OutcomeWriteFailed
	default:
		run.Outcome = journal.OutcomeError
	}
	return run
}

// protectRun builds the journal row for a protect run.
func protectRun(target string, res protect.Result, err error, started time.Time) journal.Run {
	run := journal.Run{
		Kind:      journal.KindProtect,
		Target:    target,
		Output:    res.OutputDir,
		Succeeded: res.Succeeded,
		Failed:    res.Failed(),
		Total:     res.Total,
		StartedAt: started,
		Duration:  time.Since(started),
	}

	switch {
	case err != nil:
		run.Outcome = journal.OutcomeError
	case res.Total == 0:
		run.Outcome = journal.OutcomeNoFiles
	default:
		run.Outcome = journal.OutcomeProtected
	}
	return run
}

// recordRun appends run to the journal. The journal is advisory: failures
// are reported on w and never change the command's outcome.
func recordRun(ctx context.Context, cfg types.JournalConfig, run journal.Run, w io.Writer) {
	if cfg.Path == "" {
		return
	}
	store, err := journal.Open(cfg.Path)
	if err != nil {
		fmt.Fprintf(w, "warning: journal: %v\n", err)
		return
	}
	defer store.Close()

	if _, err := store.Record(ctx, run); err != nil {
		fmt.Fprintf(w, "warning: journal: %v\n", err)
	}
}
