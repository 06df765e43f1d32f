// =============================================================================
// Compliance Batch Processor - Batch Driver
// =============================================================================
//
// This module orchestrates one batch run over the drop folder. It composes
// everything else: folder lifecycle, checkpoint store, header resolver,
// row validation, evaluation collaborator, report writer, and record sink.
//
// PER-BATCH ALGORITHM:
//   1. Load any existing checkpoint.
//   2. List pending files (sorted). Files lexicographically less than the
//      checkpoint's file are assumed fully processed and are skipped.
//   3. The checkpointed file resumes at checkpoint.line; later files start
//      from the top.
//   4. Per file: resolve headers once, then per data row (numbered from 2):
//      build the canonical claim, validate, evaluate (or synthesize),
//      persist the report, flush audit entries, save the checkpoint, pace.
//   5. After a file: flush the sink, archive the source file.
//   6. After all files: clear the checkpoint.
//
// AUDIT BEFORE ADVANCE:
//   The sink is flushed for a row before that row's checkpoint is written,
//   so a crash cannot advance the checkpoint past an unrecorded skip or
//   error entry.
//
// INTERRUPTION:
//   Cancellation is observed between rows only; a row already in flight to
//   the evaluation collaborator finishes. On observation the driver saves
//   a checkpoint at the last fully completed row and returns
//   ErrInterrupted. No partial-row state is ever checkpointed.
//
// Execution is strictly sequential: one row is fully processed before the
// next begins. The inter-row wait paces calls to downstream registry
// agents and is not a correctness mechanism.
//
// =============================================================================

package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/entityops/compliance-batch/internal/checkpoint"
	"github.com/entityops/compliance-batch/internal/claims"
	"github.com/entityops/compliance-batch/internal/evaluate"
	"github.com/entityops/compliance-batch/internal/parser"
	"github.com/entityops/compliance-batch/internal/report"
	"github.com/entityops/compliance-batch/internal/schema"
	"github.com/entityops/compliance-batch/internal/sink"
	"github.com/entityops/compliance-batch/pkg/utils"
)

// ErrInterrupted reports that a run stopped on a cancellation signal after
// saving its checkpoint.
var ErrInterrupted = errors.New("batch interrupted")

// Summary aggregates the outcome of one batch run.
type Summary struct {
	// Files is the number of input files handled (including files that
	// failed to open; they are archived and recorded as errors).
	Files int

	// Records is the number of data rows processed this run, excluding
	// rows skipped by checkpoint resume.
	Records int

	// Skipped is the number of rows that failed validation.
	Skipped int

	// Errored is the number of rows or files that failed unexpectedly.
	Errored int
}

// Driver runs batches. It is single-threaded by design.
type Driver struct {
	fm     *utils.FileManager
	store  *checkpoint.Store
	sink   *sink.RecordSink
	writer *report.Writer
	eval   evaluate.Evaluator
	opts   evaluate.Options
	wait   time.Duration
	log    *zap.Logger
}

// New assembles a Driver from its collaborators.
func New(
	fm *utils.FileManager,
	store *checkpoint.Store,
	snk *sink.RecordSink,
	writer *report.Writer,
	eval evaluate.Evaluator,
	opts evaluate.Options,
	wait time.Duration,
	log *zap.Logger,
) *Driver {
	return &Driver{
		fm:     fm,
		store:  store,
		sink:   snk,
		writer: writer,
		eval:   eval,
		opts:   opts,
		wait:   wait,
		log:    log,
	}
}

// =============================================================================
// BATCH LOOP
// =============================================================================

// Run processes every pending file once. It returns ErrInterrupted when
// ctx is canceled mid-batch; the checkpoint is already saved by then.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	log := d.log.With(zap.String("run_id", uuid.NewString()))

	cp, resuming := d.store.Load()
	startFile, startLine := "", 0
	if resuming {
		startFile, startLine = cp.SourceFile, cp.Line
		log.Info("resuming from checkpoint",
			zap.String("source_file", startFile),
			zap.Int("line", startLine))
	}

	files, err := d.fm.PendingFiles()
	if err != nil {
		return Summary{}, err
	}
	if len(files) == 0 {
		log.Warn("no input files found", zap.String("input_dir", d.fm.InputDir))
		return Summary{}, nil
	}

	var sum Summary
	for _, name := range files {
		// The checkpoint encodes "this file and every smaller name is
		// done"; PendingFiles' sort order makes this comparison sound.
		if startFile != "" && name < startFile {
			log.Debug("skipping file completed before checkpoint", zap.String("source_file", name))
			continue
		}

		if err := d.processFile(ctx, log, name, startLine, &sum); err != nil {
			return sum, err
		}

		d.sink.Flush()
		if _, err := d.fm.ArchiveInputFile(name); err != nil {
			log.Error("failed to archive input file",
				zap.String("source_file", name), zap.Error(err))
		}
		sum.Files++
		startLine = 0
	}

	d.store.Clear()
	log.Info("batch complete",
		zap.Int("files", sum.Files),
		zap.Int("records", sum.Records),
		zap.Int("skipped", sum.Skipped),
		zap.Int("errored", sum.Errored))
	return sum, nil
}

// processFile iterates one input file's data rows, resuming past
// resumeLine. File-level failures are recorded and swallowed so the batch
// moves on; only interruption propagates.
func (d *Driver) processFile(ctx context.Context, log *zap.Logger, name string, resumeLine int, sum *Summary) error {
	flog := log.With(zap.String("source_file", name))
	flog.Info("processing file", zap.Int("resume_line", resumeLine))

	r, err := parser.Open(d.fm.InputPath(name))
	if err != nil {
		flog.Error("cannot read input file", zap.Error(err))
		d.sink.RecordError(name, nil, fmt.Sprintf("File read error: %v", err))
		d.sink.Flush()
		sum.Errored++
		return nil
	}
	defer r.Close()

	// Built once per file, reused for every row.
	resolved := schema.Resolve(r.Headers(), flog)

	lastCompleted := 0
	for {
		// Cancellation is observed here, between rows.
		select {
		case <-ctx.Done():
			if lastCompleted > 0 {
				d.store.Save(name, lastCompleted)
			}
			flog.Info("interrupt observed, stopping",
				zap.Int("last_completed_line", lastCompleted))
			return ErrInterrupted
		default:
		}

		row, line, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			// The rest of the file is unparsable from here; record it
			// once and move to the next file.
			flog.Error("cannot read input file", zap.Int("line", line), zap.Error(err))
			d.sink.RecordError(name, nil, fmt.Sprintf("File read error: %v", err))
			d.sink.Flush()
			sum.Errored++
			return nil
		}
		if line <= resumeLine {
			flog.Debug("skipping already-completed line", zap.Int("line", line))
			continue
		}

		d.processRow(ctx, flog, name, line, row, resolved, sum)

		// Audit entries first, checkpoint second: the checkpoint must
		// never advance past an unrecorded skip or error.
		d.sink.Flush()
		d.store.Save(name, line)
		lastCompleted = line
		sum.Records++

		if d.wait > 0 {
			select {
			case <-ctx.Done():
				// Observed at the top of the next iteration.
			case <-time.After(d.wait):
			}
		}
	}
}

// =============================================================================
// ROW PROCESSING
// =============================================================================

// processRow handles one data row end to end. Failures are contained:
// every exit path leaves the run able to continue with the next row.
func (d *Driver) processRow(ctx context.Context, flog *zap.Logger, name string, line int, row map[string]string, resolved map[string]string, sum *Summary) {
	claim := claims.Build(row, resolved)
	refID := claim.ReferenceID()
	rlog := flog.With(zap.Int("line", line), zap.String("reference_id", refID))

	valid, reasons := claims.Validate(claim)
	if !valid {
		for _, reason := range reasons {
			rlog.Warn("row failed validation", zap.String("reason", reason))
			d.sink.RecordSkip(name, row, reason)
		}
		sum.Skipped++

		// Best-effort evaluation so downstream systems still see why the
		// row was rejected; its result is not persisted.
		if _, err := d.eval.Evaluate(ctx, claim, claim.BusinessRef(), d.opts); err != nil {
			rlog.Warn("best-effort evaluation failed", zap.Error(err))
		}

		d.save(rlog, name, row, report.Skipped(refID, claim, reasons), sum)
		return
	}

	rep, err := d.eval.Evaluate(ctx, claim, claim.BusinessRef(), d.opts)
	if err != nil {
		rlog.Error("row processing failed", zap.Any("row", row), zap.Error(err))
		d.sink.RecordError(name, row, err.Error())
		sum.Errored++
		return
	}
	if rep == nil {
		rlog.Error("evaluation returned no report")
		rep = report.Unevaluated(refID, claim)
	}
	if rep.ReferenceID == "" {
		rep.ReferenceID = refID
	}

	d.save(rlog, name, row, rep, sum)
}

// save persists a report; a write failure becomes an error entry for the
// row rather than aborting the run.
func (d *Driver) save(rlog *zap.Logger, name string, row map[string]string, rep *report.Report, sum *Summary) {
	if _, err := d.writer.Save(rep); err != nil {
		rlog.Error("failed to save report", zap.Error(err))
		d.sink.RecordError(name, row, err.Error())
		sum.Errored++
	}
}
