// =============================================================================
// Compliance Batch Processor - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs one batch over the
// drop directory (or stays resident with --watch).
//
// COMMAND USAGE:
//   compliance-batch process [flags]
//
// FLAGS:
//   --wait-time        : Pause after each processed row (rate pacing)
//   --skip-financials  : Skip the extended financial review
//   --skip-legal       : Skip the extended legal review
//   --evaluator        : Evaluation service endpoint URL
//   --watch            : Keep running and process new files as they arrive
//
// PROCESSING PIPELINE:
//   1. Load configuration and build the logger
//   2. Ensure the drop/output/archive directories exist (fatal on failure)
//   3. Load any checkpoint and resume where the last run stopped
//   4. For each pending file, in lexicographic order:
//      a. Resolve the header row against the canonical alias table
//      b. Validate and evaluate each data row, one at a time
//      c. Persist one report artifact per row, advancing the checkpoint
//      d. Flush skip/error audit entries and archive the source file
//   5. Clear the checkpoint and report summary counts
//
// An interrupt (SIGINT/SIGTERM) between rows saves the checkpoint for the
// last completed row and shuts down cleanly.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/entityops/compliance-batch/internal/checkpoint"
	"github.com/entityops/compliance-batch/internal/config"
	"github.com/entityops/compliance-batch/internal/driver"
	"github.com/entityops/compliance-batch/internal/evaluate"
	"github.com/entityops/compliance-batch/internal/logging"
	"github.com/entityops/compliance-batch/internal/report"
	"github.com/entityops/compliance-batch/internal/sink"
	"github.com/entityops/compliance-batch/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// waitTime overrides the configured pause between rows.
var waitTime time.Duration

// skipFinancials and skipLegal override the configured extended-check flags.
var skipFinancials bool
var skipLegal bool

// evaluatorURL overrides the configured evaluation service endpoint.
var evaluatorURL string

// watch keeps the process resident, re-running the batch when new files
// land in the drop directory.
var watch bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process pending compliance record files from the drop directory",
	Long: `The process command scans the drop directory for delimited record files
(CSV or XLSX), evaluates every data row against the compliance evaluation
service, and writes one report artifact per row to the output directory.

Rows that lack required identifying fields are recorded in the skipped
audit file and still produce a synthetic non-compliant report. Rows that
fail unexpectedly are recorded in the errors audit file and produce no
report. Completed source files move to a dated archive subfolder.

A checkpoint in the output directory records the last completed row, so an
interrupted run resumes without reprocessing committed work.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().DurationVar(
		&waitTime,
		"wait-time",
		config.DefaultWaitTime,
		"Pause after each processed row (rate pacing for downstream services)",
	)
	processCmd.Flags().BoolVar(
		&skipFinancials,
		"skip-financials",
		true,
		"Skip the extended financial review for all claims",
	)
	processCmd.Flags().BoolVar(
		&skipLegal,
		"skip-legal",
		true,
		"Skip the extended legal review for all claims",
	)
	processCmd.Flags().StringVar(
		&evaluatorURL,
		"evaluator",
		"",
		"Evaluation service endpoint URL (overrides config)",
	)
	processCmd.Flags().BoolVar(
		&watch,
		"watch",
		false,
		"Keep running and process new files as they arrive",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess wires the pipeline together and runs it.
func runProcess(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagOverrides(cmd, cfg)

	wait := cfg.Wait()
	if cmd.Flags().Changed("wait-time") {
		wait = waitTime
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogJSON, verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	// Interrupts are observed between rows; the driver checkpoints the
	// last completed row before shutting down.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.ArchiveDir, log)
	if err := fm.EnsureDirectories(); err != nil {
		// Without its directories the pipeline cannot guarantee any of
		// its durability invariants.
		return fmt.Errorf("folder setup failed: %w", err)
	}

	evaluator, err := buildEvaluator(cfg, log)
	if err != nil {
		return err
	}

	drv := driver.New(
		fm,
		checkpoint.NewStore(fm.CheckpointPath(), log),
		sink.New(fm.ArchiveSubdir, log),
		report.NewWriter(cfg.OutputDir, log),
		evaluator,
		evaluate.Options{
			SkipFinancials: *cfg.SkipFinancials,
			SkipLegal:      *cfg.SkipLegal,
		},
		wait,
		log,
	)

	if watch {
		err = drv.Watch(ctx)
	} else {
		var sum driver.Summary
		sum, err = drv.Run(ctx)
		fmt.Printf("Processed %d files, %d records, %d skipped\n",
			sum.Files, sum.Records, sum.Skipped)
	}

	if errors.Is(err, driver.ErrInterrupted) {
		log.Info("shut down on interrupt, checkpoint saved")
		return nil
	}
	return err
}

// applyFlagOverrides copies explicitly set command-line flags over the
// configured values.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("skip-financials") {
		cfg.SkipFinancials = &skipFinancials
	}
	if cmd.Flags().Changed("skip-legal") {
		cfg.SkipLegal = &skipLegal
	}
	if cmd.Flags().Changed("evaluator") {
		cfg.EvaluatorURL = evaluatorURL
	}
}

// buildEvaluator selects the evaluation collaborator. With no endpoint
// configured every row gets a synthesized failure report, which keeps the
// pipeline (and its audit trail) usable without the service.
func buildEvaluator(cfg *config.Config, log *zap.Logger) (evaluate.Evaluator, error) {
	if cfg.EvaluatorURL == "" {
		log.Warn("no evaluation service configured; reports will record the collaborator as unavailable")
		return evaluate.Unavailable{}, nil
	}
	ev, err := evaluate.NewHTTPEvaluator(cfg.EvaluatorURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure evaluator: %w", err)
	}
	log.Info("using evaluation service", zap.String("endpoint", cfg.EvaluatorURL))
	return ev, nil
}
