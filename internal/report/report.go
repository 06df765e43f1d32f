// =============================================================================
// Compliance Batch Processor - Evaluation Reports
// =============================================================================
//
// One report artifact is written per processed row, keyed by reference id.
// The shape mirrors what the evaluation collaborator returns: a search
// evaluation plus a final evaluation carrying the top-level compliance
// flag, an explanation, and an alerts list. This package also synthesizes
// the two fallback shapes the batch driver needs:
//
//   - a non-compliant report for rows that failed validation, embedding
//     every violated rule, and
//   - a failure report for rows where the collaborator returned nothing.
//
// =============================================================================

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/entityops/compliance-batch/internal/claims"
)

// =============================================================================
// REPORT MODEL
// =============================================================================

// Alert is one flagged condition in a final evaluation.
type Alert struct {
	Description string `json:"description"`
}

// SearchEvaluation summarizes the registry-search stage of an evaluation.
type SearchEvaluation struct {
	Compliance            bool   `json:"compliance"`
	ComplianceExplanation string `json:"compliance_explanation"`
}

// FinalEvaluation carries the top-level outcome of an evaluation.
type FinalEvaluation struct {
	OverallCompliance     bool    `json:"overall_compliance"`
	ComplianceExplanation string  `json:"compliance_explanation"`
	Alerts                []Alert `json:"alerts"`
}

// Report is the per-row result artifact.
type Report struct {
	ReferenceID      string           `json:"reference_id"`
	BusinessRef      string           `json:"business_ref"`
	Claim            claims.Claim     `json:"claim"`
	SearchEvaluation SearchEvaluation `json:"search_evaluation"`
	FinalEvaluation  FinalEvaluation  `json:"final_evaluation"`
}

// =============================================================================
// SYNTHETIC REPORTS
// =============================================================================

// Skipped builds the non-compliant report for a row that failed validation.
// Every violated rule appears both in the explanation and as an alert.
func Skipped(referenceID string, claim claims.Claim, reasons []string) *Report {
	alerts := make([]Alert, 0, len(reasons))
	for _, reason := range reasons {
		alerts = append(alerts, Alert{Description: reason})
	}
	return &Report{
		ReferenceID: referenceID,
		BusinessRef: claim.BusinessRef(),
		Claim:       claim,
		SearchEvaluation: SearchEvaluation{
			Compliance:            false,
			ComplianceExplanation: fmt.Sprintf("Insufficient data: %s", strings.Join(reasons, ", ")),
		},
		FinalEvaluation: FinalEvaluation{
			OverallCompliance:     false,
			ComplianceExplanation: "Skipped due to insufficient data",
			Alerts:                alerts,
		},
	}
}

// Unevaluated builds the failure report for a row whose evaluation
// collaborator produced no report.
func Unevaluated(referenceID string, claim claims.Claim) *Report {
	const cause = "evaluation returned no report"
	return &Report{
		ReferenceID: referenceID,
		BusinessRef: claim.BusinessRef(),
		Claim:       claim,
		SearchEvaluation: SearchEvaluation{
			Compliance:            false,
			ComplianceExplanation: "Processing failed: " + cause,
		},
		FinalEvaluation: FinalEvaluation{
			OverallCompliance:     false,
			ComplianceExplanation: "Processing failed",
			Alerts:                []Alert{{Description: cause}},
		},
	}
}

// =============================================================================
// REPORT WRITER
// =============================================================================

// Writer persists reports to the output directory as
// <output>/<reference id>.json. Reference ids are used verbatim as file
// names; a repeated id overwrites the earlier artifact.
type Writer struct {
	outputDir string
	log       *zap.Logger
}

// NewWriter returns a Writer targeting outputDir.
func NewWriter(outputDir string, log *zap.Logger) *Writer {
	return &Writer{outputDir: outputDir, log: log}
}

// Save writes one report artifact and returns its path.
func (w *Writer) Save(r *Report) (string, error) {
	path := filepath.Join(w.outputDir, r.ReferenceID+".json")

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report %s: %w", r.ReferenceID, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save report %s: %w", r.ReferenceID, err)
	}

	w.log.Info("report saved",
		zap.String("reference_id", r.ReferenceID),
		zap.Bool("overall_compliance", r.FinalEvaluation.OverallCompliance),
		zap.String("path", path))
	return path, nil
}
