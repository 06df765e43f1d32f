// =============================================================================
// Compliance Batch Processor - Evaluation Collaborator Contract
// =============================================================================
//
// The actual compliance evaluation (registry lookups, disclosure review,
// report assembly) lives outside this repository. The batch driver consumes
// it through the narrow Evaluator contract below: one canonical claim in,
// one report (or nothing) out. The driver only inspects the report's
// compliance flag, explanation, and alerts when synthesizing fallbacks;
// everything else passes through verbatim.
//
// IMPLEMENTATIONS:
//   - HTTPEvaluator posts claims to a deployed evaluation service.
//   - Unavailable stands in when no service is configured; the driver
//     turns its nil report into a failure artifact.
//
// =============================================================================

package evaluate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/entityops/compliance-batch/internal/claims"
	"github.com/entityops/compliance-batch/internal/report"
)

// Options are the pass-through flags for optional extended checks.
type Options struct {
	// SkipFinancials disables the extended financial review.
	SkipFinancials bool

	// SkipLegal disables the extended legal review.
	SkipLegal bool
}

// Evaluator evaluates one canonical claim.
//
// A nil report with a nil error means the collaborator could not produce a
// result; callers synthesize a failure report in that case. A non-nil
// error is an unexpected processing failure and is recorded as an error
// entry for the row.
type Evaluator interface {
	Evaluate(ctx context.Context, claim claims.Claim, businessRef string, opts Options) (*report.Report, error)
}

// Func adapts a plain function to the Evaluator interface.
type Func func(ctx context.Context, claim claims.Claim, businessRef string, opts Options) (*report.Report, error)

// Evaluate implements Evaluator.
func (f Func) Evaluate(ctx context.Context, claim claims.Claim, businessRef string, opts Options) (*report.Report, error) {
	return f(ctx, claim, businessRef, opts)
}

// =============================================================================
// UNAVAILABLE COLLABORATOR
// =============================================================================

// Unavailable is the Evaluator used when no evaluation service is
// configured. It always reports "no result".
type Unavailable struct{}

// Evaluate returns no report and no error.
func (Unavailable) Evaluate(context.Context, claims.Claim, string, Options) (*report.Report, error) {
	return nil, nil
}

// =============================================================================
// HTTP COLLABORATOR
// =============================================================================

// HTTPEvaluator calls a deployed evaluation service over HTTP. The service
// accepts a claim payload and responds with a report in the shape this
// pipeline persists.
type HTTPEvaluator struct {
	endpoint string
	client   *http.Client
}

// evaluationRequest is the wire payload for one evaluation call.
type evaluationRequest struct {
	Claim          claims.Claim `json:"claim"`
	BusinessRef    string       `json:"business_ref"`
	SkipFinancials bool         `json:"skip_financials"`
	SkipLegal      bool         `json:"skip_legal"`
}

// NewHTTPEvaluator validates the endpoint URL and returns an HTTPEvaluator.
func NewHTTPEvaluator(endpoint string) (*HTTPEvaluator, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid evaluator endpoint %q", endpoint)
	}
	return &HTTPEvaluator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Evaluate posts the claim and decodes the returned report. A 404 from the
// service means it had no result for this entity and maps to (nil, nil).
func (e *HTTPEvaluator) Evaluate(ctx context.Context, claim claims.Claim, businessRef string, opts Options) (*report.Report, error) {
	body, err := json.Marshal(evaluationRequest{
		Claim:          claim,
		BusinessRef:    businessRef,
		SkipFinancials: opts.SkipFinancials,
		SkipLegal:      opts.SkipLegal,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode evaluation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build evaluation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("evaluation call failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("evaluation service returned %s", resp.Status)
	}

	var rep report.Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		return nil, fmt.Errorf("failed to decode evaluation response: %w", err)
	}
	return &rep, nil
}
