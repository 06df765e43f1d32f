package evaluate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entityops/compliance-batch/internal/claims"
	"github.com/entityops/compliance-batch/internal/report"
	"github.com/entityops/compliance-batch/internal/schema"
)

func TestUnavailable(t *testing.T) {
	rep, err := Unavailable{}.Evaluate(context.Background(), claims.Claim{}, "BIZ-1", Options{})
	assert.NoError(t, err)
	assert.Nil(t, rep)
}

func TestHTTPEvaluator_RoundTrip(t *testing.T) {
	var received evaluationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(report.Report{
			ReferenceID: "REF-1",
			BusinessRef: received.BusinessRef,
			FinalEvaluation: report.FinalEvaluation{
				OverallCompliance:     true,
				ComplianceExplanation: "compliant",
			},
		})
	}))
	defer srv.Close()

	ev, err := NewHTTPEvaluator(srv.URL)
	require.NoError(t, err)

	claim := claims.Claim{schema.FieldBusinessName: "Acme Advisors"}
	rep, err := ev.Evaluate(context.Background(), claim, "BIZ-1", Options{SkipFinancials: true, SkipLegal: true})
	require.NoError(t, err)
	require.NotNil(t, rep)

	assert.True(t, rep.FinalEvaluation.OverallCompliance)
	assert.Equal(t, "BIZ-1", received.BusinessRef)
	assert.True(t, received.SkipFinancials)
	assert.True(t, received.SkipLegal)
	assert.Equal(t, "Acme Advisors", received.Claim[schema.FieldBusinessName])
}

func TestHTTPEvaluator_NotFoundMeansNoReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	ev, err := NewHTTPEvaluator(srv.URL)
	require.NoError(t, err)

	rep, err := ev.Evaluate(context.Background(), claims.Claim{}, "BIZ-1", Options{})
	assert.NoError(t, err)
	assert.Nil(t, rep)
}

func TestHTTPEvaluator_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ev, err := NewHTTPEvaluator(srv.URL)
	require.NoError(t, err)

	_, err = ev.Evaluate(context.Background(), claims.Claim{}, "BIZ-1", Options{})
	assert.Error(t, err)
}

func TestNewHTTPEvaluator_RejectsBadEndpoint(t *testing.T) {
	_, err := NewHTTPEvaluator("not a url")
	assert.Error(t, err)
	_, err = NewHTTPEvaluator("")
	assert.Error(t, err)
}
