package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/entityops/compliance-batch/internal/claims"
	"github.com/entityops/compliance-batch/internal/schema"
)

func TestSkipped(t *testing.T) {
	claim := claims.Claim{schema.FieldBusinessRef: "BIZ-1"}
	reasons := []string{claims.ReasonNoBusinessName, claims.ReasonNoIdentifiers}

	r := Skipped("REF-1", claim, reasons)

	assert.Equal(t, "REF-1", r.ReferenceID)
	assert.Equal(t, "BIZ-1", r.BusinessRef)
	assert.False(t, r.SearchEvaluation.Compliance)
	assert.Contains(t, r.SearchEvaluation.ComplianceExplanation, claims.ReasonNoBusinessName)
	assert.Contains(t, r.SearchEvaluation.ComplianceExplanation, claims.ReasonNoIdentifiers)
	assert.False(t, r.FinalEvaluation.OverallCompliance)
	require.Len(t, r.FinalEvaluation.Alerts, 2)
	assert.Equal(t, claims.ReasonNoBusinessName, r.FinalEvaluation.Alerts[0].Description)
}

func TestUnevaluated(t *testing.T) {
	r := Unevaluated("REF-2", claims.Claim{})

	assert.False(t, r.FinalEvaluation.OverallCompliance)
	assert.Equal(t, "Processing failed", r.FinalEvaluation.ComplianceExplanation)
	require.Len(t, r.FinalEvaluation.Alerts, 1)
}

func TestWriter_Save(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, zap.NewNop())

	path, err := w.Save(Skipped("REF-3", claims.Claim{}, []string{claims.ReasonNoBusinessRef}))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "REF-3.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "REF-3", decoded.ReferenceID)
	assert.False(t, decoded.FinalEvaluation.OverallCompliance)
}

func TestWriter_SaveOverwrites(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, zap.NewNop())

	_, err := w.Save(Skipped("REF-4", claims.Claim{}, []string{claims.ReasonNoBusinessRef}))
	require.NoError(t, err)
	_, err = w.Save(Unevaluated("REF-4", claims.Claim{}))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
