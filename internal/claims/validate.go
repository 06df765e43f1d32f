// =============================================================================
// Compliance Batch Processor - Row Validation
// =============================================================================
//
// Validation decides whether a row carries enough identifying data to be
// worth a full evaluation. It inspects nothing beyond the canonical claim;
// the evaluation collaborator's own rules live elsewhere.
//
// The rules are a declarative table so they stay independently testable and
// extensible without touching the batch driver. All rules are evaluated:
// a row that violates several reports every reason, not just the first.
//
// =============================================================================

package claims

import "github.com/entityops/compliance-batch/internal/schema"

// Skip reasons, one per validation rule. The exact strings appear in
// synthetic reports and in the skipped-records audit file.
const (
	ReasonNoBusinessRef  = "Missing business reference"
	ReasonNoBusinessName = "Missing business name"
	ReasonNoIdentifiers  = "Missing all identifiers (organization_crd, business_name)"
)

// rule is one validation check: a reason and the predicate that flags it.
type rule struct {
	reason string
	failed func(Claim) bool
}

var rules = []rule{
	{ReasonNoBusinessRef, func(c Claim) bool {
		return c[schema.FieldBusinessRef] == ""
	}},
	{ReasonNoBusinessName, func(c Claim) bool {
		return c[schema.FieldBusinessName] == ""
	}},
	{ReasonNoIdentifiers, func(c Claim) bool {
		return c[schema.FieldOrganizationCRD] == "" && c[schema.FieldBusinessName] == ""
	}},
}

// Validate runs every rule against the claim and returns whether the row
// is processable plus the full list of violated reasons. Claim values are
// already trimmed by Build, so the predicates compare against "".
func Validate(c Claim) (bool, []string) {
	var reasons []string
	for _, r := range rules {
		if r.failed(c) {
			reasons = append(reasons, r.reason)
		}
	}
	return len(reasons) == 0, reasons
}
