// =============================================================================
// Compliance Batch Processor - Canonical Claims
// =============================================================================
//
// A canonical claim is the per-row mapping of canonical field name to value
// that gets handed to the external evaluation collaborator. Claims are
// transient: built from one source row via the file's resolved header map,
// used for validation and evaluation, then discarded.
//
// =============================================================================

package claims

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/entityops/compliance-batch/internal/schema"
)

// Claim maps canonical field names to trimmed string values for one row.
type Claim map[string]string

// Build converts one raw row into a canonical claim using the file's
// resolved header map. Values are whitespace-trimmed. The business_ref key
// is always present (possibly empty) so validation and evaluation never
// have to distinguish missing-key from missing-value.
func Build(row map[string]string, resolved map[string]string) Claim {
	claim := make(Claim, len(resolved)+1)
	for header, canonical := range resolved {
		claim[canonical] = strings.TrimSpace(row[header])
	}
	if _, ok := claim[schema.FieldBusinessRef]; !ok {
		claim[schema.FieldBusinessRef] = ""
	}
	return claim
}

// BusinessRef returns the claim's business reference, which may be empty.
func (c Claim) BusinessRef() string {
	return c[schema.FieldBusinessRef]
}

// =============================================================================
// REFERENCE IDENTIFIERS
// =============================================================================

// ReferenceID returns the identifier used to key the row's result artifact.
//
// Preference order:
//  1. the row's own reference id,
//  2. "TAX-<tax id>" when a tax id is present,
//  3. "DEF-" followed by 12 random digits.
//
// Reference ids become output file names directly; collisions overwrite.
func (c Claim) ReferenceID() string {
	if ref := strings.TrimSpace(c[schema.FieldReferenceID]); ref != "" {
		return ref
	}
	return GenerateReferenceID(c[schema.FieldTaxID])
}

// GenerateReferenceID synthesizes a reference id from a tax id when one is
// present, otherwise generates a random default identifier.
func GenerateReferenceID(taxID string) string {
	if t := strings.TrimSpace(taxID); t != "" {
		return "TAX-" + t
	}
	return fmt.Sprintf("DEF-%012d", rand.Int63n(900000000000)+100000000000)
}
