// =============================================================================
// Compliance Batch Processor - Canonical Field Schema
// =============================================================================
//
// This module owns the canonical field set for business-entity compliance
// records and the header resolver that maps arbitrary source-column names
// onto it. Input files arrive from many upstream systems that disagree on
// column spelling ("Business Name", "businessName", "firm_name", ...), so
// every file's header row is resolved once against the alias table below
// and the resulting map is reused for every row in that file.
//
// RESOLUTION RULES:
//   - Matching is case-insensitive and whitespace-trimmed on both sides.
//   - Canonical fields are declared in order; if two fields ever shared an
//     alias, the first declared field wins. This makes resolution
//     deterministic rather than map-iteration-dependent.
//   - A column that matches no alias maps to itself, so unknown columns
//     still reach downstream consumers under their original name.
//   - Empty or whitespace-only column names are dropped with a diagnostic.
//
// This table is the single source of truth for canonical names. Components
// that need a canonical field name (validation, reference-id fallback)
// reference the constants below instead of re-spelling strings.
//
// =============================================================================

package schema

import (
	"strings"

	"go.uber.org/zap"
)

// =============================================================================
// CANONICAL FIELD NAMES
// =============================================================================

// Canonical field names used across the pipeline.
const (
	FieldReferenceID     = "reference_id"
	FieldWorkProduct     = "work_product"
	FieldBusinessRef     = "business_ref"
	FieldBusinessName    = "business_name"
	FieldNormalizedName  = "normalized_name"
	FieldPrincipal       = "principal"
	FieldTaxID           = "tax_id"
	FieldOrganizationCRD = "organization_crd"
	FieldOrgName         = "organization_name"
	FieldAddressLine1    = "address_line1"
	FieldAddressLine2    = "address_line2"
	FieldCity            = "city"
	FieldState           = "state"
	FieldZip             = "zip"
	FieldCountry         = "country"
	FieldStatus          = "status"
	FieldNotes           = "notes"
	FieldBusinessUnit    = "business_unit"
	FieldLocation        = "location"
	FieldEmail           = "email"
	FieldPhone           = "phone"
)

// =============================================================================
// ALIAS TABLE
// =============================================================================

// Field is one canonical field together with the source-column spellings
// that map onto it.
type Field struct {
	// Name is the canonical field name.
	Name string

	// Aliases are the accepted source-column spellings. Matching is
	// case-insensitive and trimmed, so aliases are listed in their most
	// common upstream form for readability.
	Aliases []string
}

// CanonicalFields is the ordered canonical field set. Order is load-bearing:
// it is the tie-break for aliases shared between fields.
var CanonicalFields = []Field{
	{FieldReferenceID, []string{"referenceId", "Reference ID", "reference_id", "ref_id", "RefID"}},
	{FieldWorkProduct, []string{"workProduct", "Work Product", "work_product", "workProductNo", "WP"}},
	{FieldBusinessRef, []string{"businessRef", "Business Ref", "business_ref", "biz_id", "BusinessID", "entity"}},
	{FieldBusinessName, []string{"businessName", "Business Name", "business_name", "firm_name", "company_name", "entityName", "name"}},
	{FieldNormalizedName, []string{"normalizedName", "Normalized Name", "normalized_name"}},
	{FieldPrincipal, []string{"principal", "Principal", "principal_name"}},
	{FieldTaxID, []string{"taxId", "Tax ID", "tax_id", "ein", "EIN", "taxID"}},
	{FieldOrganizationCRD, []string{"orgCRD", "Organization CRD", "org_crd_number", "firm_crd", "organizationCRD", "organization_crd", "organizationCrdNumber", "crd_number"}},
	{FieldOrgName, []string{"orgName", "Organization Name", "organization_name", "firm_name", "organizationName"}},
	{FieldAddressLine1, []string{"addressLine1", "Address Line 1", "address_line1", "addressLineOne", "street1"}},
	{FieldAddressLine2, []string{"addressLine2", "Address Line 2", "address_line2", "addressLineTwo"}},
	{FieldCity, []string{"city", "City"}},
	{FieldState, []string{"state", "State", "state_code", "stateCode", "StateName"}},
	{FieldZip, []string{"zip", "Zip", "zipcode", "postalCode", "postal_code"}},
	{FieldCountry, []string{"country", "Country"}},
	{FieldStatus, []string{"status", "Status", "business_status"}},
	{FieldNotes, []string{"notes", "Notes", "comments"}},
	{FieldBusinessUnit, []string{"businessUnit", "Business Unit", "business_unit"}},
	{FieldLocation, []string{"location", "Location", "businessLocation", "business_location"}},
	{FieldEmail, []string{"email", "Email", "emailAddress", "email_address"}},
	{FieldPhone, []string{"phone", "Phone", "phoneNumber", "phone_number"}},
}

// =============================================================================
// HEADER RESOLUTION
// =============================================================================

// Resolve maps the column names of one file onto the canonical field set.
//
// The returned map is keyed by the original column name exactly as it
// appeared in the file; the value is the canonical field name, or the
// original name itself when no alias matches. The map is built once per
// file and applied to every row.
func Resolve(columns []string, log *zap.Logger) map[string]string {
	resolved := make(map[string]string, len(columns))
	if len(columns) == 0 {
		log.Warn("no column names to resolve")
		return resolved
	}

	for _, column := range columns {
		if strings.TrimSpace(column) == "" {
			log.Warn("dropping empty column name")
			continue
		}
		normalized := normalize(column)

		canonical, ok := lookup(normalized)
		if !ok {
			// Pass-through keeps unrecognized data reachable downstream.
			log.Warn("unmapped column retained as-is", zap.String("column", column))
			resolved[column] = column
			continue
		}
		resolved[column] = canonical
	}

	return resolved
}

// Canonical reports the canonical field for a single column name, or the
// column itself when unmapped. It applies the same rules as Resolve.
func Canonical(column string) string {
	if canonical, ok := lookup(normalize(column)); ok {
		return canonical
	}
	return column
}

// lookup scans the canonical fields in declaration order for a normalized
// column name. First declared field wins.
func lookup(normalized string) (string, bool) {
	for _, field := range CanonicalFields {
		for _, alias := range field.Aliases {
			if normalize(alias) == normalized {
				return field.Name, true
			}
		}
	}
	return "", false
}

// normalize trims and lowercases a column name or alias for comparison.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
