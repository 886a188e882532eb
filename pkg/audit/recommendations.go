package audit

// Recommendations is the fixed category -> remediation-guidance mapping
// documented alongside the check catalog (§4.2).
var Recommendations = map[string][]string{
	"Evidence Integrity": {
		"Recompute and re-sign the evidence manifest checksum.",
		"Quarantine the affected evidence file pending manual review.",
	},
	"Access Control": {
		"Publish or refresh the access-control policy document.",
		"Confirm the document's last-reviewed date is within the retention window.",
	},
	"Regulatory Artifact": {
		"Regenerate the IDSR report from its source FusedRecord.",
		"Confirm the report's field set matches the required shape before submission.",
	},
	"System Error": {
		"Inspect the named check's implementation and its artifact dependencies.",
		"Re-run the audit once the underlying fault is resolved.",
	},
}

// RecommendationsFor returns the fixed guidance for a category, or nil if
// the category has no registered recommendations.
func RecommendationsFor(category string) []string {
	return Recommendations[category]
}
