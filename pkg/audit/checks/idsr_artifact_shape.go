package checks

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/sentinel-surveillance/core/pkg/audit"
)

// IDSRArtifactShape validates that every IDSR report in cctx.IDSRReports
// carries its required field set, producing one Low finding per
// incomplete report.
func IDSRArtifactShape() audit.Check {
	return audit.Check{
		ID:              "idsr-artifact-shape",
		Description:     "Validates generated IDSR reports carry their required fields",
		Frequency:       audit.FrequencyContinuous,
		DefaultSeverity: audit.SeverityLow,
		Run: func(ctx context.Context, cctx audit.CheckContext) ([]audit.Finding, error) {
			now := cctx.Clock.Now()
			var findings []audit.Finding
			for i, report := range cctx.IDSRReports {
				if missing := missingFields(report); len(missing) > 0 {
					findings = append(findings, audit.Finding{
						FindingID:        uuid.NewString(),
						Severity:         audit.SeverityLow,
						Category:         "Regulatory Artifact",
						Standard:         "idsr-artifact-shape",
						EvidenceLocation: reportLabel(i),
						DetectedAt:       now,
						Deadline:         audit.SeverityLow.DefaultDeadline(now),
						Status:           audit.StatusNotStarted,
						Actions:          audit.RecommendationsFor("Regulatory Artifact"),
					})
				}
			}
			return findings, nil
		},
	}
}

func missingFields(r audit.IDSRArtifact) []string {
	var missing []string
	if r.DiseaseCode == "" {
		missing = append(missing, "disease_code")
	}
	if r.ClinicalSummary == "" {
		missing = append(missing, "clinical_summary")
	}
	if r.VerificationMetadata == "" {
		missing = append(missing, "verification_metadata")
	}
	if r.SubmissionStatus == "" {
		missing = append(missing, "submission_status")
	}
	return missing
}

func reportLabel(i int) string {
	return "idsr_report[" + strconv.Itoa(i) + "]"
}
