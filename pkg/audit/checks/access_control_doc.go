package checks

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/sentinel-surveillance/core/pkg/audit"
)

// accessControlMaxAge is the longest a policy document may go unreviewed
// before it is flagged stale.
const accessControlMaxAge = 180 * 24 * time.Hour

// AccessControlDoc verifies the access-control policy document at
// cctx.AccessControlDocPath exists and has been modified within
// accessControlMaxAge.
func AccessControlDoc() audit.Check {
	return audit.Check{
		ID:              "access-control-doc",
		Description:     "Verifies the access-control policy document is present and current",
		Frequency:       audit.FrequencyWeekly,
		DefaultSeverity: audit.SeverityHigh,
		Run: func(ctx context.Context, cctx audit.CheckContext) ([]audit.Finding, error) {
			now := cctx.Clock.Now()
			if cctx.AccessControlDocPath == "" {
				return []audit.Finding{missingDocFinding(now)}, nil
			}
			info, err := os.Stat(cctx.AccessControlDocPath)
			if err != nil {
				return []audit.Finding{missingDocFinding(now)}, nil
			}
			if now.Sub(info.ModTime()) > accessControlMaxAge {
				return []audit.Finding{{
					FindingID:        uuid.NewString(),
					Severity:         audit.SeverityMedium,
					Category:         "Access Control",
					Standard:         "access-control-doc",
					EvidenceLocation: cctx.AccessControlDocPath,
					DetectedAt:       now,
					Deadline:         audit.SeverityMedium.DefaultDeadline(now),
					Status:           audit.StatusNotStarted,
					Actions:          audit.RecommendationsFor("Access Control"),
				}}, nil
			}
			return nil, nil
		},
	}
}

func missingDocFinding(now time.Time) audit.Finding {
	return audit.Finding{
		FindingID:        uuid.NewString(),
		Severity:         audit.SeverityHigh,
		Category:         "Access Control",
		Standard:         "access-control-doc",
		EvidenceLocation: "",
		DetectedAt:       now,
		Deadline:         audit.SeverityHigh.DefaultDeadline(now),
		Status:           audit.StatusNotStarted,
		Actions:          audit.RecommendationsFor("Access Control"),
	}
}
