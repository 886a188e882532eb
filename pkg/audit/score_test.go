package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComplianceScore_NoFindingsIsHundred(t *testing.T) {
	assert.Equal(t, 100.0, ComplianceScore(nil))
}

func TestComplianceScore_SingleHighFinding(t *testing.T) {
	score := ComplianceScore([]Finding{{Severity: SeverityHigh}})
	assert.InDelta(t, 50.0, score, 0.001)
}

func TestComplianceScore_SingleCriticalFinding(t *testing.T) {
	score := ComplianceScore([]Finding{{Severity: SeverityCritical}})
	assert.InDelta(t, 0.0, score, 0.001)
}

func TestComplianceScore_NeverNegative(t *testing.T) {
	score := ComplianceScore([]Finding{{Severity: SeverityCritical}, {Severity: SeverityCritical}})
	assert.GreaterOrEqual(t, score, 0.0)
}

func TestComplianceScore_MixedSeverities(t *testing.T) {
	findings := []Finding{
		{Severity: SeverityMedium},
		{Severity: SeverityLow},
		{Severity: SeverityInfo},
	}
	score := ComplianceScore(findings)
	// weight sum = 2 + 1 + 0.5 = 3.5; 3.5 / (10*3) * 100 = 11.666...
	assert.InDelta(t, 100-11.666666, score, 0.01)
}

func TestSeverity_DefaultDeadline(t *testing.T) {
	now := mustParseAudit(t, "2025-01-01T00:00:00Z")
	assert.Equal(t, now.Add(4*time.Hour), SeverityCritical.DefaultDeadline(now))
	assert.True(t, SeverityInfo.DefaultDeadline(now).IsZero())
}
