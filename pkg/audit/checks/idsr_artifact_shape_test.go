package checks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinel-surveillance/core/pkg/audit"
	"github.com/sentinel-surveillance/core/pkg/clock"
)

func TestIDSRArtifactShape_CompleteReportYieldsNoFindings(t *testing.T) {
	chk := IDSRArtifactShape()
	findings, err := chk.Run(context.Background(), audit.CheckContext{
		Clock: clock.NewFixed(time.Now()),
		IDSRReports: []audit.IDSRArtifact{
			{DiseaseCode: "MAL001", ClinicalSummary: "x", VerificationMetadata: "Confirmed", SubmissionStatus: "PENDING_REVIEW"},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestIDSRArtifactShape_IncompleteReportYieldsFinding(t *testing.T) {
	chk := IDSRArtifactShape()
	findings, err := chk.Run(context.Background(), audit.CheckContext{
		Clock: clock.NewFixed(time.Now()),
		IDSRReports: []audit.IDSRArtifact{
			{DiseaseCode: "MAL001"},
		},
	})
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, audit.SeverityLow, findings[0].Severity)
	assert.Equal(t, "Regulatory Artifact", findings[0].Category)
}

func TestIDSRArtifactShape_MultipleReportsEachChecked(t *testing.T) {
	chk := IDSRArtifactShape()
	findings, err := chk.Run(context.Background(), audit.CheckContext{
		Clock: clock.NewFixed(time.Now()),
		IDSRReports: []audit.IDSRArtifact{
			{DiseaseCode: "MAL001", ClinicalSummary: "x", VerificationMetadata: "y", SubmissionStatus: "z"},
			{},
			{DiseaseCode: "CHOL001"},
		},
	})
	require.NoError(t, err)
	require.Len(t, findings, 2)
}
