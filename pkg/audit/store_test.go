package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindingStore_AppendAndAllReturnsCopy(t *testing.T) {
	s := NewFindingStore()
	s.Append(Finding{FindingID: "a"}, Finding{FindingID: "b"})

	all := s.All()
	require.Len(t, all, 2)
	all[0].FindingID = "mutated"

	again := s.All()
	assert.Equal(t, "a", again[0].FindingID)
}

func TestReportStore_NoopWithEmptyDir(t *testing.T) {
	store, err := NewReportStore("")
	require.NoError(t, err)
	require.NoError(t, store.Save(&AuditReport{AuditID: "x"}))
}

func TestReportStore_SaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewReportStore(dir)
	require.NoError(t, err)

	report := &AuditReport{AuditID: "abc", ComplianceScore: 87.5, Status: ReportCompleted}
	require.NoError(t, store.Save(report))

	loaded, err := store.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, report.ComplianceScore, loaded.ComplianceScore)
	assert.Equal(t, report.Status, loaded.Status)
}

func TestRemediationStore_NoopWithEmptyDir(t *testing.T) {
	store, err := NewRemediationStore("")
	require.NoError(t, err)
	require.NoError(t, store.Queue(context.Background(), Finding{FindingID: "x"}))
}

func TestRemediationStore_QueuePersistsOneFilePerFinding(t *testing.T) {
	dir := t.TempDir()
	store, err := NewRemediationStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Queue(context.Background(), Finding{FindingID: "f1", Severity: SeverityHigh}))

	_, err = os.Stat(filepath.Join(dir, "f1.json"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
