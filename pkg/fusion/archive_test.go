package fusion

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinel-surveillance/core/pkg/clock"
	"github.com/sentinel-surveillance/core/pkg/config"
)

type spyArchive struct {
	mu      sync.Mutex
	stored  []*FusedRecord
	failAll bool
}

func (s *spyArchive) Store(_ context.Context, r *FusedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return assertArchiveErr("archive unavailable")
	}
	cp := *r
	s.stored = append(s.stored, &cp)
	return nil
}

func (s *spyArchive) recordIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.stored))
	for i, r := range s.stored {
		ids[i] = r.RecordID
	}
	return ids
}

type assertArchiveErr string

func (e assertArchiveErr) Error() string { return string(e) }

func TestSweepRetention_ArchivesTransitionedRecords(t *testing.T) {
	now := mustParse(t, "2025-07-01T00:00:00Z")
	fc := clock.NewFixed(now.Add(-181 * 24 * time.Hour))
	spy := &spyArchive{}
	e := New(WithClock(fc), WithConfig(config.Default()), WithArchive(spy))

	old := &CBSSignal{Symptom: "fever", Location: "Nairobi", Timestamp: now.Add(-181 * 24 * time.Hour), SubjectID: "A"}
	oldRecord, err := e.Fuse(context.Background(), old, nil, nil, "A")
	require.NoError(t, err)

	fc.Set(now)
	transitioned := e.SweepRetention(context.Background())
	require.Contains(t, transitioned, oldRecord.RecordID)

	assert.Contains(t, spy.recordIDs(), oldRecord.RecordID)
}

func TestSweepRetention_ArchiveFailureDoesNotBlockTransition(t *testing.T) {
	now := mustParse(t, "2025-07-01T00:00:00Z")
	fc := clock.NewFixed(now.Add(-181 * 24 * time.Hour))
	spy := &spyArchive{failAll: true}
	e := New(WithClock(fc), WithConfig(config.Default()), WithArchive(spy))

	old := &CBSSignal{Symptom: "fever", Location: "Nairobi", Timestamp: now.Add(-181 * 24 * time.Hour), SubjectID: "A"}
	oldRecord, err := e.Fuse(context.Background(), old, nil, nil, "A")
	require.NoError(t, err)

	fc.Set(now)
	transitioned := e.SweepRetention(context.Background())
	assert.Contains(t, transitioned, oldRecord.RecordID)

	timeline := e.GetTimeline("A")
	require.Len(t, timeline, 1)
	assert.Equal(t, RetentionCold, timeline[0].Retention, "a failed archive write still lets the retention transition land")
}

func TestEngine_NilArchiveIsNoop(t *testing.T) {
	e, fc := newTestEngine(t, mustParse(t, "2025-07-01T00:00:00Z"))
	_, err := e.Fuse(context.Background(), &CBSSignal{Timestamp: mustParse(t, "2025-07-01T00:00:00Z"), Location: "Nairobi", Symptom: "fever"}, nil, nil, "P5")
	require.NoError(t, err)
	fc.Advance(200 * 24 * time.Hour)
	assert.NotPanics(t, func() { e.SweepRetention(context.Background()) })
}
