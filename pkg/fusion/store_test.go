package fusion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutAndTimelineOrdering(t *testing.T) {
	s := NewStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	r2 := &FusedRecord{RecordID: "r2", SubjectID: "A", CanonicalTimestamp: base.Add(2 * time.Hour)}
	r1 := &FusedRecord{RecordID: "r1", SubjectID: "A", CanonicalTimestamp: base.Add(1 * time.Hour)}
	r3 := &FusedRecord{RecordID: "r3", SubjectID: "A", CanonicalTimestamp: base.Add(3 * time.Hour)}

	require.NoError(t, s.Put(r2))
	require.NoError(t, s.Put(r1))
	require.NoError(t, s.Put(r3))

	timeline := s.Timeline("A")
	require.Len(t, timeline, 3)
	assert.Equal(t, "r1", timeline[0].RecordID)
	assert.Equal(t, "r2", timeline[1].RecordID)
	assert.Equal(t, "r3", timeline[2].RecordID)
}

func TestStore_PutDuplicateRecordIDIsIntegrityError(t *testing.T) {
	s := NewStore()
	r := &FusedRecord{RecordID: "dup", SubjectID: "A", CanonicalTimestamp: time.Now()}
	require.NoError(t, s.Put(r))
	err := s.Put(r)
	assert.Error(t, err)
}

func TestStore_TimelineReturnsDefensiveCopy(t *testing.T) {
	s := NewStore()
	r := &FusedRecord{RecordID: "r1", SubjectID: "A", CanonicalTimestamp: time.Now()}
	require.NoError(t, s.Put(r))

	timeline := s.Timeline("A")
	timeline[0] = nil

	again := s.Timeline("A")
	require.Len(t, again, 1)
	assert.NotNil(t, again[0])
}

func TestStore_ReplaceRetention(t *testing.T) {
	s := NewStore()
	r := &FusedRecord{RecordID: "r1", SubjectID: "A", CanonicalTimestamp: time.Now(), Retention: RetentionHot}
	require.NoError(t, s.Put(r))

	ok := s.ReplaceRetention("A", "r1", RetentionCold)
	assert.True(t, ok)

	got := s.Get("A", "r1")
	require.NotNil(t, got)
	assert.Equal(t, RetentionCold, got.Retention)

	// No-op when already at the target retention.
	ok = s.ReplaceRetention("A", "r1", RetentionCold)
	assert.False(t, ok)
}

func TestStore_ReplaceRetentionUnknownRecordIsNoop(t *testing.T) {
	s := NewStore()
	assert.False(t, s.ReplaceRetention("A", "missing", RetentionCold))
}

func TestStore_AllRecordsSpansShards(t *testing.T) {
	s := NewStore()
	for i := 0; i < 100; i++ {
		r := &FusedRecord{RecordID: string(rune('a' + i%26)) + string(rune(i)), SubjectID: string(rune('a' + i%26)), CanonicalTimestamp: time.Now()}
		require.NoError(t, s.Put(r))
	}
	all := s.AllRecords()
	assert.Len(t, all, 100)
}

func TestStore_GetMissingReturnsNil(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Get("nobody", "nothing"))
}
