package fusion

import (
	"hash/fnv"
	"sort"
	"sync"

	"github.com/sentinel-surveillance/core/pkg/apperr"
)

// defaultShardCount bounds the number of independent locks the store
// spreads subjects across. Fusion within a subject is strictly
// sequential (guarded by its shard's mutex); across subjects, shards allow
// concurrent readers and writers (§5).
const defaultShardCount = 32

type shard struct {
	mu      sync.RWMutex
	records map[string][]*FusedRecord // subject_id -> records, insertion order
	byID    map[string]*FusedRecord   // record_id -> record, for uniqueness checks
}

// Store is the Fusion Engine's exclusive owner of the FusedRecord timeline,
// sharded by a hash of subject_id (§3, §5).
type Store struct {
	shards []*shard
}

// NewStore constructs an empty, subject-sharded record store.
func NewStore() *Store {
	s := &Store{shards: make([]*shard, defaultShardCount)}
	for i := range s.shards {
		s.shards[i] = &shard{
			records: make(map[string][]*FusedRecord),
			byID:    make(map[string]*FusedRecord),
		}
	}
	return s
}

func (s *Store) shardFor(subjectID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subjectID))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Put stores a newly fused record. A FusedRecord is created once and never
// mutated in place; retention transitions call ReplaceRetention instead.
// Put returns an apperr.Integrity error if record_id already exists.
func (s *Store) Put(record *FusedRecord) error {
	sh := s.shardFor(record.SubjectID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, exists := sh.byID[record.RecordID]; exists {
		return apperr.NewIntegrity("duplicate record_id").WithDetails(record.RecordID)
	}

	sh.byID[record.RecordID] = record
	records := sh.records[record.SubjectID]
	idx := sort.Search(len(records), func(i int) bool {
		return records[i].CanonicalTimestamp.After(record.CanonicalTimestamp) ||
			records[i].CanonicalTimestamp.Equal(record.CanonicalTimestamp)
	})
	records = append(records, nil)
	copy(records[idx+1:], records[idx:])
	records[idx] = record
	sh.records[record.SubjectID] = records
	return nil
}

// Timeline returns the subject's FusedRecords ordered by
// canonical_timestamp ascending. The returned slice is a defensive copy;
// records themselves are never mutated (retention transitions replace the
// pointer, see ReplaceRetention).
func (s *Store) Timeline(subjectID string) []*FusedRecord {
	sh := s.shardFor(subjectID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	src := sh.records[subjectID]
	out := make([]*FusedRecord, len(src))
	copy(out, src)
	return out
}

// ReplaceRetention atomically swaps a record's retention tier, producing a
// new record value (FusedRecords are otherwise immutable after creation).
func (s *Store) ReplaceRetention(subjectID, recordID string, retention Retention) bool {
	sh := s.shardFor(subjectID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	existing, ok := sh.byID[recordID]
	if !ok || existing.Retention == retention {
		return false
	}

	updated := *existing
	updated.Retention = retention
	sh.byID[recordID] = &updated

	records := sh.records[subjectID]
	for i, r := range records {
		if r.RecordID == recordID {
			records[i] = &updated
			break
		}
	}
	return true
}

// AllRecords returns every record across every shard, used by
// SweepRetention and Statistics. No single shard lock is held for the
// entire call; each shard is visited under its own RLock in turn so no
// global lock is ever required (§5).
func (s *Store) AllRecords() []*FusedRecord {
	var out []*FusedRecord
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, r := range sh.byID {
			out = append(out, r)
		}
		sh.mu.RUnlock()
	}
	return out
}

// Get returns a single record by id, or nil.
func (s *Store) Get(subjectID, recordID string) *FusedRecord {
	sh := s.shardFor(subjectID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return sh.byID[recordID]
}
