// Package coldstore provides retention archive backends for Cold-tier
// fusion.FusedRecords: a local-file default and an S3-backed one, the
// latter optionally fronted by a DynamoDB pointer index.
package coldstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sentinel-surveillance/core/pkg/fusion"
)

// LocalArchive writes each archived record as its own JSON file under a
// directory, using the same atomic write-then-rename idiom as the Audit
// Agent's report store: a temp file in the target directory, then an
// os.Rename, so a crash mid-write never leaves a half-written record.
type LocalArchive struct {
	dir string
}

// NewLocalArchive creates (if needed) dir and returns a LocalArchive rooted
// there.
func NewLocalArchive(dir string) (*LocalArchive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("coldstore: creating archive dir: %w", err)
	}
	return &LocalArchive{dir: dir}, nil
}

func (a *LocalArchive) Store(ctx context.Context, record *fusion.FusedRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("coldstore: marshaling record: %w", err)
	}

	tmp, err := os.CreateTemp(a.dir, record.RecordID+".*.tmp")
	if err != nil {
		return fmt.Errorf("coldstore: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("coldstore: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("coldstore: closing temp file: %w", err)
	}

	finalPath := filepath.Join(a.dir, record.RecordID+".json")
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("coldstore: renaming into place: %w", err)
	}
	return nil
}

// Load reads back a previously archived record. It is not part of the
// fusion.Archive interface (archival is write-only from the engine's
// perspective) but is used by tests and offline auditing tools.
func (a *LocalArchive) Load(recordID string) (*fusion.FusedRecord, error) {
	data, err := os.ReadFile(filepath.Join(a.dir, recordID+".json"))
	if err != nil {
		return nil, err
	}
	var record fusion.FusedRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
