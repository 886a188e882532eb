// Package checks provides the seed compliance checks the Audit Agent
// ships with out of the box: evidence integrity, access-control
// documentation presence, and IDSR artifact shape validation.
package checks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/sentinel-surveillance/core/pkg/audit"
)

// EvidenceManifest maps an evidence file's relative path to its expected
// sha256 checksum, hex-encoded.
type EvidenceManifest map[string]string

// LoadEvidenceManifest reads a manifest JSON document from path.
func LoadEvidenceManifest(path string) (EvidenceManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var manifest EvidenceManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("evidence manifest %s: %w", path, err)
	}
	return manifest, nil
}

// EvidenceIntegrity checksums each evidence file named in the manifest at
// cctx.EvidenceManifestPath against the files under cctx.EvidenceDir,
// producing one Medium finding per mismatch or missing file.
func EvidenceIntegrity() audit.Check {
	return audit.Check{
		ID:              "evidence-integrity",
		Description:     "Verifies evidence files match their manifest checksums",
		Frequency:       audit.FrequencyDaily,
		DefaultSeverity: audit.SeverityMedium,
		Run: func(ctx context.Context, cctx audit.CheckContext) ([]audit.Finding, error) {
			if cctx.EvidenceManifestPath == "" {
				return nil, nil
			}
			manifest, err := LoadEvidenceManifest(cctx.EvidenceManifestPath)
			if err != nil {
				return nil, err
			}

			now := cctx.Clock.Now()
			var findings []audit.Finding
			for name, expected := range manifest {
				path := filepath.Join(cctx.EvidenceDir, name)
				data, err := os.ReadFile(path)
				if err != nil {
					findings = append(findings, audit.Finding{
						FindingID:        uuid.NewString(),
						Severity:         audit.SeverityMedium,
						Category:         "Evidence Integrity",
						Standard:         "evidence-integrity",
						EvidenceLocation: path,
						DetectedAt:       now,
						Deadline:         audit.SeverityMedium.DefaultDeadline(now),
						Status:           audit.StatusNotStarted,
						Actions:          audit.RecommendationsFor("Evidence Integrity"),
					})
					continue
				}
				sum := sha256.Sum256(data)
				actual := hex.EncodeToString(sum[:])
				if actual != expected {
					findings = append(findings, audit.Finding{
						FindingID:        uuid.NewString(),
						Severity:         audit.SeverityMedium,
						Category:         "Evidence Integrity",
						Standard:         "evidence-integrity",
						EvidenceLocation: path,
						DetectedAt:       now,
						Deadline:         audit.SeverityMedium.DefaultDeadline(now),
						Status:           audit.StatusNotStarted,
						Actions:          audit.RecommendationsFor("Evidence Integrity"),
					})
				}
			}
			return findings, nil
		},
	}
}
