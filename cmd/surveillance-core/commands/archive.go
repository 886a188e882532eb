package commands

import (
	"context"
	"fmt"

	"github.com/sentinel-surveillance/core/pkg/config"
	"github.com/sentinel-surveillance/core/pkg/fusion"
	"github.com/sentinel-surveillance/core/pkg/fusion/coldstore"
)

// buildArchive resolves the Cold-tier retention archive named by
// cfg.Coldstore, or nil when no backend is configured. A misconfigured S3
// backend (missing bucket, bad credentials) surfaces immediately rather
// than failing silently on the first archive write.
func buildArchive(ctx context.Context, cfg config.ColdstoreConfig) (fusion.Archive, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "local":
		return coldstore.NewLocalArchive(cfg.LocalDir)
	case "s3":
		return coldstore.Open(ctx, coldstore.Options{
			Region:      cfg.Region,
			Bucket:      cfg.Bucket,
			Prefix:      cfg.Prefix,
			DynamoTable: cfg.DynamoTable,
		})
	default:
		return nil, fmt.Errorf("unknown coldstore backend %q", cfg.Backend)
	}
}
