package coldstore

import (
	"context"
	"fmt"
)

// Options configures a cold-store backend resolved from configuration
// (flags/env/file, per pkg/config), mirroring the shape of spec.md §6's
// coldstore option group.
type Options struct {
	Region       string
	Profile      string
	Bucket       string
	Prefix       string
	DynamoTable  string // empty disables the pointer index
	VerifyOnOpen bool
}

// Open resolves AWS credentials and constructs an S3-backed archive, with
// an optional DynamoDB pointer index in front of it when DynamoTable is
// set. Callers that only need local-file archival should use
// NewLocalArchive directly instead of Open.
func Open(ctx context.Context, opts Options) (*S3Archive, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("coldstore: bucket is required")
	}

	cfg, err := awsConfig(ctx, opts.Region, opts.Profile)
	if err != nil {
		return nil, err
	}

	if opts.VerifyOnOpen {
		if _, err := VerifyIdentity(ctx, cfg); err != nil {
			return nil, err
		}
	}

	var index Index
	if opts.DynamoTable != "" {
		index = NewDynamoIndex(cfg, opts.DynamoTable)
	}

	return NewS3Archive(cfg, opts.Bucket, opts.Prefix, index), nil
}
