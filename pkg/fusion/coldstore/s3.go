package coldstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sentinel-surveillance/core/pkg/fusion"
)

// Index is an optional pointer index in front of the S3 object store,
// mapping a record id to its S3 key. A deployment without DynamoDB simply
// never configures one: S3Archive.Store still succeeds, and Fetch falls
// back to deriving the key from the record id and prefix directly.
type Index interface {
	Put(ctx context.Context, recordID, location string) error
	Get(ctx context.Context, recordID string) (string, error)
}

// S3Archive implements fusion.Archive by writing each Cold-tier record as
// its own JSON object via PutObject, keyed by record ID, with an optional
// Index fronting it for pointer lookups.
type S3Archive struct {
	client *s3.Client
	bucket string
	prefix string
	index  Index
}

// S3Option configures an S3Archive at construction time.
type S3Option func(*s3.Options)

// WithS3Endpoint overrides the client's base endpoint, for pointing the
// archive at a local S3-compatible test double instead of real AWS.
func WithS3Endpoint(url string) S3Option {
	return func(o *s3.Options) { o.BaseEndpoint = aws.String(url) }
}

// NewS3Archive constructs an S3Archive against an already-resolved aws.Config
// (see awsConfig). Path-style addressing is forced so the client also works
// against local S3-compatible test doubles that have no real DNS entry.
func NewS3Archive(cfg aws.Config, bucket, prefix string, index Index, opts ...S3Option) *S3Archive {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		for _, opt := range opts {
			opt(o)
		}
	})
	return &S3Archive{client: client, bucket: bucket, prefix: prefix, index: index}
}

func (a *S3Archive) key(recordID string) string {
	if a.prefix == "" {
		return recordID + ".json"
	}
	return path.Join(a.prefix, recordID+".json")
}

// Store satisfies fusion.Archive.
func (a *S3Archive) Store(ctx context.Context, record *fusion.FusedRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("coldstore: marshaling record: %w", err)
	}

	key := a.key(record.RecordID)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("coldstore: putting object: %w", err)
	}

	if a.index != nil {
		if err := a.index.Put(ctx, record.RecordID, key); err != nil {
			return fmt.Errorf("coldstore: updating index: %w", err)
		}
	}
	return nil
}

// Fetch reads back an archived record, consulting the pointer index first
// when one is configured, otherwise deriving the key directly.
func (a *S3Archive) Fetch(ctx context.Context, recordID string) (*fusion.FusedRecord, error) {
	key := a.key(recordID)
	if a.index != nil {
		if loc, err := a.index.Get(ctx, recordID); err == nil && loc != "" {
			key = loc
		}
	}

	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("coldstore: getting object: %w", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("coldstore: reading object body: %w", err)
	}

	var record fusion.FusedRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("coldstore: unmarshaling record: %w", err)
	}
	return &record, nil
}
