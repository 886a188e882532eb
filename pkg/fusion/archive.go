package fusion

import "context"

// Archive is the retention archive interface: a Cold-tier FusedRecord is
// archived, never deleted (§4.1). Implementations live in
// pkg/fusion/coldstore — a local-file default and an S3-backed one, with an
// optional DynamoDB pointer index in front of the S3 object store.
type Archive interface {
	Store(ctx context.Context, record *FusedRecord) error
}
