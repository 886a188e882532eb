package coldstore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/sentinel-surveillance/core/pkg/apperr"
)

const (
	dynamoPartitionKeyAttr = "record_id"
	dynamoLocationAttr     = "location"
)

// DynamoIndex is an optional record_id -> S3 key pointer index, for
// deployments that want to query cold records without listing the bucket.
// It implements Index.
type DynamoIndex struct {
	client *dynamodb.Client
	table  string
}

// DynamoOption configures a DynamoIndex at construction time.
type DynamoOption func(*dynamodb.Options)

// WithDynamoEndpoint overrides the client's base endpoint, for pointing the
// index at a local DynamoDB-compatible test double instead of real AWS.
func WithDynamoEndpoint(url string) DynamoOption {
	return func(o *dynamodb.Options) { o.BaseEndpoint = aws.String(url) }
}

// NewDynamoIndex constructs a DynamoIndex against an already-resolved
// aws.Config and table name. The table is assumed to already exist with
// "record_id" as its partition key; provisioning it is an operational
// concern, not this package's.
func NewDynamoIndex(cfg aws.Config, table string, opts ...DynamoOption) *DynamoIndex {
	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		for _, opt := range opts {
			opt(o)
		}
	})
	return &DynamoIndex{client: client, table: table}
}

func (d *DynamoIndex) Put(ctx context.Context, recordID, location string) error {
	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item: map[string]types.AttributeValue{
			dynamoPartitionKeyAttr: &types.AttributeValueMemberS{Value: recordID},
			dynamoLocationAttr:     &types.AttributeValueMemberS{Value: location},
		},
	})
	if err != nil {
		return fmt.Errorf("coldstore: indexing record %s: %w", recordID, err)
	}
	return nil
}

func (d *DynamoIndex) Get(ctx context.Context, recordID string) (string, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key: map[string]types.AttributeValue{
			dynamoPartitionKeyAttr: &types.AttributeValueMemberS{Value: recordID},
		},
	})
	if err != nil {
		return "", fmt.Errorf("coldstore: looking up record %s: %w", recordID, err)
	}
	if out.Item == nil {
		return "", apperr.NewIntegrity(fmt.Sprintf("coldstore: no index entry for record %s", recordID))
	}
	attr, ok := out.Item[dynamoLocationAttr].(*types.AttributeValueMemberS)
	if !ok {
		return "", apperr.NewIntegrity(fmt.Sprintf("coldstore: malformed index entry for record %s", recordID))
	}
	return attr.Value, nil
}
