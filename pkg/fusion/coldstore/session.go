package coldstore

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// awsConfig loads the SDK configuration shared by the S3 archive and the
// DynamoDB index: region resolution, an optional shared profile, and an
// AWS_ENDPOINT_URL override so tests can point the clients at an httptest
// server instead of real AWS.
func awsConfig(ctx context.Context, region, profile string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if endpoint := os.Getenv("AWS_ENDPOINT_URL"); endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(endpoint))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("coldstore: loading aws config: %w", err)
	}
	return cfg, nil
}

// VerifyIdentity confirms the resolved credentials are usable, returning
// the caller's account id. Callers typically invoke this once at startup
// when a cold-store backend is configured, to fail fast on misconfigured
// credentials rather than on the first archive write.
func VerifyIdentity(ctx context.Context, cfg aws.Config) (string, error) {
	client := sts.NewFromConfig(cfg)
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("coldstore: verifying identity: %w", err)
	}
	return aws.ToString(out.Account), nil
}
