package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ClientOption configures the S3 client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	region       string
	endpoint     string
	usePathStyle bool
}

// WithRegion overrides the AWS region.
func WithRegion(region string) ClientOption {
	return func(o *clientOptions) { o.region = region }
}

// WithEndpoint points the client at a custom S3-compatible endpoint.
// Path-style addressing is enabled, which most self-hosted gateways expect.
func WithEndpoint(endpoint string) ClientOption {
	return func(o *clientOptions) {
		o.endpoint = endpoint
		o.usePathStyle = true
	}
}

// NewClient creates an S3 client from the default AWS credential chain.
func NewClient(ctx context.Context, optFns ...ClientOption) (*s3.Client, error) {
	opts := clientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.endpoint != "" {
			o.BaseEndpoint = &opts.endpoint
		}
		o.UsePathStyle = opts.usePathStyle
	}), nil
}
