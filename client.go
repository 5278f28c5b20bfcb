package s3upload

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/internal/operations/delete"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/internal/operations/upload"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
)

const defaultRegion = "us-east-1"

// S3Backend is a Backend writing to Amazon S3 or an S3-compatible service.
// Writes go through the S3 transfer manager.
type S3Backend struct {
	uploader *upload.Uploader
	deleter  *delete.Deleter
}

var _ Backend = (*S3Backend)(nil)

// NewS3Backend creates an S3 backend with the provided options.
// It loads AWS credentials using the default credential chain unless a
// custom configuration is given.
func NewS3Backend(ctx context.Context, opts ...s3types.ClientOption) (*S3Backend, error) {
	clientCfg := newClientConfig(opts)

	var cfg aws.Config
	if clientCfg.CustomAWSConfig != nil {
		cfg = clientCfg.CustomAWSConfig.Copy()
	} else {
		var err error
		cfg, err = awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, errors.NewError("newS3Backend", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	client := s3.NewFromConfig(cfg, s3ClientOptions(clientCfg)...)
	return newS3Backend(client, clientCfg), nil
}

// NewS3BackendWithClient creates an S3 backend around an existing client.
// Only the transfer options (concurrency, part size) apply.
func NewS3BackendWithClient(client s3api.S3API, opts ...s3types.ClientOption) *S3Backend {
	return newS3Backend(client, newClientConfig(opts))
}

func newClientConfig(opts []s3types.ClientOption) *s3types.ClientConfig {
	cfg := &s3types.ClientConfig{
		MaxRetries:  3,
		Concurrency: manager.DefaultUploadConcurrency,
		PartSize:    manager.DefaultUploadPartSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func s3ClientOptions(cfg *s3types.ClientConfig) []func(*s3.Options) {
	var opts []func(*s3.Options)

	if cfg.ForcePathStyle {
		opts = append(opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	switch {
	case cfg.CustomHTTPClient != nil:
		opts = append(opts, func(o *s3.Options) {
			o.HTTPClient = cfg.CustomHTTPClient
		})
	case cfg.Timeout > 0:
		httpClient := &http.Client{Timeout: cfg.Timeout}
		opts = append(opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	return opts
}

func newS3Backend(client s3api.S3API, cfg *s3types.ClientConfig) *S3Backend {
	return &S3Backend{
		uploader: upload.New(client,
			upload.WithPartSize(cfg.PartSize),
			upload.WithConcurrency(cfg.Concurrency),
		),
		deleter: delete.New(client),
	}
}

// Put streams in.Body to S3.
func (b *S3Backend) Put(
	ctx context.Context,
	in *s3types.PutInput,
	tracker s3types.ProgressTracker,
) (*s3types.PutOutput, error) {
	return b.uploader.Upload(ctx, in, tracker)
}

// Delete removes bucket/key from S3.
func (b *S3Backend) Delete(ctx context.Context, bucket, key string) error {
	return b.deleter.Delete(ctx, bucket, key)
}
