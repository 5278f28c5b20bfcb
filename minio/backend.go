// Package minio provides a storage backend for MinIO and other S3-compatible
// servers, built on minio-go.
package minio

import (
	"context"
	"fmt"
	"maps"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/encrypt"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/internal/progress"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
)

// DefaultPartSize is the part size used for streams of unknown length when
// neither the upload nor the backend sets one. Without it minio-go sizes
// parts for a 5 TiB object.
const DefaultPartSize uint64 = 16 * 1024 * 1024

// aclHeader carries the canned ACL; minio-go sends it as a request header.
const aclHeader = "x-amz-acl"

// Config holds connection settings for a MinIO server.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Secure    bool
}

// Backend stores objects with a minio-go client.
type Backend struct {
	client   *minio.Client
	partSize uint64
}

// Option configures a Backend.
type Option func(*Backend)

// WithPartSize sets the part size used when an upload sets none.
func WithPartSize(size uint64) Option {
	return func(b *Backend) {
		if size > 0 {
			b.partSize = size
		}
	}
}

// New creates a Backend around an existing client.
func New(client *minio.Client, opts ...Option) *Backend {
	b := &Backend{
		client:   client,
		partSize: DefaultPartSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewFromConfig connects to the server described by cfg using static
// credentials.
func NewFromConfig(cfg Config, opts ...Option) (*Backend, error) {
	if cfg.Endpoint == "" {
		return nil, errors.NewError("minio.new", errors.ErrInvalidInput).
			WithMessage("endpoint is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: region,
	})
	if err != nil {
		return nil, errors.NewError("minio.new", err).WithMessage("failed to create client")
	}
	return New(client, opts...), nil
}

// Client returns the underlying minio-go client.
func (b *Backend) Client() *minio.Client {
	return b.client
}

// Put streams in.Body to the server. The size is unknown up front, so the
// total is reported once the server acknowledges the object.
func (b *Backend) Put(
	ctx context.Context,
	in *s3types.PutInput,
	tracker s3types.ProgressTracker,
) (*s3types.PutOutput, error) {
	opts, err := b.putOptions(in)
	if err != nil {
		if tracker != nil {
			tracker.Error(err)
		}
		return nil, err
	}
	opts.Progress = progress.NewSink(tracker)

	info, err := b.client.PutObject(ctx, in.Bucket, in.Key, in.Body, -1, opts)
	if err != nil {
		err = objectError("put", in.Bucket, in.Key, err)
		if tracker != nil {
			tracker.Error(err)
		}
		return nil, err
	}

	if tracker != nil {
		tracker.Update(info.Size, info.Size)
		tracker.Complete()
	}

	return &s3types.PutOutput{
		ETag:      info.ETag,
		Location:  info.Location,
		VersionID: info.VersionID,
	}, nil
}

// Delete removes bucket/key. Missing objects are not an error.
func (b *Backend) Delete(ctx context.Context, bucket, key string) error {
	if err := b.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return objectError("delete", bucket, key, err)
	}
	return nil
}

// putOptions maps a backend write onto minio-go request options.
func (b *Backend) putOptions(in *s3types.PutInput) (minio.PutObjectOptions, error) {
	opts := minio.PutObjectOptions{
		ContentType:        in.ContentType,
		ContentEncoding:    in.ContentEncoding,
		ContentDisposition: in.ContentDisposition,
		CacheControl:       in.CacheControl,
		StorageClass:       string(in.StorageClass),
		PartSize:           b.partSize,
	}
	if in.PartSize > 0 {
		opts.PartSize = uint64(in.PartSize)
	}

	if len(in.Metadata) > 0 || in.ACL != "" {
		opts.UserMetadata = maps.Clone(in.Metadata)
		if opts.UserMetadata == nil {
			opts.UserMetadata = make(map[string]string, 1)
		}
		if in.ACL != "" {
			opts.UserMetadata[aclHeader] = string(in.ACL)
		}
	}

	if in.Tagging != "" {
		tags, err := parseTags(in.Tagging)
		if err != nil {
			return opts, errors.NewObjectError("put", in.Bucket, in.Key, errors.ErrInvalidInput).
				WithMessage(fmt.Sprintf("invalid tagging %q", in.Tagging))
		}
		opts.UserTags = tags
	}

	switch in.ServerSideEncryption {
	case s3types.SSES3:
		opts.ServerSideEncryption = encrypt.NewSSE()
	case s3types.SSEKMS:
		sse, err := encrypt.NewSSEKMS(in.SSEKMSKeyID, nil)
		if err != nil {
			return opts, errors.NewObjectError("put", in.Bucket, in.Key, err)
		}
		opts.ServerSideEncryption = sse
	}

	return opts, nil
}

// parseTags decodes a URL-encoded tag set such as "a=1&b=2".
func parseTags(tagging string) (map[string]string, error) {
	values, err := url.ParseQuery(tagging)
	if err != nil {
		return nil, err
	}
	tags := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			tags[k] = v[0]
		}
	}
	return tags, nil
}

// objectError adds operation context and, for known server error codes,
// the matching sentinel.
func objectError(op, bucket, key string, err error) error {
	if sentinel := errors.ForCode(minio.ToErrorResponse(err).Code); sentinel != nil {
		err = fmt.Errorf("%w: %w", sentinel, err)
	}
	return errors.NewObjectError(op, bucket, key, err)
}
