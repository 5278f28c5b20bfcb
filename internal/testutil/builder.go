package testutil

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MockBuilder provides a fluent interface for building MockS3Client instances.
type MockBuilder struct {
	client *MockS3Client
}

// NewMockBuilder creates a new MockBuilder.
func NewMockBuilder() *MockBuilder {
	return &MockBuilder{
		client: &MockS3Client{},
	}
}

// Build returns the configured MockS3Client.
func (b *MockBuilder) Build() *MockS3Client {
	return b.client
}

// WithPutObject configures the PutObject behavior.
func (b *MockBuilder) WithPutObject(
	fn func(context.Context, *s3.PutObjectInput) (*s3.PutObjectOutput, error),
) *MockBuilder {
	b.client.PutObjectFunc = func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithDeleteObject configures the DeleteObject behavior.
func (b *MockBuilder) WithDeleteObject(
	fn func(context.Context, *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error),
) *MockBuilder {
	b.client.DeleteObjectFunc = func(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithSuccessfulUpload configures the mock to always return successful uploads.
func (b *MockBuilder) WithSuccessfulUpload() *MockBuilder {
	b.client.PutObjectFunc = func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		if params.Body != nil {
			_, _ = io.Copy(io.Discard, params.Body)
		}
		return &s3.PutObjectOutput{
			ETag: StringPtr(`"test-etag"`),
		}, nil
	}
	return b
}

// WithFailedUpload configures the mock to fail every write with err.
func (b *MockBuilder) WithFailedUpload(err error) *MockBuilder {
	b.client.PutObjectFunc = func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, err
	}
	b.client.CreateMultipartUploadFunc = func(ctx context.Context, params *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
		return nil, err
	}
	return b
}

// WithBucketNotFound configures the mock to answer with NoSuchBucket.
func (b *MockBuilder) WithBucketNotFound() *MockBuilder {
	notFound := NewAPIError("NoSuchBucket", "The specified bucket does not exist")
	b.WithFailedUpload(notFound)
	b.client.DeleteObjectFunc = func(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return nil, notFound
	}
	return b
}

// WithAccessDenied configures the mock to return access denied errors.
func (b *MockBuilder) WithAccessDenied() *MockBuilder {
	denied := NewAPIError("AccessDenied", "Access Denied")
	b.WithFailedUpload(denied)
	b.client.DeleteObjectFunc = func(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return nil, denied
	}
	return b
}
