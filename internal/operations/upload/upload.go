package upload

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/internal/progress"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
)

// Uploader handles S3 upload operations through the transfer manager.
type Uploader struct {
	s3Client    s3api.S3API
	partSize    int64
	concurrency int
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithPartSize sets the part size used when an upload carries none.
func WithPartSize(size int64) Option {
	return func(u *Uploader) {
		u.partSize = size
	}
}

// WithConcurrency sets the number of parts uploaded in parallel.
func WithConcurrency(n int) Option {
	return func(u *Uploader) {
		u.concurrency = n
	}
}

// New creates a new Uploader instance.
func New(s3Client s3api.S3API, opts ...Option) *Uploader {
	u := &Uploader{
		s3Client:    s3Client,
		partSize:    manager.DefaultUploadPartSize,
		concurrency: manager.DefaultUploadConcurrency,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload streams in.Body to in.Bucket/in.Key and reports progress to tracker.
// The total size is announced once the body is exhausted.
func (u *Uploader) Upload(
	ctx context.Context,
	in *s3types.PutInput,
	tracker s3types.ProgressTracker,
) (*s3types.PutOutput, error) {
	partSize := in.PartSize
	if partSize == 0 {
		partSize = u.partSize
	}

	uploader := manager.NewUploader(u.s3Client, func(m *manager.Uploader) {
		m.PartSize = partSize
		m.Concurrency = u.concurrency
	})

	input := buildPutObjectInput(in)
	input.Body = progress.NewReader(in.Body, tracker)

	output, err := uploader.Upload(ctx, input)
	if err != nil {
		if tracker != nil {
			tracker.Error(err)
		}
		return nil, errors.NewObjectError("upload", in.Bucket, in.Key, err)
	}

	if tracker != nil {
		tracker.Complete()
	}

	return &s3types.PutOutput{
		ETag:      aws.ToString(output.ETag),
		Location:  output.Location,
		VersionID: aws.ToString(output.VersionID),
	}, nil
}

// buildPutObjectInput maps a backend write onto the S3 request.
// The transfer manager copies these fields onto CreateMultipartUpload too.
func buildPutObjectInput(in *s3types.PutInput) *s3.PutObjectInput {
	input := &s3.PutObjectInput{
		Bucket: aws.String(in.Bucket),
		Key:    aws.String(in.Key),
	}

	if in.ACL != "" {
		input.ACL = awstypes.ObjectCannedACL(in.ACL)
	}
	if in.ContentType != "" {
		input.ContentType = aws.String(in.ContentType)
	}
	if in.CacheControl != "" {
		input.CacheControl = aws.String(in.CacheControl)
	}
	if in.ContentDisposition != "" {
		input.ContentDisposition = aws.String(in.ContentDisposition)
	}
	if in.ContentEncoding != "" {
		input.ContentEncoding = aws.String(in.ContentEncoding)
	}
	if in.StorageClass != "" {
		input.StorageClass = awstypes.StorageClass(in.StorageClass)
	}
	if in.Tagging != "" {
		input.Tagging = aws.String(in.Tagging)
	}
	if len(in.Metadata) > 0 {
		input.Metadata = in.Metadata
	}

	switch in.ServerSideEncryption {
	case s3types.SSES3:
		input.ServerSideEncryption = awstypes.ServerSideEncryptionAes256
	case s3types.SSEKMS:
		input.ServerSideEncryption = awstypes.ServerSideEncryptionAwsKms
		if in.SSEKMSKeyID != "" {
			input.SSEKMSKeyId = aws.String(in.SSEKMSKeyID)
		}
	}

	return input
}
