package delete

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload/errors"
)

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	DeleteObject(
		ctx context.Context,
		input *s3.DeleteObjectInput,
		opts ...func(*s3.Options),
	) (*s3.DeleteObjectOutput, error)
}

// Deleter removes single objects.
type Deleter struct {
	client S3Interface
}

// New creates a Deleter.
func New(client S3Interface) *Deleter {
	return &Deleter{client: client}
}

// Delete issues one DeleteObject request and waits for its response.
func (d *Deleter) Delete(ctx context.Context, bucket, key string) error {
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.NewObjectError("delete", bucket, key, err)
	}
	return nil
}
