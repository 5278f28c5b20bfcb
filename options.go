package s3upload

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload/internal/params"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/option"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
)

// config holds the construction settings of a Storage.
type config struct {
	params   params.Options
	logger   *slog.Logger
	trackers TrackerFunc
}

// Option configures a Storage.
type Option func(*config)

// WithACL sets the canned ACL of stored objects. Default is private.
func WithACL(o option.Option[s3types.ObjectACL]) Option {
	return func(c *config) {
		c.params.ACL = o
	}
}

// WithBucket sets the destination bucket. This option is required.
func WithBucket(o option.Option[string]) Option {
	return func(c *config) {
		c.params.Bucket = o
	}
}

// WithKey sets the object key. Default is 16 random bytes, hex encoded.
func WithKey(o option.Option[string]) Option {
	return func(c *config) {
		c.params.Key = o
	}
}

// WithContentType sets the content type. Default is application/octet-stream.
// Use sniff.AutoContentType to detect it from the file content.
func WithContentType(o option.Option[string]) Option {
	return func(c *config) {
		c.params.ContentType = o
	}
}

// WithStorageClass sets the storage class. Default is STANDARD.
func WithStorageClass(o option.Option[s3types.StorageClass]) Option {
	return func(c *config) {
		c.params.StorageClass = o
	}
}

// WithPartSize sets the multipart part size in bytes.
// Zero, the default, selects the backend's part size.
func WithPartSize(o option.Option[int64]) Option {
	return func(c *config) {
		c.params.PartSize = o
	}
}

// WithCacheControl sets the Cache-Control header of stored objects.
func WithCacheControl(o option.Option[string]) Option {
	return func(c *config) {
		c.params.CacheControl = o
	}
}

// WithContentDisposition sets the Content-Disposition header of stored objects.
func WithContentDisposition(o option.Option[string]) Option {
	return func(c *config) {
		c.params.ContentDisposition = o
	}
}

// WithContentEncoding sets the Content-Encoding header of stored objects.
func WithContentEncoding(o option.Option[string]) Option {
	return func(c *config) {
		c.params.ContentEncoding = o
	}
}

// WithMetadata sets user metadata of stored objects.
func WithMetadata(o option.Option[map[string]string]) Option {
	return func(c *config) {
		c.params.Metadata = o
	}
}

// WithServerSideEncryption sets the server-side encryption mode.
func WithServerSideEncryption(o option.Option[s3types.SSEType]) Option {
	return func(c *config) {
		c.params.ServerSideEncryption = o
	}
}

// WithSSEKMSKeyID sets the KMS key used with aws:kms encryption.
func WithSSEKMSKeyID(o option.Option[string]) Option {
	return func(c *config) {
		c.params.SSEKMSKeyID = o
	}
}

// WithTagging sets the object tags as a URL-encoded query string, e.g. "a=1&b=2".
func WithTagging(o option.Option[string]) Option {
	return func(c *config) {
		c.params.Tagging = o
	}
}

// WithLogger sets a custom logger for the storage.
// If not provided, a no-op logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProgress installs a per-file progress tracker factory.
// The returned tracker sees every event the backend reports.
func WithProgress(fn TrackerFunc) Option {
	return func(c *config) {
		c.trackers = fn
	}
}

// WithRegion sets the AWS region of the S3 backend.
// If not specified, uses the region from the credential chain.
func WithRegion(region string) s3types.ClientOption {
	return func(c *s3types.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) s3types.ClientOption {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted style.
func WithForcePathStyle(forcePathStyle bool) s3types.ClientOption {
	return func(c *s3types.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithMaxRetries sets the maximum number of attempts for failed requests.
func WithMaxRetries(maxRetries int) s3types.ClientOption {
	return func(c *s3types.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the HTTP client timeout for S3 requests.
// Default is no timeout.
func WithTimeout(timeout time.Duration) s3types.ClientOption {
	return func(c *s3types.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithConcurrency sets the number of parts uploaded in parallel.
func WithConcurrency(concurrency int) s3types.ClientOption {
	return func(c *s3types.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithDefaultPartSize sets the part size used when an upload does not set one.
// Must be at least 5MB.
func WithDefaultPartSize(partSize int64) s3types.ClientOption {
	return func(c *s3types.ClientConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithAWSConfig provides a custom AWS configuration instead of loading the
// default credential chain.
func WithAWSConfig(cfg *aws.Config) s3types.ClientOption {
	return func(c *s3types.ClientConfig) {
		c.CustomAWSConfig = cfg
	}
}

// WithCustomHTTPClient provides the HTTP client used for S3 requests.
func WithCustomHTTPClient(client *http.Client) s3types.ClientOption {
	return func(c *s3types.ClientConfig) {
		c.CustomHTTPClient = client
	}
}
