// Package s3types provides shared type definitions for the upload engine.
package s3types

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// DefaultContentType is the content type used when none is configured or detected.
const DefaultContentType = "application/octet-stream"

// StorageClass represents the S3 storage class for objects.
type StorageClass string

// Predefined S3 storage classes
const (
	// StorageClassStandard is the default S3 storage class
	StorageClassStandard StorageClass = "STANDARD"

	// StorageClassReducedRedundancy provides reduced redundancy storage
	StorageClassReducedRedundancy StorageClass = "REDUCED_REDUNDANCY"

	// StorageClassStandardIA provides infrequent access storage
	StorageClassStandardIA StorageClass = "STANDARD_IA"

	// StorageClassOneZoneIA provides one zone infrequent access storage
	StorageClassOneZoneIA StorageClass = "ONEZONE_IA"

	// StorageClassIntelligentTiering provides intelligent tiering storage
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"

	// StorageClassGlacier provides Glacier archival storage
	StorageClassGlacier StorageClass = "GLACIER"

	// StorageClassDeepArchive provides Deep Archive storage
	StorageClassDeepArchive StorageClass = "DEEP_ARCHIVE"

	// StorageClassGlacierIR provides Glacier Instant Retrieval storage
	StorageClassGlacierIR StorageClass = "GLACIER_IR"
)

// SSEType represents the server-side encryption mode for objects.
type SSEType string

// Predefined server-side encryption modes
const (
	// SSES3 uses S3-managed encryption keys
	SSES3 SSEType = "AES256"

	// SSEKMS uses AWS KMS-managed encryption keys
	SSEKMS SSEType = "aws:kms"
)

// ObjectACL represents the canned access control list for stored objects.
type ObjectACL string

// Predefined object ACLs
const (
	// ACLPrivate grants private access (default)
	ACLPrivate ObjectACL = "private"

	// ACLPublicRead grants public read access
	ACLPublicRead ObjectACL = "public-read"

	// ACLPublicReadWrite grants public read and write access
	ACLPublicReadWrite ObjectACL = "public-read-write"

	// ACLAuthenticatedRead grants authenticated users read access
	ACLAuthenticatedRead ObjectACL = "authenticated-read"

	// ACLAWSExecRead grants EC2 read access for AMI bundles
	ACLAWSExecRead ObjectACL = "aws-exec-read"

	// ACLOwnerRead grants bucket owner read access
	ACLOwnerRead ObjectACL = "bucket-owner-read"

	// ACLOwnerFullControl grants bucket owner full control
	ACLOwnerFullControl ObjectACL = "bucket-owner-full-control"
)

// File is an in-flight upload handed over by the host middleware.
//
// The byte stream is guarded so a content-type producer can swap in a
// replacement stream while other producers run concurrently.
type File struct {
	// FieldName is the form field the file arrived under
	FieldName string

	// OriginalName is the client-supplied file name
	OriginalName string

	// Encoding is the transfer encoding announced by the client
	Encoding string

	// MimeType is the client-supplied content type hint
	MimeType string

	mu     sync.Mutex
	stream io.Reader
}

// NewFile creates a File around stream with the given name and type hints.
func NewFile(stream io.Reader, originalName, mimeType string) *File {
	return &File{
		OriginalName: originalName,
		MimeType:     mimeType,
		stream:       stream,
	}
}

// Stream returns the current byte stream of the file.
func (f *File) Stream() io.Reader {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stream
}

// ReplaceStream installs r as the stream every later consumer reads from.
func (f *File) ReplaceStream(r io.Reader) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stream = r
}

// Params is the resolved parameter bundle for one upload attempt.
// It is created by the collector and never modified afterwards.
type Params struct {
	ACL                  ObjectACL
	Bucket               string
	Key                  string
	CacheControl         string
	ContentDisposition   string
	ContentEncoding      string
	ContentType          string
	Metadata             map[string]string
	ServerSideEncryption SSEType
	SSEKMSKeyID          string
	StorageClass         StorageClass
	PartSize             int64 // zero selects the backend default
	Tagging              string
}

// PutInput holds every parameter of one backend write.
type PutInput struct {
	ACL                  ObjectACL
	Bucket               string
	Key                  string
	Body                 io.Reader
	CacheControl         string
	ContentDisposition   string
	ContentEncoding      string
	ContentType          string
	Metadata             map[string]string
	ServerSideEncryption SSEType
	SSEKMSKeyID          string
	StorageClass         StorageClass
	PartSize             int64
	Tagging              string
}

// PutOutput holds the identifiers a backend assigns to a stored object.
type PutOutput struct {
	// ETag is the entity tag (content checksum) of the stored object
	ETag string

	// Location is the URL of the stored object, if the backend reports one
	Location string

	// VersionID is the version ID if versioning is enabled
	VersionID string
}

// Result is the record handed back to the host after a successful upload.
type Result struct {
	ACL                  ObjectACL         `json:"acl"`
	Bucket               string            `json:"bucket"`
	CacheControl         string            `json:"cacheControl,omitempty"`
	ContentDisposition   string            `json:"contentDisposition,omitempty"`
	ContentEncoding      string            `json:"contentEncoding,omitempty"`
	ContentType          string            `json:"contentType"`
	ETag                 string            `json:"etag"`
	Key                  string            `json:"key"`
	Location             string            `json:"location,omitempty"`
	Metadata             map[string]string `json:"metadata,omitempty"`
	ServerSideEncryption SSEType           `json:"serverSideEncryption,omitempty"`
	SSEKMSKeyID          string            `json:"sseKmsKeyId,omitempty"`
	StorageClass         StorageClass      `json:"storageClass"`
	Tagging              string            `json:"tagging,omitempty"`
	VersionID            string            `json:"versionId,omitempty"`

	// Size is the last known total reported by the backend.
	// It stays zero when no progress event carried a total.
	Size int64 `json:"size"`

	// SizeReported tells whether Size came from a progress event.
	SizeReported bool `json:"sizeReported"`
}

// Ref returns the removal request for the stored object.
func (r *Result) Ref() FileRef {
	return FileRef{Bucket: r.Bucket, Key: r.Key}
}

// FileRef locates a previously stored object.
type FileRef struct {
	Bucket string
	Key    string
}

// ProgressTracker defines the interface for tracking transfer progress.
// Backends call it while the body is streamed.
type ProgressTracker interface {
	// Update is called periodically with transfer progress.
	// A negative totalBytes means the total is not known yet.
	Update(bytesTransferred, totalBytes int64)

	// Complete is called when the transfer completes successfully
	Complete()

	// Error is called when the transfer fails
	Error(err error)
}

// ClientConfig holds configuration for the S3 backend client.
type ClientConfig struct {
	Region           string
	Endpoint         string
	MaxRetries       int
	Timeout          time.Duration
	Concurrency      int
	PartSize         int64
	ForcePathStyle   bool
	CustomAWSConfig  *aws.Config
	CustomHTTPClient *http.Client
}

// ClientOption is a functional option for configuring the S3 backend client.
type ClientOption func(*ClientConfig)
