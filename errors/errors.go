// Package errors provides error types and handling for upload and removal operations.
package errors

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Error represents an upload engine error with context about the operation that failed.
// It wraps the underlying backend error with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "put", "delete", "handleFile")
	Op string

	// Bucket is the bucket name (if applicable)
	Bucket string

	// Key is the object key (if applicable)
	Key string

	// Err is the underlying error from the backend or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3upload.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3upload.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("s3upload.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3upload.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for common failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("s3upload: object not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("s3upload: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("s3upload: access denied")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("s3upload: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("s3upload: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("s3upload: invalid object key")
)

// apiErrorCodes maps backend error codes onto the sentinel they stand for.
var apiErrorCodes = map[string]error{
	"NoSuchKey":     ErrObjectNotFound,
	"NotFound":      ErrObjectNotFound,
	"NoSuchBucket":  ErrBucketNotFound,
	"AccessDenied":  ErrAccessDenied,
	"InvalidBucket": ErrInvalidBucketName,
}

// ForCode returns the sentinel error a backend error code stands for,
// or nil for codes without one.
func ForCode(code string) error {
	return apiErrorCodes[code]
}

// matches reports whether err is target or carries an API error code mapped to target.
func matches(err, target error) bool {
	if errors.Is(err, target) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErrorCodes[apiErr.ErrorCode()] == target
	}
	return false
}

// IsObjectNotFound checks if an error indicates that an object was not found.
// This handles sentinel errors, wrapped errors and raw AWS API errors.
func IsObjectNotFound(err error) bool {
	return matches(err, ErrObjectNotFound)
}

// IsBucketNotFound checks if an error indicates that a bucket was not found.
// This handles sentinel errors, wrapped errors and raw AWS API errors.
func IsBucketNotFound(err error) bool {
	return matches(err, ErrBucketNotFound)
}

// IsAccessDenied checks if an error indicates access was denied.
// This handles sentinel errors, wrapped errors and raw AWS API errors.
func IsAccessDenied(err error) bool {
	return matches(err, ErrAccessDenied)
}

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidBucketName) ||
		errors.Is(err, ErrInvalidObjectKey)
}
