package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
)

const (
	// MinPartSize is the smallest accepted multipart part size (5 MiB).
	MinPartSize int64 = 5 * 1024 * 1024

	// MaxPartSize is the largest accepted multipart part size (5 GiB).
	MaxPartSize int64 = 5 * 1024 * 1024 * 1024

	maxKeyLength           = 1024
	maxMetadataKeyLength   = 128
	maxMetadataValueLength = 2048
)

// ValidateParams checks every field of a resolved bundle.
func ValidateParams(p *s3types.Params) error {
	checks := []func() error{
		func() error { return ValidateBucket(p.Bucket) },
		func() error { return ValidateObjectKey(p.Key) },
		func() error { return ValidateACL(p.ACL) },
		func() error { return ValidateStorageClass(p.StorageClass) },
		func() error { return ValidateEncryption(p.ServerSideEncryption, p.SSEKMSKeyID) },
		func() error { return ValidatePartSize(p.PartSize) },
		func() error { return ValidateMetadata(p.Metadata) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBucket checks that a bucket name is usable by any S3-compatible store.
func ValidateBucket(bucket string) error {
	if bucket == "" {
		return errors.NewError("validateBucket", errors.ErrInvalidBucketName).
			WithMessage("bucket name cannot be empty")
	}
	if strings.ContainsRune(bucket, '/') || hasControlCharacters(bucket) {
		return errors.NewError("validateBucket", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("bucket name cannot contain slashes or control characters")
	}
	return nil
}

// ValidateBucketName validates that a bucket name is DNS-compliant according to AWS S3 rules.
func ValidateBucketName(bucket string) error {
	invalid := func(msg string) error {
		return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage(msg)
	}

	if bucket == "" {
		return invalid("bucket name cannot be empty")
	}
	if len(bucket) < 3 || len(bucket) > 63 {
		return invalid("bucket name must be between 3 and 63 characters long")
	}
	for _, char := range bucket {
		if !isValidBucketChar(char) {
			return invalid("bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	first, last := bucket[0], bucket[len(bucket)-1]
	if first == '-' || first == '.' || last == '-' || last == '.' {
		return invalid("bucket name cannot start or end with a hyphen or dot")
	}
	if isIPAddress(bucket) {
		return invalid("bucket name cannot be formatted as an IP address")
	}
	if strings.Contains(bucket, "..") || strings.Contains(bucket, "--") {
		return invalid("bucket name cannot contain two adjacent periods or hyphens")
	}
	return nil
}

// ValidateObjectKey validates that an object key is valid according to AWS S3 rules.
// This includes preventing path traversal and control characters.
func ValidateObjectKey(key string) error {
	invalid := func(msg string) error {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage(msg)
	}

	switch {
	case key == "":
		return invalid("object key cannot be empty")
	case hasPathTraversal(key):
		return invalid("object key cannot contain path traversal sequences")
	case len(key) > maxKeyLength:
		return invalid(fmt.Sprintf("object key cannot exceed %d bytes", maxKeyLength))
	case hasControlCharacters(key):
		return invalid("object key cannot contain control characters")
	}
	return nil
}

// ValidateACL validates that an ACL value is a known canned ACL.
func ValidateACL(acl s3types.ObjectACL) error {
	switch acl {
	case "", s3types.ACLPrivate, s3types.ACLPublicRead, s3types.ACLPublicReadWrite,
		s3types.ACLAuthenticatedRead, s3types.ACLAWSExecRead, s3types.ACLOwnerRead,
		s3types.ACLOwnerFullControl:
		return nil
	}
	return errors.NewError("validateACL", errors.ErrInvalidInput).
		WithMessage(fmt.Sprintf("unknown ACL %q", acl))
}

// ValidateStorageClass validates that a storage class is known.
func ValidateStorageClass(class s3types.StorageClass) error {
	switch class {
	case "", s3types.StorageClassStandard, s3types.StorageClassReducedRedundancy,
		s3types.StorageClassStandardIA, s3types.StorageClassOneZoneIA,
		s3types.StorageClassIntelligentTiering, s3types.StorageClassGlacier,
		s3types.StorageClassDeepArchive, s3types.StorageClassGlacierIR:
		return nil
	}
	return errors.NewError("validateStorageClass", errors.ErrInvalidInput).
		WithMessage(fmt.Sprintf("unknown storage class %q", class))
}

// ValidateEncryption checks the server-side encryption mode and KMS key pairing.
func ValidateEncryption(sse s3types.SSEType, kmsKeyID string) error {
	switch sse {
	case "", s3types.SSES3, s3types.SSEKMS:
	default:
		return errors.NewError("validateEncryption", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("unknown server-side encryption %q", sse))
	}
	if kmsKeyID != "" && sse != s3types.SSEKMS {
		return errors.NewError("validateEncryption", errors.ErrInvalidInput).
			WithMessage("a KMS key ID requires aws:kms server-side encryption")
	}
	return nil
}

// ValidatePartSize checks a multipart part size. Zero selects the backend default.
func ValidatePartSize(size int64) error {
	if size == 0 {
		return nil
	}
	if size < MinPartSize || size > MaxPartSize {
		return errors.NewError("validatePartSize", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("part size must be between %d and %d bytes", MinPartSize, MaxPartSize))
	}
	return nil
}

// ValidateMetadata validates metadata keys and values according to S3 rules.
func ValidateMetadata(metadata map[string]string) error {
	for key, value := range metadata {
		if err := validateMetadataKey(key); err != nil {
			return err
		}
		if err := validateMetadataValue(value); err != nil {
			return err
		}
	}
	return nil
}

func isValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

// isIPAddress checks if a string is formatted as an IP address
func isIPAddress(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}

	for _, part := range parts {
		if len(part) == 0 {
			return true
		}
		num := 0
		for _, char := range part {
			if char < '0' || char > '9' {
				return false
			}
			num = num*10 + int(char-'0')
		}
		if num > 255 {
			return false
		}
	}
	return true
}

// hasPathTraversal checks for path traversal attempts in object keys
func hasPathTraversal(key string) bool {
	if strings.Contains(key, "..") {
		return true
	}

	cleaned := filepath.Clean(key)
	if strings.HasPrefix(cleaned, "/") {
		return true
	}
	// Windows-style absolute paths
	return len(cleaned) >= 3 && cleaned[1] == ':' && (cleaned[2] == '\\' || cleaned[2] == '/')
}

func hasControlCharacters(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

func validateMetadataKey(key string) error {
	invalid := func(msg string) error {
		return errors.NewError("validateMetadata", errors.ErrInvalidInput).WithMessage(msg)
	}

	if key == "" {
		return invalid("metadata key cannot be empty")
	}
	if len(key) > maxMetadataKeyLength {
		return invalid(fmt.Sprintf("metadata key cannot exceed %d characters", maxMetadataKeyLength))
	}

	lower := strings.ToLower(key)
	for _, prefix := range []string{"aws:", "x-amz-", "x-amz:"} {
		if strings.HasPrefix(lower, prefix) {
			return invalid(fmt.Sprintf("metadata key cannot start with reserved prefix: %s", prefix))
		}
	}

	// Printable ASCII without spaces
	for _, char := range key {
		if char <= 32 || char > 126 {
			return invalid("metadata key can only contain printable ASCII characters")
		}
	}
	return nil
}

func validateMetadataValue(value string) error {
	if len(value) > maxMetadataValueLength {
		return errors.NewError("validateMetadata", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("metadata value cannot exceed %d characters", maxMetadataValueLength))
	}
	for _, char := range value {
		if !unicode.IsPrint(char) && char != '\t' {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).
				WithMessage("metadata value can only contain printable characters")
		}
	}
	return nil
}
