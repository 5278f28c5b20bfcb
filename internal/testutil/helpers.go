package testutil

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go"
)

// StringPtr returns a pointer to the given string.
// This is useful for AWS SDK inputs that require string pointers.
func StringPtr(s string) *string {
	return aws.String(s)
}

// GenerateRandomData generates random bytes of the specified size.
// This is useful for creating test data for uploads.
func GenerateRandomData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(rand.Intn(256))
	}
	return data
}

// GenerateRandomReader creates an io.Reader with random data of the specified size.
func GenerateRandomReader(size int) io.Reader {
	return bytes.NewReader(GenerateRandomData(size))
}

// GenerateTestKey generates a test object key with optional prefix.
// This helps ensure test isolation by using unique keys.
func GenerateTestKey(prefix string) string {
	timestamp := time.Now().UnixNano()
	random := rand.Int63n(100000)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return fmt.Sprintf("%stest-object-%d-%d", prefix, timestamp, random)
}

// GenerateTestBucketName generates a valid, DNS-compliant test bucket name.
func GenerateTestBucketName(prefix string) string {
	timestamp := time.Now().Unix()
	random := rand.Int31n(10000)
	name := fmt.Sprintf("%s-%d-%d", prefix, timestamp, random)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "-")
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}

// CalculateETag calculates the single-part ETag for the given data.
func CalculateETag(data []byte) string {
	h := md5.Sum(data)
	return fmt.Sprintf(`"%x"`, h)
}

// NewAPIError builds a service error carrying the given S3 error code.
func NewAPIError(code, message string) error {
	return &smithy.GenericAPIError{Code: code, Message: message}
}

// SlowReader yields data in small pieces with a pause before each read.
type SlowReader struct {
	R     io.Reader
	Delay time.Duration
	Chunk int
}

// Read implements io.Reader.
func (s *SlowReader) Read(p []byte) (int, error) {
	time.Sleep(s.Delay)
	if s.Chunk > 0 && len(p) > s.Chunk {
		p = p[:s.Chunk]
	}
	return s.R.Read(p)
}
