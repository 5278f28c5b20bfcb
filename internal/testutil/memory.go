package testutil

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload/internal/s3api"
)

// StoredObject is an object held by MemoryS3 together with the request
// attributes it was written with.
type StoredObject struct {
	Body                 []byte
	ETag                 string
	ACL                  types.ObjectCannedACL
	CacheControl         string
	ContentDisposition   string
	ContentEncoding      string
	ContentType          string
	Metadata             map[string]string
	ServerSideEncryption types.ServerSideEncryption
	SSEKMSKeyID          string
	StorageClass         types.StorageClass
	Tagging              string
	Parts                int
}

type pendingUpload struct {
	object StoredObject
	bucket string
	key    string
	parts  map[int32][]byte
}

// MemoryS3 is an in-memory S3 double that accepts single and multipart
// writes. Deletes of missing objects succeed, as they do on S3.
type MemoryS3 struct {
	mu      sync.Mutex
	objects map[string]StoredObject
	uploads map[string]*pendingUpload
	nextID  int
	deletes int
	aborts  int
}

// NewMemoryS3 creates an empty MemoryS3.
func NewMemoryS3() *MemoryS3 {
	return &MemoryS3{
		objects: make(map[string]StoredObject),
		uploads: make(map[string]*pendingUpload),
	}
}

func objectKey(bucket, key *string) string {
	return aws.ToString(bucket) + "/" + aws.ToString(key)
}

// Object returns the stored object at bucket/key.
func (m *MemoryS3) Object(bucket, key string) (StoredObject, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[bucket+"/"+key]
	return obj, ok
}

// Len returns the number of stored objects.
func (m *MemoryS3) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Deletes returns the number of DeleteObject calls served.
func (m *MemoryS3) Deletes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deletes
}

// Aborts returns the number of aborted multipart uploads.
func (m *MemoryS3) Aborts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aborts
}

// PutObject stores the body in a single request.
func (m *MemoryS3) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	data, err := drain(params.Body)
	if err != nil {
		return nil, err
	}

	obj := StoredObject{
		Body:                 data,
		ETag:                 CalculateETag(data),
		ACL:                  params.ACL,
		CacheControl:         aws.ToString(params.CacheControl),
		ContentDisposition:   aws.ToString(params.ContentDisposition),
		ContentEncoding:      aws.ToString(params.ContentEncoding),
		ContentType:          aws.ToString(params.ContentType),
		Metadata:             params.Metadata,
		ServerSideEncryption: params.ServerSideEncryption,
		SSEKMSKeyID:          aws.ToString(params.SSEKMSKeyId),
		StorageClass:         params.StorageClass,
		Tagging:              aws.ToString(params.Tagging),
	}

	m.mu.Lock()
	m.objects[objectKey(params.Bucket, params.Key)] = obj
	m.mu.Unlock()

	return &s3.PutObjectOutput{ETag: aws.String(obj.ETag)}, nil
}

// CreateMultipartUpload opens a pending upload.
func (m *MemoryS3) CreateMultipartUpload(
	ctx context.Context,
	params *s3.CreateMultipartUploadInput,
	_ ...func(*s3.Options),
) (*s3.CreateMultipartUploadOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := fmt.Sprintf("upload-%d", m.nextID)
	m.uploads[id] = &pendingUpload{
		bucket: aws.ToString(params.Bucket),
		key:    aws.ToString(params.Key),
		parts:  make(map[int32][]byte),
		object: StoredObject{
			ACL:                  params.ACL,
			CacheControl:         aws.ToString(params.CacheControl),
			ContentDisposition:   aws.ToString(params.ContentDisposition),
			ContentEncoding:      aws.ToString(params.ContentEncoding),
			ContentType:          aws.ToString(params.ContentType),
			Metadata:             params.Metadata,
			ServerSideEncryption: params.ServerSideEncryption,
			SSEKMSKeyID:          aws.ToString(params.SSEKMSKeyId),
			StorageClass:         params.StorageClass,
			Tagging:              aws.ToString(params.Tagging),
		},
	}

	return &s3.CreateMultipartUploadOutput{
		UploadId: aws.String(id),
		Bucket:   params.Bucket,
		Key:      params.Key,
	}, nil
}

// UploadPart buffers one part of a pending upload.
func (m *MemoryS3) UploadPart(
	ctx context.Context,
	params *s3.UploadPartInput,
	_ ...func(*s3.Options),
) (*s3.UploadPartOutput, error) {
	data, err := drain(params.Body)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	up, ok := m.uploads[aws.ToString(params.UploadId)]
	if !ok {
		return nil, &types.NoSuchUpload{Message: aws.String("upload not found")}
	}
	up.parts[aws.ToInt32(params.PartNumber)] = data

	return &s3.UploadPartOutput{ETag: aws.String(CalculateETag(data))}, nil
}

// CompleteMultipartUpload assembles the parts in part-number order.
func (m *MemoryS3) CompleteMultipartUpload(
	ctx context.Context,
	params *s3.CompleteMultipartUploadInput,
	_ ...func(*s3.Options),
) (*s3.CompleteMultipartUploadOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := aws.ToString(params.UploadId)
	up, ok := m.uploads[id]
	if !ok {
		return nil, &types.NoSuchUpload{Message: aws.String("upload not found")}
	}
	delete(m.uploads, id)

	numbers := make([]int32, 0, len(up.parts))
	for n := range up.parts {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)

	var body bytes.Buffer
	digests := md5.New()
	for _, n := range numbers {
		body.Write(up.parts[n])
		sum := md5.Sum(up.parts[n])
		digests.Write(sum[:])
	}

	obj := up.object
	obj.Body = body.Bytes()
	obj.Parts = len(numbers)
	obj.ETag = fmt.Sprintf(`"%x-%d"`, digests.Sum(nil), len(numbers))
	m.objects[up.bucket+"/"+up.key] = obj

	return &s3.CompleteMultipartUploadOutput{
		Bucket:   params.Bucket,
		Key:      params.Key,
		ETag:     aws.String(obj.ETag),
		Location: aws.String(fmt.Sprintf("https://%s.s3.local/%s", up.bucket, up.key)),
	}, nil
}

// AbortMultipartUpload discards a pending upload.
func (m *MemoryS3) AbortMultipartUpload(
	ctx context.Context,
	params *s3.AbortMultipartUploadInput,
	_ ...func(*s3.Options),
) (*s3.AbortMultipartUploadOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.uploads, aws.ToString(params.UploadId))
	m.aborts++
	return &s3.AbortMultipartUploadOutput{}, nil
}

// DeleteObject removes an object; missing objects are not an error.
func (m *MemoryS3) DeleteObject(
	ctx context.Context,
	params *s3.DeleteObjectInput,
	_ ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, objectKey(params.Bucket, params.Key))
	m.deletes++
	return &s3.DeleteObjectOutput{}, nil
}

func drain(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	return io.ReadAll(r)
}

var _ s3api.S3API = (*MemoryS3)(nil)
