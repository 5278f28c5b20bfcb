package upload

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/s3upload/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
)

const mib = 1024 * 1024

func TestUploader_Upload_Simple(t *testing.T) {
	store := testutil.NewMemoryS3()
	tracker := &testutil.MockProgressTracker{}
	u := New(store)

	out, err := u.Upload(context.Background(), &s3types.PutInput{
		Bucket:      "b",
		Key:         "k1",
		Body:        strings.NewReader("0123456789"),
		ContentType: "text/plain",
	}, tracker)
	require.NoError(t, err)

	assert.Equal(t, testutil.CalculateETag([]byte("0123456789")), out.ETag)

	obj, ok := store.Object("b", "k1")
	require.True(t, ok)
	assert.Equal(t, "0123456789", string(obj.Body))
	assert.Equal(t, "text/plain", obj.ContentType)
	assert.Zero(t, obj.Parts)

	assert.Equal(t, int64(10), tracker.TotalBytes)
	assert.Equal(t, int64(10), tracker.BytesTransferred)
	assert.True(t, tracker.CompleteCalled)
	assert.False(t, tracker.ErrorCalled)
}

func TestUploader_Upload_MapsAttributes(t *testing.T) {
	tests := []struct {
		name  string
		input s3types.PutInput
		check func(t *testing.T, obj testutil.StoredObject)
	}{
		{
			name: "acl and storage class",
			input: s3types.PutInput{
				ACL:          s3types.ACLPublicRead,
				StorageClass: s3types.StorageClassStandardIA,
			},
			check: func(t *testing.T, obj testutil.StoredObject) {
				assert.Equal(t, awstypes.ObjectCannedACLPublicRead, obj.ACL)
				assert.Equal(t, awstypes.StorageClassStandardIa, obj.StorageClass)
			},
		},
		{
			name: "headers and tags",
			input: s3types.PutInput{
				CacheControl:       "max-age=3600",
				ContentDisposition: `attachment; filename="a.txt"`,
				ContentEncoding:    "gzip",
				Tagging:            "team=media&env=test",
				Metadata:           map[string]string{"owner": "alice"},
			},
			check: func(t *testing.T, obj testutil.StoredObject) {
				assert.Equal(t, "max-age=3600", obj.CacheControl)
				assert.Equal(t, `attachment; filename="a.txt"`, obj.ContentDisposition)
				assert.Equal(t, "gzip", obj.ContentEncoding)
				assert.Equal(t, "team=media&env=test", obj.Tagging)
				assert.Equal(t, map[string]string{"owner": "alice"}, obj.Metadata)
			},
		},
		{
			name:  "sse-s3",
			input: s3types.PutInput{ServerSideEncryption: s3types.SSES3},
			check: func(t *testing.T, obj testutil.StoredObject) {
				assert.Equal(t, awstypes.ServerSideEncryptionAes256, obj.ServerSideEncryption)
				assert.Empty(t, obj.SSEKMSKeyID)
			},
		},
		{
			name:  "sse-kms",
			input: s3types.PutInput{ServerSideEncryption: s3types.SSEKMS, SSEKMSKeyID: "arn:aws:kms:key"},
			check: func(t *testing.T, obj testutil.StoredObject) {
				assert.Equal(t, awstypes.ServerSideEncryptionAwsKms, obj.ServerSideEncryption)
				assert.Equal(t, "arn:aws:kms:key", obj.SSEKMSKeyID)
			},
		},
		{
			name:  "empty fields stay unset",
			input: s3types.PutInput{},
			check: func(t *testing.T, obj testutil.StoredObject) {
				assert.Empty(t, obj.ACL)
				assert.Empty(t, obj.ContentType)
				assert.Empty(t, obj.ServerSideEncryption)
				assert.Nil(t, obj.Metadata)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMemoryS3()
			in := tt.input
			in.Bucket, in.Key, in.Body = "b", "k", strings.NewReader("body")

			_, err := New(store).Upload(context.Background(), &in, nil)
			require.NoError(t, err)

			obj, ok := store.Object("b", "k")
			require.True(t, ok)
			tt.check(t, obj)
		})
	}
}

func TestUploader_Upload_Multipart(t *testing.T) {
	store := testutil.NewMemoryS3()
	tracker := &testutil.MockProgressTracker{}
	data := testutil.GenerateRandomData(11 * mib)

	out, err := New(store, WithConcurrency(2)).Upload(context.Background(), &s3types.PutInput{
		Bucket:      "b",
		Key:         "large.bin",
		Body:        bytes.NewReader(data),
		ContentType: "application/octet-stream",
		PartSize:    5 * mib,
	}, tracker)
	require.NoError(t, err)

	obj, ok := store.Object("b", "large.bin")
	require.True(t, ok)
	assert.Equal(t, 3, obj.Parts)
	assert.Equal(t, data, obj.Body)
	assert.Equal(t, "application/octet-stream", obj.ContentType)

	assert.True(t, strings.HasSuffix(out.ETag, `-3"`))
	assert.Equal(t, int64(len(data)), tracker.TotalBytes)
}

func TestUploader_Upload_DefaultPartSize(t *testing.T) {
	store := testutil.NewMemoryS3()
	data := testutil.GenerateRandomData(6 * mib)

	_, err := New(store, WithPartSize(5*mib)).Upload(context.Background(), &s3types.PutInput{
		Bucket: "b",
		Key:    "k",
		Body:   bytes.NewReader(data),
	}, nil)
	require.NoError(t, err)

	obj, _ := store.Object("b", "k")
	assert.Equal(t, 2, obj.Parts)
}

func TestUploader_Upload_Errors(t *testing.T) {
	t.Run("backend failure", func(t *testing.T) {
		errBoom := errors.New("connection refused")
		tracker := &testutil.MockProgressTracker{}
		mock := testutil.NewMockBuilder().WithFailedUpload(errBoom).Build()

		_, err := New(mock).Upload(context.Background(), &s3types.PutInput{
			Bucket: "b", Key: "k", Body: strings.NewReader("x"),
		}, tracker)

		require.Error(t, err)
		assert.ErrorIs(t, err, errBoom)
		assert.Contains(t, err.Error(), "s3upload.upload")
		assert.True(t, tracker.ErrorCalled)
		assert.False(t, tracker.CompleteCalled)
	})

	t.Run("access denied is classified", func(t *testing.T) {
		mock := testutil.NewMockBuilder().WithAccessDenied().Build()

		_, err := New(mock).Upload(context.Background(), &s3types.PutInput{
			Bucket: "b", Key: "k", Body: strings.NewReader("x"),
		}, nil)

		assert.True(t, s3errors.IsAccessDenied(err))
	})

	t.Run("body read failure", func(t *testing.T) {
		errRead := errors.New("client went away")
		tracker := &testutil.MockProgressTracker{}

		_, err := New(testutil.NewMemoryS3()).Upload(context.Background(), &s3types.PutInput{
			Bucket: "b", Key: "k", Body: &failingReader{err: errRead},
		}, tracker)

		assert.ErrorIs(t, err, errRead)
		assert.True(t, tracker.ErrorCalled)
	})
}

func TestUploader_Upload_PassesContext(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "request-42")

	mock := testutil.NewMockBuilder().
		WithPutObject(func(ctx context.Context, _ *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			assert.Equal(t, "request-42", ctx.Value(ctxKey{}))
			return &s3.PutObjectOutput{ETag: aws.String(`"e"`), VersionId: aws.String("v1")}, nil
		}).
		Build()

	out, err := New(mock).Upload(ctx, &s3types.PutInput{Bucket: "b", Key: "k", Body: strings.NewReader("x")}, nil)
	require.NoError(t, err)
	assert.Equal(t, `"e"`, out.ETag)
	assert.Equal(t, "v1", out.VersionID)
}

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}
