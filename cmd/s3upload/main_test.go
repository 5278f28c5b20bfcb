package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
)

const svgDoc = `<?xml version="1.0"?><!-- logo --><svg xmlns="http://www.w3.org/2000/svg"></svg>`

// run executes the command tree against backend and returns stdout.
func run(t *testing.T, backend s3upload.Backend, env map[string]string, args ...string) (string, error) {
	t.Helper()

	factory := func(context.Context, *globalFlags) (s3upload.Backend, error) {
		return backend, nil
	}

	root := newRootCmd(factory, func(k string) string { return env[k] })
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPut_SniffsContentType(t *testing.T) {
	backend := &testutil.MockBackend{}
	path := writeFile(t, "logo.svg", svgDoc)

	out, err := run(t, backend, nil, "put", path, "--bucket", "media", "--key", "brand/logo.svg")
	require.NoError(t, err)

	var result s3types.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "media", result.Bucket)
	assert.Equal(t, "brand/logo.svg", result.Key)
	assert.Equal(t, "image/svg+xml", result.ContentType)
	assert.Equal(t, s3types.ACLPrivate, result.ACL)
	assert.Equal(t, int64(len(svgDoc)), result.Size)
	assert.True(t, result.SizeReported)
	assert.Equal(t, testutil.CalculateETag([]byte(svgDoc)), result.ETag)
}

func TestPut_Flags(t *testing.T) {
	backend := &testutil.MockBackend{}
	path := writeFile(t, "notes.txt", "hello")

	_, err := run(t, backend, nil, "put", path,
		"--bucket", "media",
		"--content-type", "text/plain",
		"--acl", "public-read",
		"--storage-class", "STANDARD_IA",
		"--part-size", "8388608",
		"--tagging", "team=media",
		"--cache-control", "max-age=60",
		"--content-disposition", "inline",
		"--content-encoding", "identity",
		"--sse", "aws:kms",
		"--sse-kms-key-id", "kms-key",
		"--meta", "owner=alice",
		"--meta", "env=prod",
	)
	require.NoError(t, err)

	in := backend.LastInput()
	require.NotNil(t, in)
	assert.Equal(t, "text/plain", in.ContentType)
	assert.Equal(t, s3types.ACLPublicRead, in.ACL)
	assert.Equal(t, s3types.StorageClassStandardIA, in.StorageClass)
	assert.Equal(t, int64(8388608), in.PartSize)
	assert.Equal(t, "team=media", in.Tagging)
	assert.Equal(t, "max-age=60", in.CacheControl)
	assert.Equal(t, "inline", in.ContentDisposition)
	assert.Equal(t, "identity", in.ContentEncoding)
	assert.Equal(t, s3types.SSEKMS, in.ServerSideEncryption)
	assert.Equal(t, "kms-key", in.SSEKMSKeyID)
	assert.Equal(t, map[string]string{"owner": "alice", "env": "prod"}, in.Metadata)
	assert.Len(t, in.Key, 32)
}

func TestPut_BucketFromEnvironment(t *testing.T) {
	backend := &testutil.MockBackend{}
	path := writeFile(t, "a.bin", "data")

	out, err := run(t, backend, map[string]string{"S3UPLOAD_BUCKET": "from-env"}, "put", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"bucket": "from-env"`)
}

func TestPut_Errors(t *testing.T) {
	path := writeFile(t, "a.bin", "data")

	tests := []struct {
		name string
		args []string
	}{
		{"missing bucket", []string{"put", path}},
		{"invalid bucket", []string{"put", path, "--bucket", "Not_Valid"}},
		{"bad metadata", []string{"put", path, "--bucket", "media", "--meta", "novalue"}},
		{"part size too small", []string{"put", path, "--bucket", "media", "--part-size", "1024"}},
		{"missing file", []string{"put", filepath.Join(t.TempDir(), "nope"), "--bucket", "media"}},
		{"no path", []string{"put", "--bucket", "media"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &testutil.MockBackend{}
			_, err := run(t, backend, nil, tt.args...)
			require.Error(t, err)
			assert.Zero(t, backend.PutCalls())
		})
	}
}

func TestPut_BackendError(t *testing.T) {
	backend := &testutil.MockBackend{
		PutFunc: func(context.Context, *s3types.PutInput, s3types.ProgressTracker) (*s3types.PutOutput, error) {
			return nil, errors.ErrAccessDenied
		},
	}
	path := writeFile(t, "a.bin", "data")

	out, err := run(t, backend, nil, "put", path, "--bucket", "media")
	assert.ErrorIs(t, err, errors.ErrAccessDenied)
	assert.Empty(t, out)
}

func TestRm(t *testing.T) {
	var gotBucket, gotKey string
	backend := &testutil.MockBackend{
		DeleteFunc: func(_ context.Context, bucket, key string) error {
			gotBucket, gotKey = bucket, key
			return nil
		},
	}

	out, err := run(t, backend, nil, "rm", "--bucket", "media", "--key", "brand/logo.svg")
	require.NoError(t, err)

	assert.Equal(t, "media", gotBucket)
	assert.Equal(t, "brand/logo.svg", gotKey)

	var got removal
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, removal{Bucket: "media", Key: "brand/logo.svg", Removed: true}, got)
}

func TestRm_RequiresBucketAndKey(t *testing.T) {
	backend := &testutil.MockBackend{}

	_, err := run(t, backend, nil, "rm", "--bucket", "media")
	require.Error(t, err)
	assert.Zero(t, backend.DeleteCalls())
}

func TestGlobalFlags_Environment(t *testing.T) {
	env := map[string]string{
		"S3UPLOAD_BACKEND":    "minio",
		"S3UPLOAD_ENDPOINT":   "localhost:9000",
		"S3UPLOAD_PATH_STYLE": "true",
		"S3UPLOAD_VERBOSE":    "yes",
	}

	var got globalFlags
	factory := func(_ context.Context, g *globalFlags) (s3upload.Backend, error) {
		got = *g
		return &testutil.MockBackend{}, nil
	}
	root := newRootCmd(factory, func(k string) string { return env[k] })
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"rm", "--bucket", "media", "--key", "k", "--endpoint", "override:9000"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Equal(t, "minio", got.Backend)
	assert.Equal(t, "override:9000", got.Endpoint)
	assert.True(t, got.PathStyle)
	// "yes" is not a boolean.
	assert.False(t, got.Verbose)
}

func TestParseMeta(t *testing.T) {
	meta, err := parseMeta([]string{"a=1", "b=x=y", "a=2", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "2", "b": "x=y", "empty": ""}, meta)

	_, err = parseMeta([]string{"=v"})
	assert.Error(t, err)
}

func TestNewBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown", func(t *testing.T) {
		_, err := newBackend(ctx, &globalFlags{Backend: "ftp"})
		assert.ErrorContains(t, err, "unknown backend")
	})

	t.Run("minio requires endpoint", func(t *testing.T) {
		_, err := newBackend(ctx, &globalFlags{Backend: "minio"})
		assert.True(t, errors.IsInvalidInput(err))
	})

	t.Run("minio", func(t *testing.T) {
		b, err := newBackend(ctx, &globalFlags{Backend: "minio", Endpoint: "localhost:9000"})
		require.NoError(t, err)
		assert.NotNil(t, b)
	})

	t.Run("s3", func(t *testing.T) {
		t.Setenv("AWS_ACCESS_KEY_ID", "test")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
		b, err := newBackend(ctx, &globalFlags{Backend: "s3", Region: "eu-west-1", Endpoint: "http://localhost:4566", PathStyle: true})
		require.NoError(t, err)
		assert.NotNil(t, b)
	})
}
