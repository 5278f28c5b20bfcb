package params

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload/option"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
)

func newFile() *s3types.File {
	return s3types.NewFile(strings.NewReader("0123456789"), "notes.txt", "text/plain")
}

func TestCollector_Defaults(t *testing.T) {
	c := New(Options{Bucket: option.Static("b")})

	p, err := c.Collect(context.Background(), newFile())
	require.NoError(t, err)

	assert.Equal(t, s3types.ACLPrivate, p.ACL)
	assert.Equal(t, "b", p.Bucket)
	assert.Equal(t, s3types.DefaultContentType, p.ContentType)
	assert.Equal(t, s3types.StorageClassStandard, p.StorageClass)
	assert.Zero(t, p.PartSize)
	assert.Empty(t, p.CacheControl)
	assert.Empty(t, p.ContentDisposition)
	assert.Empty(t, p.ContentEncoding)
	assert.Empty(t, p.ServerSideEncryption)
	assert.Empty(t, p.SSEKMSKeyID)
	assert.Empty(t, p.Tagging)
	assert.Nil(t, p.Metadata)

	assert.Len(t, p.Key, 32)
	_, err = hex.DecodeString(p.Key)
	assert.NoError(t, err)
}

func TestCollector_RandomKeysDiffer(t *testing.T) {
	c := New(Options{Bucket: option.Static("b")})

	first, err := c.Collect(context.Background(), newFile())
	require.NoError(t, err)
	second, err := c.Collect(context.Background(), newFile())
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
}

func TestCollector_MixedShapes(t *testing.T) {
	c := New(Options{
		ACL:    option.Static(s3types.ACLPublicRead),
		Bucket: option.Static("media"),
		Key: option.Func(func(_ context.Context, f *s3types.File) (string, error) {
			return "avatars/" + f.OriginalName, nil
		}),
		ContentType: option.Callback(func(_ context.Context, f *s3types.File, done func(string, error)) {
			go done(f.MimeType, nil)
		}),
		Metadata: option.Func(func(context.Context, *s3types.File) (map[string]string, error) {
			return map[string]string{"owner": "alice"}, nil
		}),
		ServerSideEncryption: option.Static(s3types.SSEKMS),
		SSEKMSKeyID:          option.Static("kms-key"),
		StorageClass:         option.Static(s3types.StorageClassStandardIA),
		PartSize:             option.Static(int64(10 * 1024 * 1024)),
		Tagging:              option.Static("team=media"),
		CacheControl:         option.Static("max-age=60"),
		ContentDisposition:   option.Static("inline"),
		ContentEncoding:      option.Static("gzip"),
	})

	p, err := c.Collect(context.Background(), newFile())
	require.NoError(t, err)

	assert.Equal(t, &s3types.Params{
		ACL:                  s3types.ACLPublicRead,
		Bucket:               "media",
		Key:                  "avatars/notes.txt",
		CacheControl:         "max-age=60",
		ContentDisposition:   "inline",
		ContentEncoding:      "gzip",
		ContentType:          "text/plain",
		Metadata:             map[string]string{"owner": "alice"},
		ServerSideEncryption: s3types.SSEKMS,
		SSEKMSKeyID:          "kms-key",
		StorageClass:         s3types.StorageClassStandardIA,
		PartSize:             10 * 1024 * 1024,
		Tagging:              "team=media",
	}, p)
}

func TestCollector_FailFast(t *testing.T) {
	errBoom := errors.New("key service down")
	release := make(chan struct{})
	defer close(release)

	var slowFinished atomic.Bool
	c := New(Options{
		Bucket: option.Func(func(context.Context, *s3types.File) (string, error) {
			<-release
			slowFinished.Store(true)
			return "b", nil
		}),
		Key: option.Func(func(context.Context, *s3types.File) (string, error) {
			return "", errBoom
		}),
	})

	done := make(chan error, 1)
	go func() {
		_, err := c.Collect(context.Background(), newFile())
		done <- err
	}()

	select {
	case err := <-done:
		assert.Same(t, errBoom, err)
		assert.False(t, slowFinished.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("Collect waited for the blocked producer")
	}
}

func TestCollector_ProducersRunConcurrently(t *testing.T) {
	var inFlight, peak atomic.Int32
	slow := func(v string) option.Option[string] {
		return option.Func(func(context.Context, *s3types.File) (string, error) {
			n := inFlight.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inFlight.Add(-1)
			return v, nil
		})
	}

	c := New(Options{
		Bucket:             slow("b"),
		Key:                slow("k"),
		CacheControl:       slow("no-cache"),
		ContentDisposition: slow("inline"),
	})

	_, err := c.Collect(context.Background(), newFile())
	require.NoError(t, err)
	assert.Greater(t, peak.Load(), int32(1))
}

func TestCollector_MetadataIsOwnedByBundle(t *testing.T) {
	shared := map[string]string{"a": "1"}
	c := New(Options{
		Bucket:   option.Static("b"),
		Metadata: option.Static(shared),
	})

	p, err := c.Collect(context.Background(), newFile())
	require.NoError(t, err)

	shared["a"] = "changed"
	assert.Equal(t, "1", p.Metadata["a"])
}

func TestRandomKey(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key, err := RandomKey(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, key, 32)
		assert.Equal(t, strings.ToLower(key), key)
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
}
