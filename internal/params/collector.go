// Package params gathers the per-upload parameter bundle.
//
// Every configured option is resolved concurrently against the same file.
// The first failure wins: Collect returns it at once and the producers still
// in flight are abandoned, not cancelled, so their side effects still happen.
package params

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"maps"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload/option"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
)

// keyBytes is the number of random bytes behind a generated object key.
const keyBytes = 16

// Options holds one configured option per upload parameter.
// Nil entries fall back to the defaults applied by New.
type Options struct {
	ACL                  option.Option[s3types.ObjectACL]
	Bucket               option.Option[string]
	Key                  option.Option[string]
	CacheControl         option.Option[string]
	ContentDisposition   option.Option[string]
	ContentEncoding      option.Option[string]
	ContentType          option.Option[string]
	Metadata             option.Option[map[string]string]
	ServerSideEncryption option.Option[s3types.SSEType]
	SSEKMSKeyID          option.Option[string]
	StorageClass         option.Option[s3types.StorageClass]
	PartSize             option.Option[int64]
	Tagging              option.Option[string]
}

// Collector resolves an Options set into a Params bundle per file.
type Collector struct {
	acl                  option.Producer[s3types.ObjectACL]
	bucket               option.Producer[string]
	key                  option.Producer[string]
	cacheControl         option.Producer[string]
	contentDisposition   option.Producer[string]
	contentEncoding      option.Producer[string]
	contentType          option.Producer[string]
	metadata             option.Producer[map[string]string]
	serverSideEncryption option.Producer[s3types.SSEType]
	sseKMSKeyID          option.Producer[string]
	storageClass         option.Producer[s3types.StorageClass]
	partSize             option.Producer[int64]
	tagging              option.Producer[string]
}

// New builds a Collector, resolving every option once.
// Defaults: private ACL, generic binary content type, standard storage
// class and a random hex key.
func New(opts Options) *Collector {
	if opts.ACL == nil {
		opts.ACL = option.Static(s3types.ACLPrivate)
	}
	if opts.ContentType == nil {
		opts.ContentType = option.Static(s3types.DefaultContentType)
	}
	if opts.StorageClass == nil {
		opts.StorageClass = option.Static(s3types.StorageClassStandard)
	}
	if opts.Key == nil {
		opts.Key = option.Func(RandomKey)
	}

	return &Collector{
		acl:                  option.Resolve(opts.ACL),
		bucket:               option.Resolve(opts.Bucket),
		key:                  option.Resolve(opts.Key),
		cacheControl:         option.Resolve(opts.CacheControl),
		contentDisposition:   option.Resolve(opts.ContentDisposition),
		contentEncoding:      option.Resolve(opts.ContentEncoding),
		contentType:          option.Resolve(opts.ContentType),
		metadata:             option.Resolve(opts.Metadata),
		serverSideEncryption: option.Resolve(opts.ServerSideEncryption),
		sseKMSKeyID:          option.Resolve(opts.SSEKMSKeyID),
		storageClass:         option.Resolve(opts.StorageClass),
		partSize:             option.Resolve(opts.PartSize),
		tagging:              option.Resolve(opts.Tagging),
	}
}

// Collect resolves every parameter for file concurrently.
// It returns the first producer error unchanged.
func (c *Collector) Collect(ctx context.Context, file *s3types.File) (*s3types.Params, error) {
	p := &s3types.Params{}

	tasks := []func() error{
		assign(ctx, file, c.acl, &p.ACL),
		assign(ctx, file, c.bucket, &p.Bucket),
		assign(ctx, file, c.key, &p.Key),
		assign(ctx, file, c.cacheControl, &p.CacheControl),
		assign(ctx, file, c.contentDisposition, &p.ContentDisposition),
		assign(ctx, file, c.contentEncoding, &p.ContentEncoding),
		assign(ctx, file, c.contentType, &p.ContentType),
		assign(ctx, file, c.metadata, &p.Metadata),
		assign(ctx, file, c.serverSideEncryption, &p.ServerSideEncryption),
		assign(ctx, file, c.sseKMSKeyID, &p.SSEKMSKeyID),
		assign(ctx, file, c.storageClass, &p.StorageClass),
		assign(ctx, file, c.partSize, &p.PartSize),
		assign(ctx, file, c.tagging, &p.Tagging),
	}

	// Buffered so abandoned producers never block on send.
	errc := make(chan error, len(tasks))
	for _, task := range tasks {
		go func() { errc <- task() }()
	}

	for range tasks {
		if err := <-errc; err != nil {
			return nil, err
		}
	}

	p.Metadata = maps.Clone(p.Metadata)
	return p, nil
}

// assign binds a producer to the bundle field it fills.
func assign[T any](ctx context.Context, file *s3types.File, produce option.Producer[T], dst *T) func() error {
	return func() error {
		v, err := produce(ctx, file)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

// RandomKey generates an object key from 16 bytes of crypto/rand output,
// hex encoded.
func RandomKey(context.Context, *s3types.File) (string, error) {
	buf := make([]byte, keyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
