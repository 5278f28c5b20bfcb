package s3upload

import (
	"context"
	"io"
	"log/slog"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload/errors"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/internal/params"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/internal/progress"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
)

// Backend is the object storage capability a Storage writes to.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Put streams in.Body to in.Bucket/in.Key, reporting progress to tracker.
	Put(ctx context.Context, in *s3types.PutInput, tracker s3types.ProgressTracker) (*s3types.PutOutput, error)

	// Delete removes bucket/key.
	Delete(ctx context.Context, bucket, key string) error
}

// Engine is the contract between a host upload middleware and a storage engine.
type Engine interface {
	HandleFile(ctx context.Context, file *s3types.File) (*s3types.Result, error)
	RemoveFile(ctx context.Context, ref s3types.FileRef) error
}

// TrackerFunc returns a tracker observing the upload of file, or nil.
type TrackerFunc func(file *s3types.File) s3types.ProgressTracker

// Storage stores uploaded files through a Backend.
// A Storage holds no per-upload state and is safe for concurrent use.
type Storage struct {
	backend   Backend
	collector *params.Collector
	logger    *slog.Logger
	trackers  TrackerFunc
}

var _ Engine = (*Storage)(nil)

// New creates a Storage writing to backend.
// The bucket option is required; every other parameter has a default.
func New(backend Backend, opts ...Option) (*Storage, error) {
	if backend == nil {
		return nil, errors.NewError("new", errors.ErrInvalidInput).
			WithMessage("a storage backend is required")
	}

	cfg := &config{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.params.Bucket == nil {
		return nil, errors.NewError("new", errors.ErrInvalidInput).
			WithMessage("the bucket option is required")
	}

	return &Storage{
		backend:   backend,
		collector: params.New(cfg.params),
		logger:    cfg.logger,
		trackers:  cfg.trackers,
	}, nil
}

// HandleFile resolves the upload parameters for file and streams it to the
// backend. Option and backend errors are returned unchanged. No write is
// attempted when any option fails.
func (s *Storage) HandleFile(ctx context.Context, file *s3types.File) (*s3types.Result, error) {
	p, err := s.collector.Collect(ctx, file)
	if err != nil {
		s.logger.Error("failed to resolve upload options", "file", file.OriginalName, "error", err)
		return nil, err
	}

	if err := validation.ValidateParams(p); err != nil {
		s.logger.Error("invalid upload parameters", "bucket", p.Bucket, "key", p.Key, "error", err)
		return nil, err
	}

	var next s3types.ProgressTracker
	if s.trackers != nil {
		next = s.trackers(file)
	}
	recorder := progress.NewRecorder(next)

	s.logger.Debug("uploading file",
		"bucket", p.Bucket,
		"key", p.Key,
		"contentType", p.ContentType,
		"partSize", p.PartSize,
	)

	// Read the stream only now: a content type producer may have replaced it.
	out, err := s.backend.Put(ctx, putInput(p, file.Stream()), recorder)
	if err != nil {
		s.logger.Error("upload failed", "bucket", p.Bucket, "key", p.Key, "error", err)
		return nil, err
	}

	result := newResult(p, out)
	if size, ok := recorder.Total(); ok {
		result.Size = size
		result.SizeReported = true
	}

	s.logger.Debug("uploaded file",
		"bucket", result.Bucket,
		"key", result.Key,
		"etag", result.ETag,
		"size", result.Size,
	)
	return result, nil
}

// RemoveFile deletes a stored object and waits for the backend's answer.
// It does not check that the object is gone afterwards.
func (s *Storage) RemoveFile(ctx context.Context, ref s3types.FileRef) error {
	if ref.Bucket == "" || ref.Key == "" {
		return errors.NewObjectError("removeFile", ref.Bucket, ref.Key, errors.ErrInvalidInput).
			WithMessage("bucket and key are required")
	}

	s.logger.Debug("removing file", "bucket", ref.Bucket, "key", ref.Key)
	if err := s.backend.Delete(ctx, ref.Bucket, ref.Key); err != nil {
		s.logger.Error("removal failed", "bucket", ref.Bucket, "key", ref.Key, "error", err)
		return err
	}
	return nil
}

func putInput(p *s3types.Params, body io.Reader) *s3types.PutInput {
	return &s3types.PutInput{
		ACL:                  p.ACL,
		Bucket:               p.Bucket,
		Key:                  p.Key,
		Body:                 body,
		CacheControl:         p.CacheControl,
		ContentDisposition:   p.ContentDisposition,
		ContentEncoding:      p.ContentEncoding,
		ContentType:          p.ContentType,
		Metadata:             p.Metadata,
		ServerSideEncryption: p.ServerSideEncryption,
		SSEKMSKeyID:          p.SSEKMSKeyID,
		StorageClass:         p.StorageClass,
		PartSize:             p.PartSize,
		Tagging:              p.Tagging,
	}
}

func newResult(p *s3types.Params, out *s3types.PutOutput) *s3types.Result {
	return &s3types.Result{
		ACL:                  p.ACL,
		Bucket:               p.Bucket,
		CacheControl:         p.CacheControl,
		ContentDisposition:   p.ContentDisposition,
		ContentEncoding:      p.ContentEncoding,
		ContentType:          p.ContentType,
		ETag:                 out.ETag,
		Key:                  p.Key,
		Location:             out.Location,
		Metadata:             p.Metadata,
		ServerSideEncryption: p.ServerSideEncryption,
		SSEKMSKeyID:          p.SSEKMSKeyID,
		StorageClass:         p.StorageClass,
		Tagging:              p.Tagging,
		VersionID:            out.VersionID,
	}
}
