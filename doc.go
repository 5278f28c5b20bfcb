// Package s3upload stores in-flight file uploads in S3-compatible object storage.
//
// A Storage is configured once with one option per upload parameter. Each
// option is a static value, a function or a callback-style producer, so a
// bucket, key or content type can be computed per file. For every file
// handed over by a host middleware the Storage resolves all options
// concurrently, streams the body to the backend without buffering it and
// returns a Result describing the stored object.
//
// Example usage:
//
//	backend, err := s3upload.NewS3Backend(ctx, s3upload.WithRegion("eu-central-1"))
//	if err != nil {
//	    return err
//	}
//
//	storage, err := s3upload.New(backend,
//	    s3upload.WithBucket(option.Static("uploads")),
//	    s3upload.WithContentType(sniff.AutoContentType()),
//	)
//	if err != nil {
//	    return err
//	}
//
//	result, err := storage.HandleFile(ctx, s3types.NewFile(body, "cat.png", "image/png"))
package s3upload
