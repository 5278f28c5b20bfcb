// Package internal contains private implementation details of the upload
// engine. These packages are not intended for external use and may change
// without notice.
//
// The internal packages are organized as follows:
//   - operations: S3 calls behind the S3 backend (upload, delete)
//   - params: concurrent resolution of the per-upload parameter bundle
//   - progress: progress readers and recorders shared by the backends
//   - validation: checks on the resolved bundle and CLI input
//   - pool: reusable buffers for content sniffing
//   - s3api: the S3 client surface used by the operations
//   - testutil: mocks, an in-memory S3 and LocalStack helpers
package internal
