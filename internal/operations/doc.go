// Package operations contains the S3 calls behind the upload engine.
// Each operation lives in its own subpackage: upload streams a body into
// a bucket and delete removes a stored object.
package operations
