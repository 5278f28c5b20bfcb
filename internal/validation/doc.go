// Package validation checks a resolved parameter bundle before it reaches a
// storage backend.
//
// Bucket and key checks catch empty names, control characters and path
// traversal. Strict DNS bucket naming is available separately because
// S3-compatible stores accept names AWS would reject.
package validation
