// Package upload streams object bodies into S3.
//
// Bodies of unknown length are fed to the S3 transfer manager, which sends
// a single PutObject when the body fits in one part and switches to a
// concurrent multipart upload otherwise. Memory use is bounded by part size
// times concurrency.
package upload
