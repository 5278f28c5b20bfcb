// Package delete handles S3 object deletion.
//
// Deleting a missing object is not an error: S3 answers a delete of an
// absent key with success, so repeated removals of the same object are
// indistinguishable from the first one.
package delete
