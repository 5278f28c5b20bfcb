// Package progress connects backend transfer events to upload trackers.
package progress

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/input-output-hk/catalyst-forge-libs/s3upload/s3types"
)

// Unknown is the total reported while the stream has not ended.
const Unknown int64 = -1

// Reader wraps a body and reports every read to a tracker.
// Once the body is exhausted the byte count becomes the total.
type Reader struct {
	r       io.Reader
	tracker s3types.ProgressTracker
	read    int64
	done    bool
}

// NewReader returns a Reader over r. A nil tracker disables reporting.
func NewReader(r io.Reader, tracker s3types.ProgressTracker) *Reader {
	return &Reader{r: r, tracker: tracker}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.read += int64(n)

	if r.tracker == nil {
		return n, err
	}
	if errors.Is(err, io.EOF) && !r.done {
		r.done = true
		r.tracker.Update(r.read, r.read)
		return n, err
	}
	if n > 0 {
		r.tracker.Update(r.read, Unknown)
	}
	return n, err
}

// BytesRead returns the number of bytes consumed so far.
func (r *Reader) BytesRead() int64 {
	return r.read
}

// Sink is a progress reader for clients that push consumed chunks into it
// instead of pulling the body through a wrapper. Every Read counts len(p).
type Sink struct {
	tracker s3types.ProgressTracker
	n       atomic.Int64
}

// NewSink returns a Sink reporting to tracker.
func NewSink(tracker s3types.ProgressTracker) *Sink {
	return &Sink{tracker: tracker}
}

// Read records len(p) transferred bytes.
func (s *Sink) Read(p []byte) (int, error) {
	n := s.n.Add(int64(len(p)))
	if s.tracker != nil {
		s.tracker.Update(n, Unknown)
	}
	return len(p), nil
}

// Total returns the number of bytes recorded so far.
func (s *Sink) Total() int64 {
	return s.n.Load()
}

// Recorder is a tracker that remembers the last known total of a transfer
// and forwards every event to an optional downstream tracker.
type Recorder struct {
	next s3types.ProgressTracker

	mu          sync.Mutex
	transferred int64
	total       int64
	reported    bool
	completed   bool
	err         error
}

// NewRecorder returns a Recorder forwarding to next, which may be nil.
func NewRecorder(next s3types.ProgressTracker) *Recorder {
	return &Recorder{next: next}
}

// Update implements s3types.ProgressTracker.
func (r *Recorder) Update(bytesTransferred, totalBytes int64) {
	r.mu.Lock()
	r.transferred = bytesTransferred
	if totalBytes >= 0 {
		r.total = totalBytes
		r.reported = true
	}
	r.mu.Unlock()

	if r.next != nil {
		r.next.Update(bytesTransferred, totalBytes)
	}
}

// Complete implements s3types.ProgressTracker.
func (r *Recorder) Complete() {
	r.mu.Lock()
	r.completed = true
	r.mu.Unlock()

	if r.next != nil {
		r.next.Complete()
	}
}

// Error implements s3types.ProgressTracker.
func (r *Recorder) Error(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()

	if r.next != nil {
		r.next.Error(err)
	}
}

// Total returns the last reported total and whether any event carried one.
func (r *Recorder) Total() (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total, r.reported
}

// Transferred returns the last reported transferred byte count.
func (r *Recorder) Transferred() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transferred
}

// Completed reports whether the transfer finished successfully.
func (r *Recorder) Completed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// Err returns the failure reported for the transfer, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
