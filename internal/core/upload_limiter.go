package core

// upload_limiter.go bounds how many CSV imports run at once.
//
// Each import holds one slot for its whole parse and insert. A caller that
// finds every slot taken waits up to maxWait and then fails with
// ErrTooManyUploads. Drain lets shutdown wait for in-flight imports.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyUploads is returned when no import slot frees up in time.
var ErrTooManyUploads = errors.New("too many concurrent uploads")

// DefaultMaxConcurrentUploads is used when the configured limit is not positive.
const DefaultMaxConcurrentUploads = 4

// DefaultUploadWait is used when the configured wait is not positive.
const DefaultUploadWait = 30 * time.Second

// UploadLimiter is a counting semaphore for imports.
type UploadLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

func NewUploadLimiter(maxConcurrent int, maxWait time.Duration) *UploadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentUploads
	}
	if maxWait <= 0 {
		maxWait = DefaultUploadWait
	}
	return &UploadLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most maxWait. The caller must Release
// after a nil return.
func (l *UploadLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		uploadsInFlight.Inc()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		uploadsRejected.Inc()
		return ErrTooManyUploads
	}
}

// Release returns a slot taken by Acquire.
func (l *UploadLimiter) Release() {
	l.active.Add(-1)
	uploadsInFlight.Dec()
	<-l.slots
}

// Active reports the number of imports holding a slot.
func (l *UploadLimiter) Active() int {
	return int(l.active.Load())
}

// Capacity reports the slot count.
func (l *UploadLimiter) Capacity() int {
	return cap(l.slots)
}

// Drain waits until no import holds a slot or ctx ends.
func (l *UploadLimiter) Drain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
