package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadLimiter_AcquireRelease(t *testing.T) {
	l := NewUploadLimiter(2, time.Second)
	ctx := context.Background()

	assert.Equal(t, 2, l.Capacity())
	assert.Zero(t, l.Active())

	require.NoError(t, l.Acquire(ctx))
	require.NoError(t, l.Acquire(ctx))
	assert.Equal(t, 2, l.Active())

	l.Release()
	assert.Equal(t, 1, l.Active())
	l.Release()
	assert.Zero(t, l.Active())
}

func TestUploadLimiter_Defaults(t *testing.T) {
	l := NewUploadLimiter(0, 0)
	assert.Equal(t, DefaultMaxConcurrentUploads, l.Capacity())
	assert.Equal(t, DefaultUploadWait, l.maxWait)
}

func TestUploadLimiter_TimesOutWhenFull(t *testing.T) {
	l := NewUploadLimiter(1, 20*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	defer l.Release()

	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, ErrTooManyUploads)
	assert.Equal(t, 1, l.Active())
}

func TestUploadLimiter_ContextCancelled(t *testing.T) {
	l := NewUploadLimiter(1, time.Minute)
	require.NoError(t, l.Acquire(context.Background()))
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, l.Acquire(ctx), context.Canceled)
}

func TestUploadLimiter_WaiterGetsFreedSlot(t *testing.T) {
	l := NewUploadLimiter(1, time.Second)
	ctx := context.Background()
	require.NoError(t, l.Acquire(ctx))

	done := make(chan error, 1)
	go func() { done <- l.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	l.Release()

	select {
	case err := <-done:
		require.NoError(t, err)
		l.Release()
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the freed slot")
	}
}

func TestUploadLimiter_NeverExceedsCapacity(t *testing.T) {
	const capacity = 3
	l := NewUploadLimiter(capacity, 5*time.Second)
	ctx := context.Background()

	var (
		mu      sync.Mutex
		current int
		peak    int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(ctx); err != nil {
				return
			}
			mu.Lock()
			current++
			peak = max(peak, current)
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
			l.Release()
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak, capacity)
	assert.Zero(t, l.Active())
}

func TestUploadLimiter_Drain(t *testing.T) {
	l := NewUploadLimiter(2, time.Second)
	require.NoError(t, l.Acquire(context.Background()))

	go func() {
		time.Sleep(30 * time.Millisecond)
		l.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, l.Drain(ctx))
	assert.Zero(t, l.Active())
}

func TestUploadLimiter_DrainTimesOut(t *testing.T) {
	l := NewUploadLimiter(1, time.Second)
	require.NoError(t, l.Acquire(context.Background()))
	defer l.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Drain(ctx), context.DeadlineExceeded)
}
