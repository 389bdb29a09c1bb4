package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type results struct {
	mu   sync.Mutex
	errs []error
	done chan struct{}
}

func newResults(expected int) *results {
	return &results{done: make(chan struct{}, expected)}
}

func (r *results) record(_ Job, err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *results) wait(t *testing.T, n int) []error {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for result %d", i+1)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func TestQueueProcessesJobs(t *testing.T) {
	var processed int32
	res := newResults(3)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&processed, 1)
		return nil
	}, QueueConfig{Workers: 2, BufferSize: 8, OnResult: res.record})
	require.NoError(t, q.Start(context.Background()))
	defer q.Stop(context.Background())

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(Job{Type: "email"}))
	}

	errs := res.wait(t, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&processed))
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestQueueRetriesThenGivesUp(t *testing.T) {
	var attempts int32
	res := newResults(1)
	failure := errors.New("smtp down")
	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&attempts, 1)
		return failure
	}, QueueConfig{MaxRetries: 2, RetryDelay: 5 * time.Millisecond, OnResult: res.record})
	require.NoError(t, q.Start(context.Background()))
	defer q.Stop(context.Background())

	require.NoError(t, q.Enqueue(Job{Type: "email"}))

	errs := res.wait(t, 1)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], failure)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestQueueRecoversAfterRetry(t *testing.T) {
	var attempts int32
	res := newResults(1)
	q := NewQueue("flaky", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return errors.New("temporary")
		}
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: 5 * time.Millisecond, OnResult: res.record})
	require.NoError(t, q.Start(context.Background()))
	defer q.Stop(context.Background())

	require.NoError(t, q.Enqueue(Job{}))
	errs := res.wait(t, 1)
	assert.NoError(t, errs[0])
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestQueueRetriesPanickingHandler(t *testing.T) {
	var attempts int32
	res := newResults(1)
	q := NewQueue("panicky", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&attempts, 1)
		panic("template exploded")
	}, QueueConfig{MaxRetries: 1, RetryDelay: 5 * time.Millisecond, OnResult: res.record})
	require.NoError(t, q.Start(context.Background()))
	defer q.Stop(context.Background())

	require.NoError(t, q.Enqueue(Job{Type: "email"}))
	errs := res.wait(t, 1)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrJobPanicked)
	assert.Contains(t, errs[0].Error(), "template exploded")
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestQueueAppliesTimeout(t *testing.T) {
	res := newResults(1)
	q := NewQueue("slow", func(ctx context.Context, job Job) error {
		<-ctx.Done()
		return ctx.Err()
	}, QueueConfig{Timeout: 10 * time.Millisecond, OnResult: res.record})
	require.NoError(t, q.Start(context.Background()))
	defer q.Stop(context.Background())

	require.NoError(t, q.Enqueue(Job{}))
	errs := res.wait(t, 1)
	assert.ErrorIs(t, errs[0], context.DeadlineExceeded)
}

func TestEnqueueRequiresStart(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.ErrorIs(t, q.Enqueue(Job{}), ErrQueueStopped)

	require.NoError(t, q.Start(context.Background()))
	q.Stop(context.Background())
	assert.ErrorIs(t, q.Enqueue(Job{}), ErrQueueStopped)
}

func TestEnqueueFullBuffer(t *testing.T) {
	release := make(chan struct{})
	q := NewQueue("full", func(ctx context.Context, job Job) error {
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	require.NoError(t, q.Start(context.Background()))
	defer func() {
		close(release)
		q.Stop(context.Background())
	}()

	var err error
	for i := 0; i < 10 && err == nil; i++ {
		err = q.Enqueue(Job{})
	}
	assert.ErrorIs(t, err, ErrQueueFull)
}
