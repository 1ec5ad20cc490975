package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubReaper struct {
	calls    atomic.Int64
	released int
	err      error
}

func (s *stubReaper) ReapExpired(ctx context.Context, now time.Time) (int, error) {
	s.calls.Add(1)
	return s.released, s.err
}

func TestReaperRunsUntilCancelled(t *testing.T) {
	stub := &stubReaper{released: 2}
	reaper := NewReaper(stub, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reaper.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return stub.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancellation")
	}
}

func TestReaperKeepsTickingAfterFailure(t *testing.T) {
	stub := &stubReaper{err: errors.New("db unavailable")}
	reaper := NewReaper(stub, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reaper.Run(ctx)

	assert.Eventually(t, func() bool { return stub.calls.Load() >= 2 }, time.Second, time.Millisecond)
}

func TestNewReaperDefaultsInterval(t *testing.T) {
	reaper := NewReaper(&stubReaper{}, 0)

	assert.Equal(t, time.Minute, reaper.interval)
}

func TestNewReaperPanicsOnNilService(t *testing.T) {
	assert.Panics(t, func() { NewReaper(nil, time.Minute) })
}
