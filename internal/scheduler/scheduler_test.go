package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSimultaneousTriggersRunOnce(t *testing.T) {
	var running atomic.Int32
	var peak atomic.Int32
	release := make(chan struct{})

	s := New(zap.NewNop(), JobSpec{
		Name:     "scrape:test",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			n := running.Add(1)
			if n > peak.Load() {
				peak.Store(n)
			}
			<-release
			running.Add(-1)
			return nil
		},
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Trigger(context.Background(), "scrape:test")
	}()

	// Wait until the first trigger is inside Run, then fire the
	// second one; it must be dropped, not queued.
	require.Eventually(t, func() bool { return running.Load() == 1 },
		time.Second, time.Millisecond)
	s.Trigger(context.Background(), "scrape:test")

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), peak.Load(), "two concurrent triggers must not run two sessions")

	status := s.Status()
	require.Len(t, status, 1)
	assert.Equal(t, 1, status[0].Runs)
	assert.Equal(t, 1, status[0].Dropped)
}

func TestStatusTracksRuns(t *testing.T) {
	boom := errors.New("site unreachable")
	calls := 0

	s := New(zap.NewNop(), JobSpec{
		Name:     "scrape:flaky",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			calls++
			if calls == 1 {
				return boom
			}
			return nil
		},
	})

	s.Trigger(context.Background(), "scrape:flaky")
	status := s.Status()
	require.Len(t, status, 1)
	assert.Equal(t, 1, status[0].Runs)
	assert.Equal(t, "site unreachable", status[0].LastError)
	require.NotNil(t, status[0].LastStart)

	// A clean run clears the recorded error.
	s.Trigger(context.Background(), "scrape:flaky")
	status = s.Status()
	assert.Equal(t, 2, status[0].Runs)
	assert.Empty(t, status[0].LastError)
}

func TestUnknownTriggerIgnored(t *testing.T) {
	s := New(zap.NewNop())
	// Must not panic.
	s.Trigger(context.Background(), "nope")
	assert.Empty(t, s.Status())
}

func TestStartRespectsCancellation(t *testing.T) {
	var runs atomic.Int32

	s := New(zap.NewNop(), JobSpec{
		Name:     "scrape:fast",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	time.Sleep(35 * time.Millisecond)
	cancel()
	s.Wait()

	got := runs.Load()
	assert.GreaterOrEqual(t, got, int32(2), "job should have recurred before cancel")

	// No further runs after Wait returns.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, got, runs.Load())
}
