package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestRegisterRejectsDuplicates(t *testing.T) {
	s := NewService(arbor.NewLogger())

	noop := func(ctx context.Context) (int, error) { return 0, nil }
	require.NoError(t, s.Register("cache", "@every 1h", noop))
	assert.Error(t, s.Register("cache", "@every 1h", noop))
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	s := NewService(arbor.NewLogger())

	err := s.Register("cache", "not a schedule", func(ctx context.Context) (int, error) { return 0, nil })
	assert.Error(t, err)
}

func TestTriggerRunsSweep(t *testing.T) {
	s := NewService(arbor.NewLogger())

	var runs atomic.Int32
	require.NoError(t, s.Register("cache", "@every 1h", func(ctx context.Context) (int, error) {
		runs.Add(1)
		return 3, nil
	}))

	require.NoError(t, s.Trigger("cache"))
	require.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	assert.Error(t, s.Trigger("unknown"))
}

func TestSweepPanicRecovered(t *testing.T) {
	s := NewService(arbor.NewLogger())

	require.NoError(t, s.Register("bad", "@every 1h", func(ctx context.Context) (int, error) {
		panic("sweep exploded")
	}))

	require.NoError(t, s.Trigger("bad"))
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.sweeps["bad"].lastError != ""
	}, 2*time.Second, 10*time.Millisecond)

	// Scheduler still works after the panic
	var runs atomic.Int32
	require.NoError(t, s.Register("good", "@every 1h", func(ctx context.Context) (int, error) {
		runs.Add(1)
		return 0, nil
	}))
	require.NoError(t, s.Trigger("good"))
	require.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestStartStop(t *testing.T) {
	s := NewService(arbor.NewLogger())
	require.NoError(t, s.Register("cache", "@every 1h", func(ctx context.Context) (int, error) { return 0, nil }))

	s.Start()
	s.Start() // idempotent
	s.Stop()
	s.Stop()
}
