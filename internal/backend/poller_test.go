package backend

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoller_RunsOnInterval(t *testing.T) {
	var runs atomic.Int32
	p := NewPoller(10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	p.Start(context.Background())
	time.Sleep(55 * time.Millisecond)
	p.Stop()

	// immediate run plus several ticks
	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}

func TestPoller_StopHaltsPolling(t *testing.T) {
	var runs atomic.Int32
	p := NewPoller(10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	p.Start(context.Background())
	time.Sleep(25 * time.Millisecond)
	p.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	p := NewPoller(10*time.Millisecond, func(ctx context.Context) error { return nil })
	p.Start(context.Background())

	assert.NotPanics(t, func() {
		p.Stop()
		p.Stop()
	})
}

func TestPoller_StopWithoutStart(t *testing.T) {
	p := NewPoller(10*time.Millisecond, func(ctx context.Context) error { return nil })

	assert.NotPanics(t, func() { p.Stop() })
}

func TestPoller_ContextCancelStops(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	p := NewPoller(10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	p.Start(ctx)

	time.Sleep(25 * time.Millisecond)
	cancel()
	time.Sleep(15 * time.Millisecond)

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestPoller_ErrorDoesNotHaltPolling(t *testing.T) {
	var runs atomic.Int32
	p := NewPoller(10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return assert.AnError
	})

	p.Start(context.Background())
	time.Sleep(35 * time.Millisecond)
	p.Stop()

	assert.GreaterOrEqual(t, runs.Load(), int32(2))
}
