package backend

import (
	"context"
	"sync"
	"time"

	"oxytoxin-be/internal/logger"

	"go.uber.org/zap"
)

// Poller runs fn on a fixed interval until stopped. Used for the
// support-inbox refresh; Stop must be called when the view goes away so
// no timer leaks.
type Poller struct {
	interval time.Duration
	fn       func(ctx context.Context) error

	started  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

func NewPoller(interval time.Duration, fn func(ctx context.Context) error) *Poller {
	return &Poller{
		interval: interval,
		fn:       fn,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins polling. Runs fn once immediately, then on each tick.
// Errors are logged and polling continues; runs never overlap.
func (p *Poller) Start(ctx context.Context) {
	p.started = true
	go func() {
		defer close(p.done)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.runOnce(ctx)

		for {
			select {
			case <-ticker.C:
				p.runOnce(ctx)
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts polling and waits for any in-flight run. Idempotent.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	if p.started {
		<-p.done
	}
}

func (p *Poller) runOnce(ctx context.Context) {
	if err := p.fn(ctx); err != nil {
		logger.FromCtx(ctx).Warn("poll cycle failed", zap.Error(err))
	}
}
