package session

import (
	"context"
	"sync"
	"time"

	"oxytoxin-be/internal/checkout"
	"oxytoxin-be/internal/logger"

	"go.uber.org/zap"
)

const (
	DefaultIdleTimeout   = 20 * time.Minute
	DefaultWarningWindow = 2 * time.Minute

	msgIdleWarning  = "You will be logged out soon due to inactivity."
	msgForcedLogout = "You have been logged out due to inactivity."
)

// Guard watches for user inactivity and invalidates the session once the
// idle timeout elapses. States: Active, WarningPending (warning shown,
// clock still running), LoggedOut. LoggedOut ends the current arm; the
// next Start arms a fresh one, so the guard covers every sign-in, not
// just the first.
type Guard struct {
	store    *Store
	notifier checkout.Notifier
	onLogout func()

	timeout time.Duration
	warning time.Duration

	mu           sync.Mutex
	running      bool
	stopCh       chan struct{}
	lastActivity time.Time
	warned       bool
	loggedOut    bool

	now      func() time.Time
	interval time.Duration
}

type GuardConfig struct {
	Timeout       time.Duration
	WarningWindow time.Duration
	// CheckInterval is how often idle time is sampled.
	CheckInterval time.Duration
	// OnLogout runs after the session is purged (redirect hook).
	OnLogout func()
}

func NewGuard(store *Store, notifier checkout.Notifier, cfg GuardConfig) *Guard {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultIdleTimeout
	}
	if cfg.WarningWindow <= 0 {
		cfg.WarningWindow = DefaultWarningWindow
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Second
	}
	if notifier == nil {
		notifier = checkout.NewLogNotifier()
	}
	if cfg.OnLogout == nil {
		cfg.OnLogout = func() {}
	}

	return &Guard{
		store:    store,
		notifier: notifier,
		onLogout: cfg.OnLogout,
		timeout:  cfg.Timeout,
		warning:  cfg.WarningWindow,
		now:      time.Now,
		interval: cfg.CheckInterval,
	}
}

// Start arms the guard only when a session exists; anonymous visitors get
// no timer at all. Returns false when nothing was armed. Re-arming a live
// guard just resets the idle clock; re-arming after a forced logout or a
// Stop spawns a fresh timer.
func (g *Guard) Start(ctx context.Context) bool {
	if _, ok := g.store.Current(ctx); !ok {
		return false
	}

	g.mu.Lock()
	g.lastActivity = g.now()
	g.warned = false
	g.loggedOut = false
	if g.running {
		g.mu.Unlock()
		return true
	}
	g.running = true
	stop := make(chan struct{})
	g.stopCh = stop
	g.mu.Unlock()

	go g.run(ctx, stop)
	return true
}

func (g *Guard) run(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if g.check(ctx) {
				return
			}
		case <-stop:
			return
		case <-ctx.Done():
			g.disarm()
			return
		}
	}
}

// Touch resets the idle clock on any qualifying input event and re-arms
// the one-shot warning.
func (g *Guard) Touch() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.loggedOut {
		return
	}
	g.lastActivity = g.now()
	g.warned = false
}

// Stop disarms the timer without touching the session; explicit logout
// uses it so no stale inactivity notice fires afterwards. Idempotent, and
// the guard can be armed again later.
func (g *Guard) Stop() {
	g.mu.Lock()
	if g.stopCh != nil {
		close(g.stopCh)
		g.stopCh = nil
		g.running = false
	}
	g.mu.Unlock()
}

func (g *Guard) disarm() {
	g.mu.Lock()
	g.running = false
	g.stopCh = nil
	g.mu.Unlock()
}

// check samples idle time and applies at most one transition. Returns
// true once the current arm is finished.
func (g *Guard) check(ctx context.Context) bool {
	// session gone through explicit logout: wind down quietly
	if _, ok := g.store.Current(ctx); !ok {
		g.disarm()
		return true
	}

	g.mu.Lock()
	if g.loggedOut {
		g.mu.Unlock()
		return true
	}
	idle := g.now().Sub(g.lastActivity)

	if idle >= g.timeout {
		g.loggedOut = true
		g.running = false
		g.stopCh = nil
		g.mu.Unlock()

		g.store.Purge(ctx)
		g.notifier.Error(msgForcedLogout)
		logger.FromCtx(ctx).Info("session expired from inactivity",
			zap.Duration("idle", idle))
		g.onLogout()
		return true
	}

	if idle >= g.timeout-g.warning && !g.warned {
		g.warned = true
		g.mu.Unlock()

		g.notifier.Error(msgIdleWarning)
		return false
	}

	g.mu.Unlock()
	return false
}
