package session

import (
	"context"
	"testing"
	"time"

	"oxytoxin-be/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyNotifier struct {
	errors []string
}

func (s *spyNotifier) Success(msg string) {}
func (s *spyNotifier) Error(msg string) { s.errors = append(s.errors, msg) }

// fakeClock drives the guard deterministically via check()
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newGuardUnderTest(t *testing.T, cfg GuardConfig) (*Guard, *spyNotifier, *Store, *fakeClock) {
	t.Helper()
	ctx := context.Background()

	st := storage.NewMemoryStore()
	store := NewStore(st)
	require.NoError(t, store.Save(ctx, Session{AuthToken: "tok", UserEmail: "u@example.com", UserName: "U"}))

	notifier := &spyNotifier{}
	g := NewGuard(store, notifier, cfg)

	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	g.now = clock.Now
	g.lastActivity = clock.t

	return g, notifier, store, clock
}

func TestGuard_WarningThenLogout(t *testing.T) {
	ctx := context.Background()
	logoutCalled := false
	g, notifier, store, clock := newGuardUnderTest(t, GuardConfig{
		Timeout:       20 * time.Minute,
		WarningWindow: 2 * time.Minute,
		OnLogout:      func() { logoutCalled = true },
	})

	// 17 minutes idle: still silent
	clock.Advance(17 * time.Minute)
	assert.False(t, g.check(ctx))
	assert.Empty(t, notifier.errors)

	// 18 minutes idle: exactly one warning
	clock.Advance(1 * time.Minute)
	assert.False(t, g.check(ctx))
	assert.Equal(t, []string{msgIdleWarning}, notifier.errors)

	// warning does not repeat before the next reset
	clock.Advance(30 * time.Second)
	assert.False(t, g.check(ctx))
	assert.Len(t, notifier.errors, 1)

	// 20 minutes idle: session purged, logout fired
	clock.Advance(90 * time.Second)
	assert.True(t, g.check(ctx))
	assert.True(t, logoutCalled)
	assert.Equal(t, []string{msgIdleWarning, msgForcedLogout}, notifier.errors)

	_, ok := store.Current(ctx)
	assert.False(t, ok)

	// terminal: further checks stay logged out, no double purge
	assert.True(t, g.check(ctx))
	assert.Len(t, notifier.errors, 2)
}

func TestGuard_TouchResetsIdleClock(t *testing.T) {
	ctx := context.Background()
	g, notifier, store, clock := newGuardUnderTest(t, GuardConfig{
		Timeout:       20 * time.Minute,
		WarningWindow: 2 * time.Minute,
	})

	// input just before the warning threshold
	clock.Advance(17*time.Minute + 59*time.Second)
	g.Touch()

	// original threshold time passes with no warning
	clock.Advance(1 * time.Second)
	assert.False(t, g.check(ctx))
	assert.Empty(t, notifier.errors)

	// the full window applies from the touch
	clock.Advance(18 * time.Minute)
	assert.False(t, g.check(ctx))
	assert.Equal(t, []string{msgIdleWarning}, notifier.errors)

	// touch after a warning re-arms it
	g.Touch()
	clock.Advance(18 * time.Minute)
	assert.False(t, g.check(ctx))
	assert.Len(t, notifier.errors, 2)

	sess, ok := store.Current(ctx)
	assert.True(t, ok)
	assert.Equal(t, "tok", sess.AuthToken)
}

func TestGuard_RearmsAfterForcedLogout(t *testing.T) {
	ctx := context.Background()
	g, notifier, store, clock := newGuardUnderTest(t, GuardConfig{
		Timeout:       20 * time.Minute,
		WarningWindow: 2 * time.Minute,
		CheckInterval: time.Hour,
	})
	require.True(t, g.Start(ctx))

	clock.Advance(20 * time.Minute)
	require.True(t, g.check(ctx))
	_, ok := store.Current(ctx)
	require.False(t, ok)

	// second sign-in arms a fresh timer with a reset state machine
	require.NoError(t, store.Save(ctx, Session{AuthToken: "tok-2", UserEmail: "u@example.com"}))
	require.True(t, g.Start(ctx))
	g.mu.Lock()
	assert.True(t, g.running)
	assert.False(t, g.loggedOut)
	assert.False(t, g.warned)
	g.mu.Unlock()

	// the new session gets its own warning and its own logout
	clock.Advance(18 * time.Minute)
	assert.False(t, g.check(ctx))
	clock.Advance(2 * time.Minute)
	assert.True(t, g.check(ctx))

	_, ok = store.Current(ctx)
	assert.False(t, ok, "second session must be invalidated like the first")
	assert.Equal(t, []string{msgForcedLogout, msgIdleWarning, msgForcedLogout}, notifier.errors)

	g.Stop()
}

func TestGuard_SecondSessionTimesOutAfterRelogin(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryStore())
	require.NoError(t, store.Save(ctx, Session{AuthToken: "tok-1"}))

	g := NewGuard(store, &spyNotifier{}, GuardConfig{
		Timeout:       50 * time.Millisecond,
		WarningWindow: 10 * time.Millisecond,
		CheckInterval: 5 * time.Millisecond,
	})
	require.True(t, g.Start(ctx))

	require.Eventually(t, func() bool {
		_, ok := store.Current(ctx)
		return !ok
	}, time.Second, 5*time.Millisecond, "first session should expire")

	require.NoError(t, store.Save(ctx, Session{AuthToken: "tok-2"}))
	require.True(t, g.Start(ctx))

	require.Eventually(t, func() bool {
		_, ok := store.Current(ctx)
		return !ok
	}, time.Second, 5*time.Millisecond, "second session should expire too")

	g.Stop()
}

func TestGuard_StopAfterExplicitLogout(t *testing.T) {
	ctx := context.Background()
	g, notifier, store, clock := newGuardUnderTest(t, GuardConfig{
		Timeout:       20 * time.Minute,
		WarningWindow: 2 * time.Minute,
		CheckInterval: time.Hour,
	})
	require.True(t, g.Start(ctx))

	// explicit logout disarms; the old idle clock must stay silent
	store.Purge(ctx)
	g.Stop()

	clock.Advance(21 * time.Minute)
	assert.True(t, g.check(ctx))
	assert.Empty(t, notifier.errors)

	// and a later sign-in can arm the guard again
	require.NoError(t, store.Save(ctx, Session{AuthToken: "tok-2"}))
	assert.True(t, g.Start(ctx))
	g.Stop()
}

func TestGuard_StartRequiresSession(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryStore())
	g := NewGuard(store, &spyNotifier{}, GuardConfig{})

	assert.False(t, g.Start(ctx))
}

func TestGuard_StartAndStop(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	store := NewStore(st)
	require.NoError(t, store.Save(ctx, Session{AuthToken: "tok"}))

	g := NewGuard(store, &spyNotifier{}, GuardConfig{CheckInterval: 10 * time.Millisecond})

	assert.True(t, g.Start(ctx))

	// Stop is idempotent and does not panic
	g.Stop()
	g.Stop()
}

func TestGuard_Defaults(t *testing.T) {
	g := NewGuard(NewStore(storage.NewMemoryStore()), nil, GuardConfig{})

	assert.Equal(t, DefaultIdleTimeout, g.timeout)
	assert.Equal(t, DefaultWarningWindow, g.warning)
	assert.NotNil(t, g.notifier)
	assert.NotNil(t, g.onLogout)
}
