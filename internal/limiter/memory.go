package limiter

import (
	"context"
	"sync"
	"time"
)

type attemptKey struct {
	key    string
	ipHash   string
}

type attempts struct {
	fails        int
	updatedAt    time.Time
	blockedUntil time.Time
}

// Memory is a process-local limiter with a sliding failure window and lockout.
type Memory struct {
	mu       sync.Mutex
	byKey    map[attemptKey]*attempts
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time
}

var _ Limiter = (*Memory)(nil)

// NewMemory constructs a limiter: maxFails failures closer together than
// window block the (key, ip) pair for blockFor. maxFails <= 0 disables it.
func NewMemory(window time.Duration, maxFails int, blockFor time.Duration) *Memory {
	return &Memory{
		byKey:    make(map[attemptKey]*attempts),
		window:   window,
		maxFails: maxFails,
		blockFor: blockFor,
		now:      time.Now,
	}
}

// WithClock replaces time.Now; used by tests.
func (l *Memory) WithClock(now func() time.Time) *Memory {
	l.now = now
	return l
}

// Allow reports whether login is currently allowed and a retry-after duration.
func (l *Memory) Allow(_ context.Context, key string, ipHash []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.byKey[attemptKey{key, string(ipHash)}]
	if !ok {
		return true, 0, nil
	}
	if now := l.now(); a.blockedUntil.After(now) {
		return false, a.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success resets counters for (key, ip).
func (l *Memory) Success(_ context.Context, key string, ipHash []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.byKey, attemptKey{key, string(ipHash)})
	return nil
}

// Failure records a failed attempt; may set a block until a future time.
func (l *Memory) Failure(_ context.Context, key string, ipHash []byte) (bool, time.Duration, error) {
	if l.maxFails <= 0 {
		return false, 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	k := attemptKey{key, string(ipHash)}
	a, ok := l.byKey[k]
	if !ok {
		a = &attempts{}
		l.byKey[k] = a
	}
	if now.Sub(a.updatedAt) > l.window {
		a.fails = 0
	}
	a.fails++
	a.updatedAt = now
	if a.fails >= l.maxFails {
		a.blockedUntil = now.Add(l.blockFor)
		a.fails = 0
		return true, l.blockFor, nil
	}
	return false, 0, nil
}

// Sweep drops entries whose failure window has passed and that are not
// blocked, and returns how many were removed.
func (l *Memory) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for k, a := range l.byKey {
		if now.Sub(a.updatedAt) > l.window && !a.blockedUntil.After(now) {
			delete(l.byKey, k)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (l *Memory) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			l.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
