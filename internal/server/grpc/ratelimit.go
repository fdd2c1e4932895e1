package grpcserver

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type peerBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// PeerLimiter keeps one token bucket per peer address.
type PeerLimiter struct {
	rps   rate.Limit
	burst int
	now   func() time.Time

	mu    sync.Mutex
	peers map[string]*peerBucket
}

// NewPeerLimiter allows rps requests per second with the given burst per peer.
// rps <= 0 disables limiting.
func NewPeerLimiter(rps float64, burst int) *PeerLimiter {
	if burst < 1 {
		burst = 1
	}
	return &PeerLimiter{
		rps:   rate.Limit(rps),
		burst: burst,
		now:   time.Now,
		peers: make(map[string]*peerBucket),
	}
}

// Allow consumes one token from key's bucket.
func (l *PeerLimiter) Allow(key string) bool {
	if l.rps <= 0 {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.peers[key]
	if !ok {
		b = &peerBucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.peers[key] = b
	}
	b.lastSeen = now
	return b.lim.AllowN(now, 1)
}

// Sweep drops buckets idle for longer than ttl and returns how many were dropped.
func (l *PeerLimiter) Sweep(ttl time.Duration) int {
	cutoff := l.now().Add(-ttl)

	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, b := range l.peers {
		if b.lastSeen.Before(cutoff) {
			delete(l.peers, k)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (l *PeerLimiter) Run(ctx context.Context, interval, ttl time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			l.Sweep(ttl)
		case <-ctx.Done():
			return
		}
	}
}
