package limiter

import (
	"context"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLimiter(window time.Duration, maxFails int, blockFor time.Duration) (*Memory, *clock) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	return NewMemory(window, maxFails, blockFor).WithClock(c.now), c
}

func TestAllow_Unknown_Allows(t *testing.T) {
	l, _ := newTestLimiter(15*time.Minute, 5, 15*time.Minute)

	ok, dur, err := l.Allow(context.Background(), "u", []byte("h"))
	if err != nil || !ok || dur != 0 {
		t.Fatalf("Allow unknown: ok=%v dur=%v err=%v", ok, dur, err)
	}
}

func TestFailure_Increments_NoBlock(t *testing.T) {
	l, _ := newTestLimiter(5*time.Minute, 5, 15*time.Minute)

	for i := 0; i < 4; i++ {
		blocked, dur, err := l.Failure(context.Background(), "u", []byte("h"))
		if err != nil || blocked || dur != 0 {
			t.Fatalf("Failure #%d: blocked=%v dur=%v err=%v", i+1, blocked, dur, err)
		}
	}
	if ok, _, _ := l.Allow(context.Background(), "u", []byte("h")); !ok {
		t.Fatalf("must still allow below threshold")
	}
}

func TestFailure_BlocksAtThresholdThenExpires(t *testing.T) {
	l, c := newTestLimiter(5*time.Minute, 3, 10*time.Minute)
	ctx := context.Background()

	var blocked bool
	var dur time.Duration
	for i := 0; i < 3; i++ {
		blocked, dur, _ = l.Failure(ctx, "u", []byte("h"))
	}
	if !blocked || dur != 10*time.Minute {
		t.Fatalf("want block at threshold: blocked=%v dur=%v", blocked, dur)
	}

	ok, retry, err := l.Allow(ctx, "u", []byte("h"))
	if err != nil || ok || retry != 10*time.Minute {
		t.Fatalf("Allow blocked: ok=%v retry=%v err=%v", ok, retry, err)
	}
	// other IP is independent
	if ok, _, _ := l.Allow(ctx, "u", []byte("other")); !ok {
		t.Fatalf("block must be per (key, ip)")
	}

	c.t = c.t.Add(10*time.Minute + time.Second)
	if ok, _, _ := l.Allow(ctx, "u", []byte("h")); !ok {
		t.Fatalf("block must lift after blockFor")
	}
}

func TestFailure_WindowResets(t *testing.T) {
	l, c := newTestLimiter(time.Minute, 3, 10*time.Minute)
	ctx := context.Background()

	_, _, _ = l.Failure(ctx, "u", []byte("h"))
	_, _, _ = l.Failure(ctx, "u", []byte("h"))
	c.t = c.t.Add(2 * time.Minute)
	if blocked, _, _ := l.Failure(ctx, "u", []byte("h")); blocked {
		t.Fatalf("failures outside window must not accumulate")
	}
}

func TestSuccess_Resets(t *testing.T) {
	l, _ := newTestLimiter(time.Minute, 2, time.Minute)
	ctx := context.Background()

	_, _, _ = l.Failure(ctx, "u", []byte("h"))
	if err := l.Success(ctx, "u", []byte("h")); err != nil {
		t.Fatalf("Success: %v", err)
	}
	if blocked, _, _ := l.Failure(ctx, "u", []byte("h")); blocked {
		t.Fatalf("counter must reset after success")
	}
}

func TestFailure_DisabledWhenMaxFailsZero(t *testing.T) {
	l, _ := newTestLimiter(time.Minute, 0, time.Minute)
	for i := 0; i < 10; i++ {
		if blocked, _, _ := l.Failure(context.Background(), "u", []byte("h")); blocked {
			t.Fatalf("disabled limiter must never block")
		}
	}
}

func TestSweep_DropsStaleKeepsBlocked(t *testing.T) {
	l, c := newTestLimiter(time.Minute, 2, 10*time.Minute)
	ctx := context.Background()

	_, _, _ = l.Failure(ctx, "stale", []byte("h"))
	_, _, _ = l.Failure(ctx, "locked", []byte("h"))
	_, _, _ = l.Failure(ctx, "locked", []byte("h"))
	c.t = c.t.Add(2 * time.Minute)
	_, _, _ = l.Failure(ctx, "fresh", []byte("h"))

	if n := l.Sweep(); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if ok, _, _ := l.Allow(ctx, "locked", []byte("h")); ok {
		t.Fatalf("sweep must keep active blocks")
	}
	if got := len(l.byKey); got != 2 {
		t.Fatalf("entries=%d, want 2", got)
	}

	c.t = c.t.Add(10 * time.Minute)
	if n := l.Sweep(); n != 2 {
		t.Fatalf("second Sweep removed %d, want 2", n)
	}
}

func TestHashIP_Determinism(t *testing.T) {
	a := HashIP("1.2.3.4:123")
	b := HashIP("1.2.3.4:123")
	c := HashIP("5.6.7.8:321")
	if string(a) != string(b) || string(a) == string(c) || len(a) != 32 {
		t.Fatalf("hash mismatch/len: %d", len(a))
	}
}
