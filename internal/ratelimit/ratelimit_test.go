package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_BurstAllowance(t *testing.T) {
	// 600 rpm gives a burst of 60; the first 60 calls pass without waiting.
	l := New(600)

	for i := 0; i < 60; i++ {
		if !l.Allow() {
			t.Fatalf("call %d should be within burst", i)
		}
	}
	if l.Allow() {
		t.Error("61st immediate call should be throttled")
	}
}

func TestLimiter_MinimumBurst(t *testing.T) {
	l := New(5) // 5/10 rounds to 0, floor is 1

	if !l.Allow() {
		t.Fatal("first call should always pass")
	}
	if l.Allow() {
		t.Error("second immediate call should be throttled")
	}
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	l := New(1) // one token per minute

	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatal("second wait should fail once the context expires")
	}
}
