package http

import (
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2)
	rl.now = func() time.Time { return now }

	if !rl.allow() || !rl.allow() {
		t.Fatal("first two commands should pass")
	}
	if rl.allow() {
		t.Fatal("third command in the window should be limited")
	}

	now = now.Add(time.Minute)
	if !rl.allow() {
		t.Fatal("limit should reset after a minute")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := newRateLimiter(0)
	for range 1000 {
		if !rl.allow() {
			t.Fatal("zero limit must not throttle")
		}
	}
}
