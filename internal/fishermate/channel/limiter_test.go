package channel

import (
	"testing"
	"time"
)

func TestLimiter_PerSenderBudget(t *testing.T) {
	now := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	l := NewLimiter(3)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("+911111111111") {
			t.Fatalf("message %d should be allowed", i+1)
		}
	}
	if l.Allow("+911111111111") {
		t.Error("fourth message within the minute should be refused")
	}
	if !l.Allow("+922222222222") {
		t.Error("other senders have their own bucket")
	}

	now = now.Add(20 * time.Second)
	if !l.Allow("+911111111111") {
		t.Error("one token should refill after 20s")
	}
}

func TestLimiter_DropsIdleBuckets(t *testing.T) {
	now := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	l := NewLimiter(10)
	l.now = func() time.Time { return now }

	l.Allow("a")
	l.Allow("b")
	now = now.Add(5 * time.Minute)
	l.Allow("c")
	if got := l.Len(); got != 1 {
		t.Errorf("tracked senders = %d, want 1", got)
	}
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(0)
	for i := 0; i < 1000; i++ {
		if !l.Allow("x") {
			t.Fatal("disabled limiter refused a message")
		}
	}
	var nilLimiter *Limiter
	if !nilLimiter.Allow("x") {
		t.Error("nil limiter should allow")
	}
}

func TestReplyText(t *testing.T) {
	if got := (Reply{Messages: []string{"a (1/2)", "b (2/2)"}}).Text(); got != "a (1/2)\nb (2/2)" {
		t.Errorf("Text = %q", got)
	}
	if got := (Reply{}).Text(); got != "" {
		t.Errorf("empty Text = %q", got)
	}
}
