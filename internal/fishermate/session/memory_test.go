package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fishermate/fishermate/internal/fishermate/session"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newMemory(t *testing.T, clock *fakeClock, opts ...session.StoreOption) session.Store {
	t.Helper()
	opts = append([]session.StoreOption{session.WithClock(clock.Now)}, opts...)
	s, err := session.NewStore(session.StoreTypeMemory, opts...)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMemory_GetOrCreateDefaults(t *testing.T) {
	clock := newClock()
	ctx := context.Background()

	relay := newMemory(t, clock, session.WithChannel(session.ChannelRelay), session.WithDefaultLanguage("ta"))
	s, err := relay.GetOrCreate(ctx, "whatsapp:+919876543210")
	if err != nil {
		t.Fatal(err)
	}
	if s.Language != "ta" || s.Nav != session.NavMain || s.Channel != session.ChannelRelay {
		t.Errorf("relay defaults: %+v", s)
	}
	if s.ID == "" || !s.LastActivity.Equal(clock.Now()) {
		t.Errorf("identity/timestamps: %+v", s)
	}

	again, _ := relay.GetOrCreate(ctx, "whatsapp:+919876543210")
	if again.ID != s.ID {
		t.Error("second GetOrCreate created a new session")
	}

	sms := newMemory(t, clock, session.WithChannel(session.ChannelSMS))
	s, _ = sms.GetOrCreate(ctx, "+919876543210")
	if s.Nav != "" || s.Language != "en" {
		t.Errorf("sms defaults: %+v", s)
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	store := newMemory(t, newClock())
	ctx := context.Background()

	s, _ := store.GetOrCreate(ctx, "u1")
	s.Language = "hi"
	s.History = append(s.History, session.Entry{Text: "leak"})

	fresh, _ := store.GetOrCreate(ctx, "u1")
	if fresh.Language != "en" || len(fresh.History) != 0 {
		t.Errorf("store state mutated through a returned copy: %+v", fresh)
	}
}

func TestMemory_ConcurrentSameUser(t *testing.T) {
	clock := newClock()
	store := newMemory(t, clock)
	ctx := context.Background()

	const workers = 64
	ids := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := store.GetOrCreate(ctx, "+919800000001")
			if err != nil {
				t.Error(err)
				return
			}
			ids <- s.ID
			if _, err := store.Touch(ctx, "+919800000001"); err != nil {
				t.Error(err)
			}
			if _, err := store.Update(ctx, "+919800000001", func(s *session.Session) {
				s.Append(session.FromUser, "msg", clock.Now())
			}); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	first := ""
	for id := range ids {
		if first == "" {
			first = id
		}
		if id != first {
			t.Fatalf("duplicate sessions created: %s and %s", first, id)
		}
	}

	s, _ := store.GetOrCreate(ctx, "+919800000001")
	if s.MessageCount != workers {
		t.Errorf("MessageCount = %d, want %d", s.MessageCount, workers)
	}
	if len(s.History) != workers {
		t.Errorf("history entries = %d, want %d", len(s.History), workers)
	}
	snap, _ := store.Snapshot(ctx)
	if len(snap) != 1 {
		t.Errorf("snapshot has %d sessions, want 1", len(snap))
	}
}

func TestMemory_EvictStaleBoundary(t *testing.T) {
	clock := newClock()
	store := newMemory(t, clock)
	ctx := context.Background()
	ttl := 24 * time.Hour

	t0 := clock.Now()
	store.Touch(ctx, "old")
	clock.Advance(time.Hour)
	store.Touch(ctx, "edge")
	clock.Advance(time.Hour)
	store.Touch(ctx, "young")

	// At t0+25h: old idle 25h, edge idle exactly 24h, young idle 23h.
	clock.Advance(t0.Add(25 * time.Hour).Sub(clock.Now()))

	n, err := store.EvictStale(ctx, ttl)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("evicted %d sessions, want 1", n)
	}
	remaining := map[string]bool{}
	snap, _ := store.Snapshot(ctx)
	for _, s := range snap {
		remaining[s.UserID] = true
	}
	if remaining["old"] {
		t.Error("session idle longer than TTL was kept")
	}
	if !remaining["edge"] {
		t.Error("session idle exactly TTL was evicted; the boundary is exclusive")
	}
	if !remaining["young"] {
		t.Error("young session was evicted")
	}
}

func TestMemory_UpdateAfterEvictionStartsFresh(t *testing.T) {
	clock := newClock()
	store := newMemory(t, clock)
	ctx := context.Background()

	first, _ := store.Update(ctx, "u", func(s *session.Session) { s.Language = "hi" })
	clock.Advance(200 * time.Hour)
	if n, _ := store.EvictStale(ctx, 168*time.Hour); n != 1 {
		t.Fatalf("evicted %d", n)
	}
	second, _ := store.Touch(ctx, "u")
	if second.ID == first.ID || second.Language != "en" || second.MessageCount != 1 {
		t.Errorf("expected a fresh session, got %+v", second)
	}
}

func TestMemory_Closed(t *testing.T) {
	store, _ := session.NewStore(session.StoreTypeMemory)
	store.Close()
	if _, err := store.GetOrCreate(context.Background(), "u"); !errors.Is(err, session.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestNewStore_Errors(t *testing.T) {
	if _, err := session.NewStore("etcd"); !errors.Is(err, session.ErrInvalidStoreType) {
		t.Errorf("unknown type: %v", err)
	}
	if _, err := session.NewStore(session.StoreTypeRedis); !errors.Is(err, session.ErrInvalidConfig) {
		t.Errorf("redis without client: %v", err)
	}
	if _, err := session.NewStore(session.StoreTypeRedis, session.WithRedisURL("::bad")); !errors.Is(err, session.ErrInvalidConfig) {
		t.Errorf("redis bad url: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := []*session.Session{
		{Language: "en", Nav: session.NavMain, MessageCount: 3, LastActivity: now.Add(-10 * time.Minute)},
		{Language: "hi", Nav: session.NavWeather, MessageCount: 1, LastActivity: now.Add(-2 * time.Hour)},
		{Language: "hi", Nav: session.NavWeather, MessageCount: 2, LastActivity: now.Add(-time.Hour)},
	}
	st := session.Summarize(sessions, now, time.Hour)
	if st.Total != 3 || st.Active != 2 || st.Messages != 6 || st.Average != 2 {
		t.Errorf("stats: %+v", st)
	}
	if st.Languages["hi"] != 2 || st.Nav[session.NavWeather] != 2 {
		t.Errorf("distributions: %+v", st)
	}
}
