package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// userWindow holds the admission timestamps of one user, oldest first.
type userWindow struct {
	mu     sync.Mutex
	stamps []time.Time
}

// Memory is an in-process sliding window limiter.
// Windows live in a TTL cache so idle users are evicted; each window has its own lock,
// so checks for different users never contend.
type Memory struct {
	window time.Duration
	max    int
	now    func() time.Time

	// mu serializes creating, re-installing and refreshing cache entries.
	mu    sync.Mutex
	users *cache.Cache
}

// MemoryOption configures a Memory limiter.
type MemoryOption func(*Memory)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory creates a limiter admitting max requests per window for each user.
func NewMemory(window time.Duration, max int, opts ...MemoryOption) *Memory {
	m := &Memory{
		window: window,
		max:    max,
		now:    time.Now,
		// Entries outlive the window so an evicted window never held live stamps.
		users: cache.New(2*window, 4*window),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Admit records a request for userID if the window has room.
func (m *Memory) Admit(_ context.Context, userID string) (Decision, error) {
	for {
		if d, ok := m.admitIn(userID, m.windowFor(userID)); ok {
			return d, nil
		}
	}
}

// Reset drops all windows.
func (m *Memory) Reset() {
	m.users.Flush()
}

// admitIn decides against w. It reports false without touching w when the cache
// already holds a different window for userID, so the caller retries on that one.
func (m *Memory) admitIn(userID string, w *userWindow) (Decision, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !m.claim(userID, w) {
		return Decision{}, false
	}

	now := m.now()
	i := 0
	for i < len(w.stamps) && now.Sub(w.stamps[i]) >= m.window {
		i++
	}
	w.stamps = w.stamps[i:]

	if len(w.stamps) >= m.max {
		return rejectAfter(m.window-now.Sub(w.stamps[0]), m.window), true
	}

	w.stamps = append(w.stamps, now)
	return Decision{Allowed: true}, true
}

// claim refreshes the TTL of w if it is still the cached window for userID,
// or re-installs it if the entry was evicted meanwhile.
func (m *Memory) claim(userID string, w *userWindow) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if x, found := m.users.Get(userID); found && x.(*userWindow) != w {
		return false
	}
	m.users.Set(userID, w, cache.DefaultExpiration)
	return true
}

func (m *Memory) windowFor(userID string) *userWindow {
	m.mu.Lock()
	defer m.mu.Unlock()

	if x, found := m.users.Get(userID); found {
		return x.(*userWindow)
	}
	w := &userWindow{}
	m.users.Set(userID, w, cache.DefaultExpiration)
	return w
}
