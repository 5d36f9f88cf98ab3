package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sanjith314/gradescope-api/lib/scrapers/gradescope"

	"github.com/google/uuid"
)

// SessionStore hands out opaque tokens for logged-in portal clients.
// Lifecycle is caller-driven (create on login, invalidate on logout);
// the TTL sweep only exists so abandoned sessions don't pile up. The
// portal tracks its own cookie expiry, so an entry here can outlive
// the portal session it wraps; callers see that as ErrNotAuthenticated
// from the engine, not as a missing token.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
}

type sessionEntry struct {
	client   *gradescope.Client
	lastUsed time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: map[string]*sessionEntry{},
		ttl:      ttl,
	}
}

// Create registers a client and returns its opaque token.
func (s *SessionStore) Create(client *gradescope.Client) string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = &sessionEntry{
		client:   client,
		lastUsed: time.Now(),
	}
	return token
}

// Get resolves a token, refreshing its idle timer. Returns nil for
// unknown, invalidated or expired tokens.
func (s *SessionStore) Get(token string) *gradescope.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[token]
	if !ok {
		return nil
	}
	if time.Since(entry.lastUsed) > s.ttl {
		delete(s.sessions, token)
		return nil
	}
	entry.lastUsed = time.Now()
	return entry.client
}

func (s *SessionStore) Invalidate(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SweepDaemon drops idle sessions until the context is cancelled.
func (s *SessionStore) SweepDaemon(ctx context.Context) {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept := s.sweep()
			if swept > 0 {
				slog.DebugContext(ctx, "swept idle sessions", "count", swept)
			}
		}
	}
}

func (s *SessionStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	swept := 0
	for token, entry := range s.sessions {
		if time.Since(entry.lastUsed) > s.ttl {
			delete(s.sessions, token)
			swept++
		}
	}
	return swept
}
