package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Used when no Redis address is
// configured and in tests; sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]Session
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, id, subject string) (*Session, error) {
	now := s.now()
	sess := Session{
		Subject:   subject,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked(now)
	s.sessions[id] = sess
	return &sess, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().Unix() >= sess.ExpiresAt {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) RevokeAll(_ context.Context, subject string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeLocked(s.now())
	revoked := 0
	for id, sess := range s.sessions {
		if sess.Subject == subject {
			delete(s.sessions, id)
			revoked++
		}
	}
	return revoked, nil
}

func (s *MemoryStore) purgeLocked(now time.Time) {
	for id, sess := range s.sessions {
		if now.Unix() >= sess.ExpiresAt {
			delete(s.sessions, id)
		}
	}
}
