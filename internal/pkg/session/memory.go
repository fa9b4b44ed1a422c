package session

import (
	"context"
	"sync"
	"time"

	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
)

// MemoryStore keeps sessions in a token-keyed map guarded by an RWMutex,
// giving O(1) lookups on the request hot path.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, userID, token string) error {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = Session{
		Token:        token,
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
	}
	return nil
}

func (s *MemoryStore) Lookup(ctx context.Context, token string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return Session{}, fault.NotFound("session not found")
	}
	return sess, nil
}

func (s *MemoryStore) Touch(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil
	}
	sess.LastActivity = s.now()
	s.sessions[token] = sess
	return nil
}

func (s *MemoryStore) Invalidate(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *MemoryStore) ActiveCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}
