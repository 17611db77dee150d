package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

var ErrNotFound = errors.New("session not found")

// Store keeps one quiz session per opaque session id.
type Store interface {
	Get(ctx context.Context, id string) (*quiz.Session, error)
	Set(ctx context.Context, id string, s *quiz.Session) error
	Clear(ctx context.Context, id string) error
}

type entry struct {
	s       *quiz.Session
	touched time.Time
}

type memoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]entry
	now      func() time.Time

	lastSweep time.Time
}

// NewMemoryStore keeps sessions in process memory. Sessions idle for longer
// than ttl are treated as missing; ttl <= 0 keeps them forever.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{ttl: ttl, sessions: map[string]entry{}, now: time.Now}
}

func (m *memoryStore) Get(_ context.Context, id string) (*quiz.Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || m.expired(e) {
		return nil, ErrNotFound
	}
	return e.s.Clone(), nil
}

func (m *memoryStore) Set(_ context.Context, id string, s *quiz.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = entry{s: s.Clone(), touched: m.now()}
	m.sweep()
	return nil
}

func (m *memoryStore) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memoryStore) expired(e entry) bool {
	return m.ttl > 0 && m.now().Sub(e.touched) > m.ttl
}

// sweep drops expired sessions at most once per ttl; callers hold the
// write lock.
func (m *memoryStore) sweep() {
	if m.ttl <= 0 {
		return
	}
	now := m.now()
	if now.Sub(m.lastSweep) < m.ttl {
		return
	}
	m.lastSweep = now
	for id, e := range m.sessions {
		if m.expired(e) {
			delete(m.sessions, id)
		}
	}
}
