package session

import (
	"context"
	"errors"
	"sync"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

// Manager runs session transitions one at a time per session id. Each call
// loads the session, applies fn and saves the result; fn's changes are
// discarded when it returns an error.
type Manager struct {
	store Store

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, locks: map[string]*keyLock{}}
}

func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &keyLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}

// Load returns a copy of the stored session, or a fresh one for email when
// nothing is stored yet.
func (m *Manager) Load(ctx context.Context, id, email string) (*quiz.Session, error) {
	s, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return quiz.NewSession(email), nil
	}
	return s, err
}

// Do applies fn to the session under the per-id lock. The session passed to
// fn reflects every earlier Do for the same id.
func (m *Manager) Do(ctx context.Context, id, email string, fn func(*quiz.Session) error) (*quiz.Session, error) {
	unlock := m.lock(id)
	defer unlock()

	s, err := m.Load(ctx, id, email)
	if err != nil {
		return nil, err
	}
	if email != "" && s.UserEmail != email {
		// a new login on this browser starts over
		s = quiz.NewSession(email)
	}
	work := s.Clone()
	if err := fn(work); err != nil {
		return s, err
	}
	if err := m.store.Set(ctx, id, work); err != nil {
		return s, err
	}
	return work, nil
}

func (m *Manager) Clear(ctx context.Context, id string) error {
	unlock := m.lock(id)
	defer unlock()
	return m.store.Clear(ctx, id)
}
