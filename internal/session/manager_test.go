package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

func catalog(n int) *quiz.Catalog {
	qs := make([]quiz.Question, n)
	for i := range qs {
		qs[i] = quiz.Question{Prompt: "q", Correct: "a", Distractors: []string{"b"}}
	}
	return quiz.NewCatalog(quiz.Definition{Title: "T", Questions: qs})
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(0)

	_, err := st.Get(ctx, "x")
	require.ErrorIs(t, err, ErrNotFound)

	s := quiz.NewSession("a@example.com")
	require.NoError(t, s.SelectQuiz(catalog(2), "T"))
	require.NoError(t, st.Set(ctx, "x", s))

	s.CurrentQuestion = 2
	got, err := st.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentQuestion)

	got.Questions[0].Prompt = "changed"
	again, _ := st.Get(ctx, "x")
	assert.Equal(t, "q", again.Questions[0].Prompt)

	require.NoError(t, st.Clear(ctx, "x"))
	_, err = st.Get(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	st := NewMemoryStore(time.Minute).(*memoryStore)
	st.now = func() time.Time { return now }

	require.NoError(t, st.Set(ctx, "x", quiz.NewSession("a@example.com")))
	now = now.Add(30 * time.Second)
	_, err := st.Get(ctx, "x")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = st.Get(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerDiscardsFailedTransition(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(0))
	cat := catalog(3)

	_, err := m.Do(ctx, "sid", "a@example.com", func(s *quiz.Session) error {
		return s.SelectQuiz(cat, "T")
	})
	require.NoError(t, err)

	s, err := m.Do(ctx, "sid", "a@example.com", func(s *quiz.Session) error {
		if _, err := s.SubmitAnswer("a"); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 0, s.CurrentQuestion)

	stored, err := m.Load(ctx, "sid", "")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CurrentQuestion)
	assert.Nil(t, stored.Questions[0].Answer)
}

func TestManagerNewLoginStartsOver(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(0))
	_, err := m.Do(ctx, "sid", "a@example.com", func(s *quiz.Session) error {
		return s.SelectQuiz(catalog(1), "T")
	})
	require.NoError(t, err)

	s, err := m.Do(ctx, "sid", "b@example.com", func(*quiz.Session) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", s.UserEmail)
	assert.Equal(t, quiz.StateNoQuiz, s.State())
}

func TestManagerSerializesPerSession(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(0))
	const n = 200
	cat := catalog(n)
	_, err := m.Do(ctx, "sid", "a@example.com", func(s *quiz.Session) error {
		return s.SelectQuiz(cat, "T")
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Do(ctx, "sid", "a@example.com", func(s *quiz.Session) error {
				_, err := s.SubmitAnswer("a")
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := m.Load(ctx, "sid", "")
	require.NoError(t, err)
	assert.Equal(t, n, s.CurrentQuestion, "no transition was lost")
	m.mu.Lock()
	assert.Empty(t, m.locks)
	m.mu.Unlock()
}

func TestMemoryStoreSweepsOncePerTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	st := NewMemoryStore(time.Minute).(*memoryStore)
	st.now = func() time.Time { return now }

	require.NoError(t, st.Set(ctx, "a", quiz.NewSession("a@example.com")))
	now = now.Add(90 * time.Second)
	require.NoError(t, st.Set(ctx, "b", quiz.NewSession("b@example.com")))
	assert.Len(t, st.sessions, 1, "expired entry swept")

	now = now.Add(70 * time.Second) // b expired, last sweep 70s ago
	require.NoError(t, st.Set(ctx, "c", quiz.NewSession("c@example.com")))
	assert.NotContains(t, st.sessions, "b")

	now = now.Add(61 * time.Second) // c expired
	st.lastSweep = now.Add(-30 * time.Second)
	require.NoError(t, st.Set(ctx, "d", quiz.NewSession("d@example.com")))
	assert.Contains(t, st.sessions, "c", "no sweep within ttl of the previous one")
	_, err := st.Get(ctx, "c")
	assert.ErrorIs(t, err, ErrNotFound, "expired entries are still hidden")
}
