package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/session"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
	"github.com/mind-engage/mindengage-quiz/internal/submission"
)

const demoQuiz = `
title: Demo
questions:
  - prompt: What is the capital of France?
    correct: Paris
    distractors: [London, Rome]
  - prompt: The sky is green.
    correct: true
    hint: Look up on a clear day
`

type harness struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	sql    *submission.SQLStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithStore(t, session.NewMemoryStore(time.Hour))
}

func newHarnessWithStore(t *testing.T, store session.Store) *harness {
	t.Helper()
	ctx := context.Background()

	lib := quiz.NewLibrary(&quiz.FSLoader{FS: fstest.MapFS{
		"demo.yml": {Data: []byte(demoQuiz)},
	}})
	_, err := lib.Reload(ctx)
	require.NoError(t, err)

	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })
	sqlStore := submission.NewSQLStore(dbh, string(db.DriverSQLite))

	bs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	archive := submission.NewArchive(bs)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	d := &Deps{
		Title:         "Test",
		PassingScore:  80,
		Library:       lib,
		Sessions:      session.NewManager(store),
		Recorder:      submission.NewRecorder(nil, sqlStore, archive),
		Auth:          authmw.NewAuthService("test-secret", false, time.Hour),
		Submissions:   sqlStore,
		Archive:       archive,
		AdminUser:     "admin",
		AdminPassHash: string(hash),
	}
	r := chi.NewRouter()
	Mount(r, d)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{t: t, srv: srv, client: &http.Client{Jar: jar}, sql: sqlStore}
}

func (h *harness) do(method, path string, form url.Values) (int, string) {
	h.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, h.srv.URL+path, body)
	require.NoError(h.t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := h.client.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp.StatusCode, string(b)
}

func (h *harness) get(path string) (int, string) { return h.do(http.MethodGet, path, nil) }
func (h *harness) post(path string, form url.Values) (int, string) {
	return h.do(http.MethodPost, path, form)
}

func TestQuizFlow(t *testing.T) {
	h := newHarness(t)

	code, body := h.get("/quiz")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `name="email"`, "anonymous users land on the login page")

	code, body = h.post("/", url.Values{"email": {"not-an-email"}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body, "valid email")

	_, body = h.post("/", url.Values{"email": {"ann@example.com"}})
	assert.Contains(t, body, `<option value="Demo">`)

	code, body = h.post("/quiz", url.Values{"sel_quiz": {"Nope"}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body, "not available")

	_, body = h.post("/quiz", url.Values{"sel_quiz": {"Demo"}})
	assert.Contains(t, body, "What is the capital of France?")
	assert.Contains(t, body, "Question 1 of 2")
	for _, opt := range []string{"Paris", "London", "Rome"} {
		assert.Contains(t, body, `value="`+opt+`"`)
	}

	// an empty answer is re-prompted and changes nothing
	_, body = h.post("/quiz", url.Values{"answer": {""}})
	assert.Contains(t, body, "Please choose an answer to proceed")
	assert.Contains(t, body, "Question 1 of 2")

	_, body = h.post("/quiz", url.Values{"answer": {"Paris"}})
	assert.Contains(t, body, "Question 2 of 2")
	assert.Contains(t, body, `value="True"`)
	assert.Contains(t, body, `value="False"`)

	// back keeps the first answer selected
	_, body = h.get("/back")
	assert.Contains(t, body, "Question 1 of 2")
	assert.Contains(t, body, `value="Paris" checked`)

	_, body = h.get("/jumpto?target=9")
	assert.Contains(t, body, "That action is not possible right now")
	assert.Contains(t, body, "Question 1 of 2")

	_, body = h.get("/jumpto?target=2")
	assert.Contains(t, body, "Question 2 of 2")

	_, body = h.post("/quiz", url.Values{"answer": {"False"}})
	assert.Contains(t, body, "You scored 50%")
	assert.Contains(t, body, "1 of 2 correct")
	assert.Contains(t, body, "Not passed, 80% needed.")
	assert.Contains(t, body, "The sky is green.")
	assert.Contains(t, body, "Look up on a clear day")

	// a second visit re-renders without recording again
	_, body = h.get("/end")
	assert.Contains(t, body, "You scored 50%")
	list, err := h.sql.List(context.Background(), submission.ListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ann@example.com", list[0].UserEmail)
	assert.Equal(t, 50, list[0].Score)

	// the index sends a finished quiz to its results
	_, body = h.get("/")
	assert.Contains(t, body, "You scored 50%")

	code, _ = h.get("/reload_quizzes")
	assert.Equal(t, http.StatusForbidden, code)

	_, body = h.get("/reset")
	assert.Contains(t, body, `<option value="Demo">`)

	_, body = h.get("/logout")
	assert.Contains(t, body, `name="email"`)
}

func TestAdminEndpoints(t *testing.T) {
	h := newHarness(t)

	h.post("/", url.Values{"email": {"bob@example.com"}})
	h.post("/quiz", url.Values{"sel_quiz": {"Demo"}})
	h.post("/quiz", url.Values{"answer": {"Paris"}})
	_, body := h.post("/quiz", url.Values{"answer": {"True"}})
	assert.Contains(t, body, "You scored 100%")

	code, _ := h.post("/admin/login", url.Values{"username": {"admin"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = h.post("/admin/login", url.Values{"username": {"admin"}, "password": {"hunter2"}})
	require.Equal(t, http.StatusOK, code)
	var list []submission.Summary
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list, 1)
	assert.True(t, list[0].Pass)

	code, body = h.get("/submissions/" + jsonID(list[0].ID))
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "user_email: bob@example.com")
	assert.Contains(t, body, "score: 100")

	code, _ = h.get("/submissions/1")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = h.get("/reload_quizzes")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"quizzes":["Demo"]`)
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

// flakyStore fails the first save of a completed session.
type flakyStore struct {
	session.Store
	failed bool
}

func (f *flakyStore) Set(ctx context.Context, id string, s *quiz.Session) error {
	if s.Complete && !f.failed {
		f.failed = true
		return errors.New("store unavailable")
	}
	return f.Store.Set(ctx, id, s)
}

func TestEndRecordsOnceWhenSaveFails(t *testing.T) {
	h := newHarnessWithStore(t, &flakyStore{Store: session.NewMemoryStore(time.Hour)})

	h.post("/", url.Values{"email": {"cy@example.com"}})
	h.post("/quiz", url.Values{"sel_quiz": {"Demo"}})
	h.post("/quiz", url.Values{"answer": {"Paris"}})
	code, _ := h.post("/quiz", url.Values{"answer": {"True"}})
	assert.Equal(t, http.StatusInternalServerError, code, "completion is not saved")

	list, err := h.sql.List(context.Background(), submission.ListOpts{})
	require.NoError(t, err)
	assert.Empty(t, list, "nothing is recorded before the session is saved")

	code, body := h.get("/end")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "You scored 100%")

	code, _ = h.get("/end")
	assert.Equal(t, http.StatusOK, code)

	list, err = h.sql.List(context.Background(), submission.ListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 1, "one completed attempt, one submission")
	assert.Equal(t, "cy@example.com", list[0].UserEmail)
	assert.Contains(t, body, fmt.Sprintf("Submission %d", list[0].ID))
}
