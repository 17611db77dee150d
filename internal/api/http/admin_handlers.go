package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
	"github.com/mind-engage/mindengage-quiz/internal/submission"
)

// GET /reload_quizzes
func ReloadHandler(lib *quiz.Library) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		diags, err := lib.Reload(r.Context())
		for _, d := range diags {
			log.Printf("reload: %s", d)
		}
		if err != nil {
			log.Printf("reload failed, keeping previous catalog: %v", err)
			http.Error(w, "reload failed", http.StatusInternalServerError)
			return
		}
		if diags == nil {
			diags = []quiz.Diagnostic{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"quizzes":     lib.Catalog().Names(),
			"diagnostics": diags,
		})
	}
}

// GET /submissions?user=&quiz=&limit=&offset=
func ListSubmissionsHandler(store SubmissionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := store.List(r.Context(), submission.ListOpts{
			UserEmail: strings.TrimSpace(q.Get("user")),
			QuizName:  strings.TrimSpace(q.Get("quiz")),
			Limit:     parseIntDefault(q.Get("limit"), 50),
			Offset:    parseIntDefault(q.Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if list == nil {
			list = []submission.Summary{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// GET /submissions/{id}  archived YAML document
func GetSubmissionHandler(docs Documents) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "bad id", 400)
			return
		}
		b, err := docs.Document(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "not found", 404)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(b)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
