package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
)

// Mount registers the quiz pages and admin endpoints on r.
func Mount(r chi.Router, d *Deps) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	r.Group(func(r chi.Router) {
		r.Use(authmw.Identify(d.Auth))

		r.Get("/", IndexHandler(d))
		r.Post("/", IndexHandler(d))
		r.Get("/logout", LogoutHandler(d))
		if d.AdminUser != "" && d.AdminPassHash != "" {
			r.Post("/admin/login", authmw.AdminLoginHandler(d.Auth, d.AdminUser, d.AdminPassHash))
		}

		// quiz taker pages
		r.Group(func(pr chi.Router) {
			pr.Use(authmw.RequireLogin, rbac.Require(rbac.PermQuizTake))
			for path, h := range map[string]http.HandlerFunc{
				"/quiz":   QuizHandler(d),
				"/back":   BackHandler(d),
				"/jumpto": JumpToHandler(d),
				"/end":    EndHandler(d),
				"/reset":  ResetHandler(d),
			} {
				pr.Get(path, h)
				pr.Post(path, h)
			}
		})

		// admin
		r.With(rbac.Require(rbac.PermCatalogReload)).
			Get("/reload_quizzes", ReloadHandler(d.Library))
		if d.Submissions != nil {
			r.With(rbac.Require(rbac.PermSubmissionView)).
				Get("/submissions", ListSubmissionsHandler(d.Submissions))
		}
		if d.Archive != nil {
			r.With(rbac.Require(rbac.PermSubmissionView)).
				Get("/submissions/{id}", GetSubmissionHandler(d.Archive))
		}
	})
}
