package http

import (
	"log"
	"net/http"

	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
)

type selectView struct {
	Names []string
}

// GET/POST /  form: email
func IndexHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			login(w, r, d)
			return
		}
		sid, email := identity(r)
		if email == "" || sid == "" {
			render(w, http.StatusOK, "login.html", page{Title: d.Title})
			return
		}
		s, err := d.Sessions.Load(r.Context(), sid, email)
		if err != nil {
			log.Printf("load session %s: %v", email, err)
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
		if s.UserEmail == email {
			switch s.State() {
			case quiz.StateSelected, quiz.StateInProgress:
				http.Redirect(w, r, "/quiz", http.StatusSeeOther)
				return
			case quiz.StateComplete:
				http.Redirect(w, r, "/end", http.StatusSeeOther)
				return
			}
		}
		render(w, http.StatusOK, "select.html", page{
			Title: d.Title,
			Email: email,
			Data:  selectView{Names: d.Library.Catalog().Names()},
		})
	}
}

func login(w http.ResponseWriter, r *http.Request, d *Deps) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	email, err := authmw.NormalizeEmail(r.PostForm.Get("email"))
	if err != nil {
		render(w, http.StatusBadRequest, "login.html", page{Title: d.Title, Message: "Please enter a valid email address"})
		return
	}
	sid, err := d.Auth.SignIn(w, r, email, rbac.RoleTaker)
	if err != nil {
		log.Printf("sign in %s: %v", email, err)
		http.Error(w, "sign in failed", http.StatusInternalServerError)
		return
	}
	// a different email on this browser starts a fresh session
	if _, err := d.Sessions.Do(r.Context(), sid, email, func(*quiz.Session) error { return nil }); err != nil {
		log.Printf("start session %s: %v", email, err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GET /logout
func LogoutHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sid, _ := identity(r); sid != "" {
			if err := d.Sessions.Clear(r.Context(), sid); err != nil {
				log.Printf("logout: %v", err)
			}
		}
		d.Auth.SignOut(w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
