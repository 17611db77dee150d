package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/submission"
)

type questionView struct {
	QuizName  string
	Number    int
	Total     int
	Prompt    string
	Options   []string
	Answer    string
	Complete  bool
	Questions []quiz.AnsweredQuestion
}

type endView struct {
	QuizName     string
	Summary      grading.Summary
	SubmissionID int64
}

func identity(r *http.Request) (sid, email string) {
	return authmw.SessionIDFromContext(r.Context()), authmw.SubjectFromContext(r.Context())
}

// GET/POST /quiz  form: sel_quiz selects a quiz, answer submits the current question
func QuizHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, email := identity(r)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		var msg string
		if r.Method == http.MethodPost {
			var (
				done bool
				err  error
			)
			if name := r.PostForm.Get("sel_quiz"); name != "" {
				_, err = d.Sessions.Do(r.Context(), sid, email, func(s *quiz.Session) error {
					return s.SelectQuiz(d.Library.Catalog(), name)
				})
				if errors.Is(err, quiz.ErrInvalidQuiz) {
					render(w, http.StatusBadRequest, "select.html", page{
						Title: d.Title, Email: email, Message: quiz.UserMessage(err),
						Data: selectView{Names: d.Library.Catalog().Names()},
					})
					return
				}
			} else {
				_, err = d.Sessions.Do(r.Context(), sid, email, func(s *quiz.Session) error {
					var serr error
					done, serr = s.SubmitAnswer(r.PostForm.Get("answer"))
					return serr
				})
			}
			switch {
			case err == nil && done:
				http.Redirect(w, r, "/end", http.StatusSeeOther)
				return
			case err == nil:
				http.Redirect(w, r, "/quiz", http.StatusSeeOther)
				return
			case errors.Is(err, quiz.ErrValidation), errors.Is(err, quiz.ErrState):
				msg = quiz.UserMessage(err)
			default:
				log.Printf("quiz %s: %v", email, err)
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
		}
		showQuestion(w, r, d, msg)
	}
}

// showQuestion renders the question under the cursor, or redirects when there
// is none to show.
func showQuestion(w http.ResponseWriter, r *http.Request, d *Deps, msg string) {
	sid, email := identity(r)
	s, err := d.Sessions.Load(r.Context(), sid, email)
	if err != nil {
		log.Printf("load session %s: %v", email, err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	if s.QuizName == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	q, ok := s.Current()
	if !ok {
		http.Redirect(w, r, "/end", http.StatusSeeOther)
		return
	}
	shuffler := d.Shuffler
	if shuffler == nil {
		shuffler = quiz.DefaultShuffler
	}
	render(w, http.StatusOK, "quiz.html", page{
		Title:   d.Title,
		Email:   email,
		Message: msg,
		Data: questionView{
			QuizName:  s.QuizName,
			Number:    s.CurrentQuestion + 1,
			Total:     s.Total(),
			Prompt:    q.Prompt,
			Options:   quiz.Options(q.Question, shuffler),
			Answer:    q.AnswerValue(),
			Complete:  s.Complete,
			Questions: s.Questions,
		},
	})
}

// GET/POST /back  optional answer is kept before moving back
func BackHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, email := identity(r)
		_ = r.ParseForm()
		_, err := d.Sessions.Do(r.Context(), sid, email, func(s *quiz.Session) error {
			s.GoBack(r.Form.Get("answer"))
			return nil
		})
		if err != nil {
			log.Printf("back %s: %v", email, err)
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
	}
}

// GET/POST /jumpto?target=N  1-based target; optional answer is kept first
func JumpToHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, email := identity(r)
		_ = r.ParseForm()
		target, err := strconv.Atoi(r.Form.Get("target"))
		if err != nil {
			target = 0 // rejected as out of range below
		}
		_, err = d.Sessions.Do(r.Context(), sid, email, func(s *quiz.Session) error {
			return s.JumpTo(target, r.Form.Get("answer"))
		})
		switch {
		case err == nil:
			http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		case errors.Is(err, quiz.ErrState):
			showQuestion(w, r, d, quiz.UserMessage(err))
		default:
			log.Printf("jumpto %s: %v", email, err)
			http.Error(w, "session unavailable", http.StatusInternalServerError)
		}
	}
}

// errNoRecord marks a completed session that yields no submission record.
var errNoRecord = fmt.Errorf("%w: completed session has no record", quiz.ErrState)

// completionRecord builds the submission of a just-finished session.
func completionRecord(s *quiz.Session) (submission.Record, error) {
	rec, ok := submission.FromSession(s)
	if !ok {
		return submission.Record{}, errNoRecord
	}
	return rec, nil
}

// GET/POST /end  scores the quiz once and records the submission. Side
// effects run only after the completed session and its id are saved.
func EndHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, email := identity(r)
		var (
			sum     grading.Summary
			pending *submission.Record
		)
		s, err := d.Sessions.Do(r.Context(), sid, email, func(s *quiz.Session) error {
			var (
				first bool
				ferr  error
			)
			sum, first, ferr = s.Finish(d.PassingScore)
			if ferr != nil || !first {
				return ferr
			}
			rec, err := completionRecord(s)
			if err != nil {
				return err
			}
			s.SubmissionID = d.Recorder.NextID()
			pending = &rec
			return nil
		})
		switch {
		case errors.Is(err, errNoRecord):
			log.Printf("end %s: %v", email, err)
			http.Error(w, "result unavailable", http.StatusInternalServerError)
			return
		case errors.Is(err, quiz.ErrState):
			http.Redirect(w, r, "/quiz", http.StatusSeeOther)
			return
		case err != nil:
			log.Printf("end %s: %v", email, err)
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
		var msg string
		if pending != nil {
			if derr := d.Recorder.Deliver(r.Context(), s.SubmissionID, *pending); derr != nil {
				msg = "Your result was scored but could not be fully recorded"
			}
		}
		render(w, http.StatusOK, "end.html", page{
			Title:   d.Title,
			Email:   email,
			Message: msg,
			Data:    endView{QuizName: s.QuizName, Summary: sum, SubmissionID: s.SubmissionID},
		})
	}
}

// GET/POST /reset  drops quiz progress but keeps the login
func ResetHandler(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, email := identity(r)
		_, err := d.Sessions.Do(r.Context(), sid, email, func(s *quiz.Session) error {
			s.Reset()
			return nil
		})
		if err != nil {
			log.Printf("reset %s: %v", email, err)
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
