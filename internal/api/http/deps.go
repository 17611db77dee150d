package http

import (
	"context"

	authmw "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/session"
	"github.com/mind-engage/mindengage-quiz/internal/submission"
)

// SubmissionLister backs the admin submission list.
type SubmissionLister interface {
	List(ctx context.Context, opts submission.ListOpts) ([]submission.Summary, error)
}

// Documents returns archived submission documents by id.
type Documents interface {
	Document(ctx context.Context, id int64) ([]byte, error)
}

// Deps is everything the quiz handlers need.
type Deps struct {
	Title        string
	PassingScore int

	Library  *quiz.Library
	Sessions *session.Manager
	Recorder *submission.Recorder
	Auth     *authmw.AuthService
	Shuffler quiz.Shuffler // nil uses quiz.DefaultShuffler

	Submissions SubmissionLister
	Archive     Documents

	// admin login; empty AdminUser disables the route
	AdminUser     string
	AdminPassHash string
}
