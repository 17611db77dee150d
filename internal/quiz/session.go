package quiz

import (
	"fmt"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
)

type State string

const (
	StateNoQuiz     State = "no_quiz"
	StateSelected   State = "quiz_selected"
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
)

// Session is one user's progress through a quiz. It is not safe for
// concurrent use; callers serialize transitions per session.
type Session struct {
	UserEmail       string             `json:"user_email"`
	QuizName        string             `json:"quiz_name,omitempty"`
	Questions       []AnsweredQuestion `json:"questions,omitempty"`
	CurrentQuestion int                `json:"current_question"`
	Complete        bool               `json:"complete"`

	Summary      *grading.Summary `json:"summary,omitempty"`
	SubmissionID int64            `json:"submission_id,omitempty"`
	StartedAt    time.Time        `json:"started_at,omitempty"`
	CompletedAt  time.Time        `json:"completed_at,omitempty"`
}

func NewSession(email string) *Session { return &Session{UserEmail: email} }

func (s *Session) State() State {
	switch {
	case s.QuizName == "":
		return StateNoQuiz
	case s.Complete:
		return StateComplete
	case s.CurrentQuestion == 0 && !s.anyAnswered():
		return StateSelected
	default:
		return StateInProgress
	}
}

func (s *Session) anyAnswered() bool {
	for _, q := range s.Questions {
		if q.Answer != nil {
			return true
		}
	}
	return false
}

// Total returns the number of questions in the selected quiz.
func (s *Session) Total() int { return len(s.Questions) }

// AtEnd reports whether the cursor has moved past the last question.
func (s *Session) AtEnd() bool { return s.QuizName != "" && s.CurrentQuestion >= len(s.Questions) }

// Current returns the question under the cursor.
func (s *Session) Current() (AnsweredQuestion, bool) {
	if s.CurrentQuestion < 0 || s.CurrentQuestion >= len(s.Questions) {
		return AnsweredQuestion{}, false
	}
	return s.Questions[s.CurrentQuestion], true
}

// SelectQuiz copies the named quiz into the session. Only valid with no active quiz.
func (s *Session) SelectQuiz(c *Catalog, name string) error {
	if s.QuizName != "" {
		return stateErr("quiz %q already selected", s.QuizName)
	}
	def, err := c.Lookup(name)
	if err != nil {
		return err
	}
	qs := make([]AnsweredQuestion, len(def.Questions))
	for i, q := range def.Questions {
		qs[i] = AnsweredQuestion{Question: q}
	}
	s.QuizName = def.Title
	s.Questions = qs
	s.CurrentQuestion = 0
	s.Complete = false
	s.Summary = nil
	s.SubmissionID = 0
	s.StartedAt = time.Now().UTC()
	s.CompletedAt = time.Time{}
	return nil
}

// SubmitAnswer records value for the current question and advances the
// cursor. done reports that the cursor reached the end of the quiz.
func (s *Session) SubmitAnswer(value string) (done bool, err error) {
	if err := s.canRecord(); err != nil {
		return false, err
	}
	if s.CurrentQuestion >= len(s.Questions) {
		return false, stateErr("no question to answer")
	}
	if value == "" {
		return false, fmt.Errorf("%w: empty answer", ErrValidation)
	}
	s.record(value)
	s.CurrentQuestion++
	return s.CurrentQuestion >= len(s.Questions), nil
}

// GoBack moves to the previous question, floored at the first one. A
// non-empty value is recorded for the current question first.
func (s *Session) GoBack(value string) {
	if value != "" && s.canRecord() == nil && s.CurrentQuestion < len(s.Questions) {
		s.record(value)
	}
	if s.CurrentQuestion > 0 {
		s.CurrentQuestion--
	}
}

// JumpTo moves to the 1-based target question. Out-of-range targets are
// rejected before anything is recorded.
func (s *Session) JumpTo(target int, value string) error {
	if s.QuizName == "" {
		return stateErr("no quiz selected")
	}
	if target < 1 || target > len(s.Questions) {
		return stateErr("question %d out of range 1..%d", target, len(s.Questions))
	}
	if value != "" && s.CurrentQuestion < len(s.Questions) {
		if err := s.canRecord(); err != nil {
			return err
		}
		s.record(value)
	}
	s.CurrentQuestion = target - 1
	return nil
}

// Finish scores the session once the cursor has reached the end. Later calls
// return the stored summary with first=false and do not score again.
func (s *Session) Finish(passing int) (sum grading.Summary, first bool, err error) {
	if s.Complete && s.Summary != nil {
		return *s.Summary, false, nil
	}
	if !s.AtEnd() {
		return grading.Summary{}, false, stateErr("quiz not finished: question %d of %d", s.CurrentQuestion+1, len(s.Questions))
	}

	items := make([]grading.Item, len(s.Questions))
	for i, q := range s.Questions {
		items[i] = grading.Item{
			Prompt:   q.Prompt,
			Correct:  q.Correct,
			Answer:   q.AnswerValue(),
			Answered: q.Answer != nil,
			Hint:     q.Hint,
		}
	}
	sum = grading.Score(items, passing)
	for i := range s.Questions {
		ok := sum.Correct[i]
		s.Questions[i].AnswerCorrect = &ok
	}
	s.Complete = true
	s.Summary = &sum
	s.CompletedAt = time.Now().UTC()
	return sum, true, nil
}

// Reset drops the selected quiz and all progress but keeps the user's email.
func (s *Session) Reset() {
	*s = Session{UserEmail: s.UserEmail}
}

// MissedQuestions returns the session's wrong answers after completion.
func (s *Session) MissedQuestions() []AnsweredQuestion {
	var out []AnsweredQuestion
	for _, q := range s.Questions {
		if q.AnswerCorrect != nil && !*q.AnswerCorrect {
			out = append(out, q.clone())
		}
	}
	return out
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	out := *s
	if s.Questions != nil {
		out.Questions = make([]AnsweredQuestion, len(s.Questions))
		for i, q := range s.Questions {
			out.Questions[i] = q.clone()
		}
	}
	if s.Summary != nil {
		sum := *s.Summary
		sum.Correct = append([]bool(nil), s.Summary.Correct...)
		sum.Missed = append([]grading.Missed(nil), s.Summary.Missed...)
		out.Summary = &sum
	}
	return &out
}

func (s *Session) canRecord() error {
	if s.QuizName == "" {
		return stateErr("no quiz selected")
	}
	if s.Complete {
		return stateErr("quiz %q already complete", s.QuizName)
	}
	return nil
}

func (s *Session) record(value string) {
	v := strings.Clone(value)
	s.Questions[s.CurrentQuestion].Answer = &v
}
