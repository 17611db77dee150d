package submission

import (
	"sync"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

// Record is the persisted result of one completed quiz attempt. Field names
// follow the submission documents reviewers already receive.
type Record struct {
	UserEmail    string                  `json:"user_email" yaml:"user_email"`
	QuizName     string                  `json:"quiz_name" yaml:"quiz_name"`
	NWrong       int                     `json:"n_wrong" yaml:"n_wrong"`
	NCorrect     int                     `json:"n_correct" yaml:"n_correct"`
	NTotal       int                     `json:"n_total" yaml:"n_total"`
	Questions    []quiz.AnsweredQuestion `json:"questions" yaml:"questions"`
	Pass         bool                    `json:"pass" yaml:"pass"`
	PassingScore int                     `json:"passing_score" yaml:"passing_score"`
	Score        int                     `json:"score" yaml:"score"`
}

// FromSession builds the record of a completed session.
func FromSession(s *quiz.Session) (Record, bool) {
	if !s.Complete || s.Summary == nil {
		return Record{}, false
	}
	sum := s.Summary
	missed := s.MissedQuestions()
	if missed == nil {
		missed = []quiz.AnsweredQuestion{}
	}
	return Record{
		UserEmail:    s.UserEmail,
		QuizName:     s.QuizName,
		NWrong:       sum.NWrong,
		NCorrect:     sum.NCorrect,
		NTotal:       sum.NTotal,
		Questions:    missed,
		Pass:         sum.Pass,
		PassingScore: sum.PassingScore,
		Score:        sum.Score,
	}, true
}

// IDs hands out timestamp-derived submission ids: Unix seconds, bumped when
// needed so ids stay unique and increasing within the process.
type IDs struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDs() *IDs { return &IDs{now: time.Now} }

func (g *IDs) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().Unix()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
