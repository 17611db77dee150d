package quiz

// Canonical string forms of boolean answers.
const (
	True  = "True"
	False = "False"
)

type Question struct {
	Prompt      string   `json:"prompt" yaml:"prompt"`
	Correct     string   `json:"correct" yaml:"correct"`
	Distractors []string `json:"distractors" yaml:"distractors"`
	Hint        string   `json:"hint,omitempty" yaml:"hint,omitempty"`
}

type Definition struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// AnsweredQuestion is the session-owned copy of a Question.
// Answer is nil until the user submits a value; AnswerCorrect is set at completion.
type AnsweredQuestion struct {
	Question      `yaml:",inline"`
	Answer        *string `json:"answer,omitempty" yaml:"answer,omitempty"`
	AnswerCorrect *bool   `json:"answer_correct,omitempty" yaml:"answer_correct,omitempty"`
}

func (q AnsweredQuestion) AnswerValue() string {
	if q.Answer == nil {
		return ""
	}
	return *q.Answer
}

func (q AnsweredQuestion) clone() AnsweredQuestion {
	out := q
	out.Distractors = append([]string(nil), q.Distractors...)
	if q.Answer != nil {
		a := *q.Answer
		out.Answer = &a
	}
	if q.AnswerCorrect != nil {
		c := *q.AnswerCorrect
		out.AnswerCorrect = &c
	}
	return out
}
