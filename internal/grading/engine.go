package grading

// Item is a minimal view of an answered question needed for scoring.
type Item struct {
	Prompt   string
	Correct  string
	Answer   string
	Answered bool
	Hint     string
}

// Missed describes a question the taker got wrong. Number is 1-based.
type Missed struct {
	Number int    `json:"number" yaml:"number"`
	Prompt string `json:"prompt" yaml:"prompt"`
	Answer string `json:"answer" yaml:"answer"`
	Hint   string `json:"hint" yaml:"hint"`
}

type Summary struct {
	NTotal       int      `json:"n_total"`
	NCorrect     int      `json:"n_correct"`
	NWrong       int      `json:"n_wrong"`
	Score        int      `json:"score"`
	Pass         bool     `json:"pass"`
	PassingScore int      `json:"passing_score"`
	Correct      []bool   `json:"correct"`
	Missed       []Missed `json:"missed"`
}

// Match is exact, case-sensitive equality. Answers are not trimmed here;
// normalization happens when quizzes are loaded.
func Match(answer, correct string) bool { return answer == correct }

// Score grades every item and derives the aggregate verdict.
// score = floor(100 * correct / total); an empty quiz scores 0.
func Score(items []Item, passing int) Summary {
	s := Summary{
		NTotal:       len(items),
		PassingScore: passing,
		Correct:      make([]bool, len(items)),
		Missed:       []Missed{},
	}
	for i, it := range items {
		ok := it.Answered && Match(it.Answer, it.Correct)
		s.Correct[i] = ok
		if ok {
			s.NCorrect++
			continue
		}
		s.Missed = append(s.Missed, Missed{Number: i + 1, Prompt: it.Prompt, Answer: it.Answer, Hint: it.Hint})
	}
	s.NWrong = s.NTotal - s.NCorrect
	if s.NTotal > 0 {
		s.Score = 100 * s.NCorrect / s.NTotal
	}
	s.Pass = s.Score >= passing
	return s
}
