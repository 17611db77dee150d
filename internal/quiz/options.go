package quiz

import "math/rand/v2"

// Shuffler permutes n elements in place. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// DefaultShuffler draws from the process-wide math/rand/v2 source.
var DefaultShuffler Shuffler = globalShuffler{}

// Options returns the correct answer and all distractors in a fresh random
// order. Nothing is remembered between calls, so the position of the correct
// answer changes every time a question is shown.
func Options(q Question, sh Shuffler) []string {
	if sh == nil {
		sh = DefaultShuffler
	}
	opts := make([]string, 0, len(q.Distractors)+1)
	opts = append(opts, q.Distractors...)
	opts = append(opts, q.Correct)
	sh.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
	return opts
}
