package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuiz is returned when the selected quiz is not in the catalog.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrValidation is returned for user input that can simply be re-prompted.
	ErrValidation = errors.New("validation error")
	// ErrState is returned when a transition is not allowed from the current state.
	ErrState = errors.New("invalid state")
)

func stateErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrState, fmt.Sprintf(format, args...))
}

// UserMessage returns the text shown to the quiz taker for a core error.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "Please choose an answer to proceed"
	case errors.Is(err, ErrInvalidQuiz):
		return "That quiz is not available, please pick another one"
	case errors.Is(err, ErrState):
		return "That action is not possible right now"
	default:
		return "Something went wrong"
	}
}
