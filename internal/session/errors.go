package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig rejects a session that cannot start: empty
	// question list, non-positive scores, zero requested questions, or
	// a mismatched config variant.
	ErrInvalidConfig = errors.New("invalid session config")

	// ErrInvalidIndex rejects navigation or answers outside
	// [0, len(questions)). State is unchanged.
	ErrInvalidIndex = errors.New("question index out of range")

	// ErrAlreadySubmitted marks mutations arriving after submission.
	// For answer recording and mark toggling these are deliberate
	// no-ops, since stray late UI events are expected; callers log
	// them as warnings rather than failing.
	ErrAlreadySubmitted = errors.New("session already submitted")
)

func errConfig(detail string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, detail)
}
