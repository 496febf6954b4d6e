package session

import "time"

// Remaining returns the exam's remaining wall-clock time, clamped at
// zero. ok is false for learning sessions, which carry no countdown.
// The polling cadence, and the duty to call Submit when it hits zero,
// belongs to the caller; one update per elapsed second is sufficient
// resolution.
func Remaining(s *Session) (remaining time.Duration, ok bool) {
	if s.Kind() != KindExam {
		return 0, false
	}
	remaining = s.Duration - s.Elapsed()
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}
