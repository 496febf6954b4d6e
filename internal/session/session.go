// Package session implements the in-progress exam/learning session:
// one mutable state value plus the transition operations that drive it.
// The two flows share one shape and differ in grading policy — learning
// grades on navigate-away and reveal, exams defer all grading to
// submission so correctness never leaks early.
package session

import (
	"fmt"
	"sort"
	"time"

	"github.com/studiku/quizbank-backend/internal/grader"
	"github.com/studiku/quizbank-backend/internal/model"
)

// ResultEntry is the graded outcome of one question.
type ResultEntry struct {
	Correct       bool    `json:"correct"`
	Answered      bool    `json:"answered"`
	UserAnswer    string  `json:"user_answer,omitempty"`
	CorrectAnswer string  `json:"correct_answer"`
	Score         float64 `json:"score"`
	MaxScore      float64 `json:"max_score"`
}

// Session is the mutable core entity of one exam or learning attempt.
// It is a plain value driven by its operations; it owns no goroutines,
// schedules nothing, and never touches storage. Callers persist it
// after every mutation and own the timer cadence.
type Session struct {
	Config       Config
	Questions    []model.Question
	CurrentIndex int
	// Answers maps question index to the raw answer string; an absent
	// key means unanswered.
	Answers map[int]string
	// Results is populated lazily: learning grades on navigate-away or
	// reveal, exams only at submission.
	Results map[int]*ResultEntry
	// Marked is the user's advisory bookmark set; no grading effect.
	Marked map[int]struct{}
	// Viewed tracks revealed answers (learning only).
	Viewed map[int]struct{}

	StartTime   time.Time
	Duration    time.Duration // zero for learning: never expires
	Submitted   bool
	CompletedAt *time.Time

	now func() time.Time
}

// Option customizes session construction.
type Option func(*Session)

// WithClock injects the time source, for tests and deterministic
// expiry handling.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Start creates a session over an already-selected question list. The
// list must be non-empty and is used as-is: selection (and its deep
// copying) happened in the selector.
func Start(cfg Config, questions []model.Question, opts ...Option) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, errConfig("question list is empty")
	}

	s := &Session{
		Config:    cfg,
		Questions: questions,
		Answers:   make(map[int]string),
		Results:   make(map[int]*ResultEntry),
		Marked:    make(map[int]struct{}),
		Viewed:    make(map[int]struct{}),
		Duration:  cfg.Duration(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.StartTime = s.now()

	return s, nil
}

// Kind returns the session's flow.
func (s *Session) Kind() Kind { return s.Config.Kind }

// Len returns the fixed question count.
func (s *Session) Len() int { return len(s.Questions) }

// RecordAnswer stores the raw answer for the question at index. After
// submission it is a no-op reported as ErrAlreadySubmitted; callers log
// it instead of failing (stray late UI events are expected). Grading is
// deferred — unless the question was already graded, in which case it
// re-grades immediately so the stored result tracks the changed answer.
func (s *Session) RecordAnswer(index int, rawAnswer string) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if s.Submitted {
		return ErrAlreadySubmitted
	}

	s.Answers[index] = rawAnswer

	if _, graded := s.Results[index]; graded {
		s.grade(index)
	}
	return nil
}

// GradeIfNeeded grades the question at index if it has an answer but no
// result yet. Idempotent: an existing result is never recomputed, so a
// stored answer always yields the same correctness however many times
// grading is triggered.
func (s *Session) GradeIfNeeded(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if _, graded := s.Results[index]; graded {
		return nil
	}
	if _, answered := s.Answers[index]; !answered {
		return nil
	}
	s.grade(index)
	return nil
}

// Advance moves the cursor by direction (+1 or -1). Learning sessions
// grade the question being left; exams defer all grading to submission.
func (s *Session) Advance(direction int) error {
	if direction != 1 && direction != -1 {
		return fmt.Errorf("%w: direction must be +1 or -1", ErrInvalidIndex)
	}
	return s.JumpTo(s.CurrentIndex + direction)
}

// JumpTo moves the cursor to index, with the same grade-on-leave
// behavior as Advance. Navigation stays legal after submission so the
// user can review results.
func (s *Session) JumpTo(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}

	if s.Kind() == KindLearning && !s.Submitted {
		_ = s.GradeIfNeeded(s.CurrentIndex)
	}

	s.CurrentIndex = index
	return nil
}

// ToggleMark flips the advisory bookmark on index. No grading effect.
// A no-op after submission, reported as ErrAlreadySubmitted.
func (s *Session) ToggleMark(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if s.Submitted {
		return ErrAlreadySubmitted
	}

	if _, ok := s.Marked[index]; ok {
		delete(s.Marked, index)
	} else {
		s.Marked[index] = struct{}{}
	}
	return nil
}

// ToggleViewAnswer flips answer visibility on index (learning only).
// Revealing implies grading when an answer exists.
func (s *Session) ToggleViewAnswer(index int) error {
	if s.Kind() != KindLearning {
		return errConfig("answer reveal is a learning-mode operation")
	}
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if s.Submitted {
		return ErrAlreadySubmitted
	}

	if _, ok := s.Viewed[index]; ok {
		delete(s.Viewed, index)
		return nil
	}

	s.Viewed[index] = struct{}{}
	return s.GradeIfNeeded(index)
}

// Submit finalizes the session: every question gets a result entry
// (unanswered ones marked incorrect and unanswered), the terminal flag
// is set and the completion time recorded. Calling Submit on a
// submitted session is a guaranteed no-op, so a timer-driven submit
// racing a user-driven one is harmless.
func (s *Session) Submit() {
	if s.Submitted {
		return
	}

	for i := range s.Questions {
		if _, graded := s.Results[i]; graded {
			continue
		}
		if _, answered := s.Answers[i]; answered {
			s.grade(i)
			continue
		}
		q := s.Questions[i]
		s.Results[i] = &ResultEntry{
			Correct:       false,
			Answered:      false,
			CorrectAnswer: q.Answer,
			Score:         0,
			MaxScore:      s.Config.MaxScore(q.Type),
		}
	}

	s.Submitted = true
	done := s.now()
	s.CompletedAt = &done
}

// IsExpired reports whether an exam's wall-clock budget has run out.
// Learning sessions never expire. Expiry does not auto-submit: the
// caller polls (or gets a timer callback) and invokes Submit itself,
// keeping scheduling out of the core.
func (s *Session) IsExpired() bool {
	if s.Kind() != KindExam {
		return false
	}
	return s.now().Sub(s.StartTime) >= s.Duration
}

// Elapsed returns time since the session started.
func (s *Session) Elapsed() time.Duration {
	return s.now().Sub(s.StartTime)
}

// MarkedList returns the bookmark set as a sorted slice.
func (s *Session) MarkedList() []int {
	return sortedKeys(s.Marked)
}

// ViewedList returns the revealed set as a sorted slice.
func (s *Session) ViewedList() []int {
	return sortedKeys(s.Viewed)
}

// AnsweredCount returns how many questions have a recorded answer.
func (s *Session) AnsweredCount() int {
	return len(s.Answers)
}

// Restore finalizes a deserialized session: nil maps become empty and
// the clock (possibly injected) is attached. The persistence adapter
// calls this after unmarshaling a stored record.
func (s *Session) Restore(opts ...Option) {
	if s.Answers == nil {
		s.Answers = make(map[int]string)
	}
	if s.Results == nil {
		s.Results = make(map[int]*ResultEntry)
	}
	if s.Marked == nil {
		s.Marked = make(map[int]struct{})
	}
	if s.Viewed == nil {
		s.Viewed = make(map[int]struct{})
	}
	s.now = time.Now
	for _, opt := range opts {
		opt(s)
	}
}

// grade computes and stores the result for an answered question.
func (s *Session) grade(index int) {
	q := s.Questions[index]
	userAnswer := s.Answers[index]
	maxScore := s.Config.MaxScore(q.Type)

	correct := grader.IsCorrect(userAnswer, q.Answer)
	score := 0.0
	if correct {
		score = maxScore
	}

	s.Results[index] = &ResultEntry{
		Correct:       correct,
		Answered:      true,
		UserAnswer:    userAnswer,
		CorrectAnswer: q.Answer,
		Score:         score,
		MaxScore:      maxScore,
	}
}

func (s *Session) checkIndex(index int) error {
	if index < 0 || index >= len(s.Questions) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidIndex, index, len(s.Questions))
	}
	return nil
}

func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
