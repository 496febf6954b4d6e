package session

import (
	"time"

	"github.com/studiku/quizbank-backend/internal/model"
)

// Kind discriminates the two session flows.
type Kind string

const (
	KindExam     Kind = "exam"
	KindLearning Kind = "learning"
)

// Order is the learning-mode question ordering.
type Order string

const (
	OrderSequential Order = "sequential"
	OrderRandom     Order = "random"
)

// ExamMode selects how an exam's question list was requested. Legacy
// takes a flat total; Typed takes per-type quotas. The caller picks the
// variant explicitly — it is never inferred.
type ExamMode string

const (
	ExamModeLegacy ExamMode = "legacy"
	ExamModeTyped  ExamMode = "typed"
)

// Default per-type scores, used by legacy exams and wherever a typed
// config leaves a score unset at the API edge.
const (
	DefaultSingleScore   = 1
	DefaultMultipleScore = 2
	DefaultJudgeScore    = 1
)

// ExamConfig fixes an exam session's parameters at creation.
type ExamConfig struct {
	Mode ExamMode `json:"mode"`
	// TotalCount is the legacy flat question count.
	TotalCount int `json:"total_count,omitempty"`
	// Per-type quotas (typed mode).
	SingleCount   int `json:"single_count,omitempty"`
	MultipleCount int `json:"multiple_count,omitempty"`
	JudgeCount    int `json:"judge_count,omitempty"`
	// Per-type scores.
	SingleScore   float64 `json:"single_score"`
	MultipleScore float64 `json:"multiple_score"`
	JudgeScore    float64 `json:"judge_score"`
	// DurationMinutes 0 means the exam is expired the moment it starts;
	// validation rejects it at the API edge, but the core keeps the
	// arithmetic uniform.
	DurationMinutes int `json:"duration_minutes"`
}

// LearningConfig fixes a learning session's parameters at creation.
type LearningConfig struct {
	Order Order `json:"order"`
	// ReviewMode reveals every answer up front (self-study "flashcard"
	// behavior) instead of on demand.
	ReviewMode bool `json:"review_mode"`
}

// Config is the tagged session configuration: exactly one of Exam or
// Learning is set, matching Kind. Immutable for the session's lifetime;
// changing it means ending the session and starting a new one.
type Config struct {
	Kind     Kind            `json:"kind"`
	BankID   string          `json:"bank_id"`
	BankName string          `json:"bank_name"`
	// CandidateName is carried into the history record (exam only).
	CandidateName string          `json:"candidate_name,omitempty"`
	Exam          *ExamConfig     `json:"exam,omitempty"`
	Learning      *LearningConfig `json:"learning,omitempty"`
}

// Duration returns the session's wall-clock budget; zero for learning
// sessions, which never expire.
func (c Config) Duration() time.Duration {
	if c.Kind == KindExam && c.Exam != nil {
		return time.Duration(c.Exam.DurationMinutes) * time.Minute
	}
	return 0
}

// MaxScore returns the score a correct answer of the given type earns.
// Learning sessions score every question at 1 (pure accuracy tracking).
func (c Config) MaxScore(typ model.QuestionType) float64 {
	if c.Kind != KindExam || c.Exam == nil {
		return 1
	}
	switch typ {
	case model.QuestionTypeSingle:
		return c.Exam.SingleScore
	case model.QuestionTypeMultiple:
		return c.Exam.MultipleScore
	case model.QuestionTypeJudge:
		return c.Exam.JudgeScore
	}
	return 0
}

// validate reports whether the config is internally consistent.
func (c Config) validate() error {
	switch c.Kind {
	case KindExam:
		if c.Exam == nil || c.Learning != nil {
			return errConfig("exam session requires exactly an exam config")
		}
		ec := c.Exam
		if ec.SingleScore <= 0 || ec.MultipleScore <= 0 || ec.JudgeScore <= 0 {
			return errConfig("per-type scores must be positive")
		}
		switch ec.Mode {
		case ExamModeLegacy:
			if ec.TotalCount <= 0 {
				return errConfig("legacy exam requires a positive question count")
			}
		case ExamModeTyped:
			if ec.SingleCount+ec.MultipleCount+ec.JudgeCount <= 0 {
				return errConfig("typed exam requires at least one requested question")
			}
		default:
			return errConfig("unknown exam mode")
		}
	case KindLearning:
		if c.Learning == nil || c.Exam != nil {
			return errConfig("learning session requires exactly a learning config")
		}
		if c.Learning.Order != OrderSequential && c.Learning.Order != OrderRandom {
			return errConfig("unknown learning order")
		}
	default:
		return errConfig("unknown session kind")
	}
	return nil
}
