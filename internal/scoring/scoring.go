// Package scoring turns a submitted session into its final result:
// per-question outcomes, weighted score, aggregate statistics.
package scoring

import (
	"errors"
	"math"

	"github.com/studiku/quizbank-backend/internal/model"
	"github.com/studiku/quizbank-backend/internal/session"
)

// ErrNotSubmitted is a hard error: scoring an incomplete session is a
// caller logic bug, not a recoverable condition.
var ErrNotSubmitted = errors.New("session not submitted")

// WrongQuestion pairs a missed question with what the user answered.
type WrongQuestion struct {
	Index         int            `json:"index"`
	Question      model.Question `json:"question"`
	UserAnswer    string         `json:"user_answer,omitempty"`
	CorrectAnswer string         `json:"correct_answer"`
}

// Result is the final outcome of one session.
type Result struct {
	Score           float64         `json:"score"`
	MaxScore        float64         `json:"max_score"`
	ScorePercent    int             `json:"score_percent"`
	AccuracyPercent int             `json:"accuracy_percent"`
	CorrectCount    int             `json:"correct_count"`
	WrongCount      int             `json:"wrong_count"`
	SkippedCount    int             `json:"skipped_count"`
	TotalQuestions  int             `json:"total_questions"`
	WrongQuestions  []WrongQuestion `json:"wrong_questions,omitempty"`
}

// Score computes the final result from a submitted session's result
// entries. Skipped questions (no recorded answer) count toward neither
// correct nor wrong.
func Score(s *session.Session) (*Result, error) {
	if !s.Submitted {
		return nil, ErrNotSubmitted
	}

	r := &Result{TotalQuestions: s.Len()}
	totalScore := 0.0

	for i := range s.Questions {
		entry := s.Results[i]
		if entry == nil {
			// Submit guarantees an entry per question; treat a hole as
			// skipped to stay total-preserving.
			r.SkippedCount++
			r.MaxScore += s.Config.MaxScore(s.Questions[i].Type)
			continue
		}

		r.MaxScore += entry.MaxScore
		switch {
		case !entry.Answered:
			r.SkippedCount++
			r.WrongQuestions = append(r.WrongQuestions, WrongQuestion{
				Index:         i,
				Question:      s.Questions[i],
				CorrectAnswer: entry.CorrectAnswer,
			})
		case entry.Correct:
			r.CorrectCount++
			totalScore += entry.Score
		default:
			r.WrongCount++
			r.WrongQuestions = append(r.WrongQuestions, WrongQuestion{
				Index:         i,
				Question:      s.Questions[i],
				UserAnswer:    entry.UserAnswer,
				CorrectAnswer: entry.CorrectAnswer,
			})
		}
	}

	r.Score = round2(totalScore)
	if r.MaxScore > 0 {
		r.ScorePercent = roundPercent(totalScore / r.MaxScore)
	}
	if r.TotalQuestions > 0 {
		r.AccuracyPercent = roundPercent(float64(r.CorrectCount) / float64(r.TotalQuestions))
	}

	return r, nil
}

// round2 rounds half-up to two decimals, supporting fractional
// per-question scores.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// roundPercent rounds a ratio half-up to a whole percentage.
func roundPercent(ratio float64) int {
	return int(math.Floor(ratio*100 + 0.5))
}
