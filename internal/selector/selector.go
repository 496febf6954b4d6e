// Package selector builds the ordered question list for a session from
// a bank's pool. Random selection is type-grouped: each question type
// is shuffled on its own and the groups always concatenate
// single → multiple → judge, matching the grading-by-type model.
package selector

import (
	"math/rand"

	"github.com/studiku/quizbank-backend/internal/model"
)

// Selector produces session question lists. The random source is
// injectable so shuffles are reproducible in tests.
type Selector struct {
	rng *rand.Rand
}

// New creates a Selector backed by the given source. A nil source
// falls back to the global one.
func New(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// Sequential returns the pool in its original order, deep-copied so
// the session owns its snapshots.
func (s *Selector) Sequential(pool []model.Question) []model.Question {
	return model.CloneQuestions(pool)
}

// Random shuffles each type partition independently and concatenates
// them single → multiple → judge.
func (s *Selector) Random(pool []model.Question) []model.Question {
	single, multiple, judge := s.partition(pool)

	s.shuffle(single)
	s.shuffle(multiple)
	s.shuffle(judge)

	return concat(single, multiple, judge)
}

// ByQuota shuffles each type partition and truncates it to the
// requested count. Over-requesting is not an error: each count is
// clamped to the partition size, so a small pool simply yields fewer
// questions. Callers must use the returned list's length, not the
// requested counts.
func (s *Selector) ByQuota(pool []model.Question, singleCount, multipleCount, judgeCount int) []model.Question {
	single, multiple, judge := s.partition(pool)

	s.shuffle(single)
	s.shuffle(multiple)
	s.shuffle(judge)

	return concat(
		truncate(single, singleCount),
		truncate(multiple, multipleCount),
		truncate(judge, judgeCount),
	)
}

// partition deep-copies the pool into per-type groups.
func (s *Selector) partition(pool []model.Question) (single, multiple, judge []model.Question) {
	for _, q := range pool {
		switch q.Type {
		case model.QuestionTypeSingle:
			single = append(single, q.Clone())
		case model.QuestionTypeMultiple:
			multiple = append(multiple, q.Clone())
		case model.QuestionTypeJudge:
			judge = append(judge, q.Clone())
		}
	}
	return single, multiple, judge
}

// shuffle is an in-place Fisher–Yates shuffle.
func (s *Selector) shuffle(qs []model.Question) {
	swap := func(i, j int) { qs[i], qs[j] = qs[j], qs[i] }
	if s.rng != nil {
		s.rng.Shuffle(len(qs), swap)
	} else {
		rand.Shuffle(len(qs), swap)
	}
}

func truncate(qs []model.Question, n int) []model.Question {
	if n < 0 {
		n = 0
	}
	if n > len(qs) {
		n = len(qs)
	}
	return qs[:n]
}

func concat(groups ...[]model.Question) []model.Question {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	out := make([]model.Question, 0, total)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
