// Package progress maintains the per-bank learning ledger: which
// questions were answered, latest correctness, and aggregate counters.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiku/quizbank-backend/internal/config"
	"github.com/studiku/quizbank-backend/internal/grader"
	"github.com/studiku/quizbank-backend/internal/model"
	"github.com/studiku/quizbank-backend/internal/store"
)

// Tracker reads and updates learning progress through the Store.
type Tracker struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewTracker creates a progress tracker.
func NewTracker(st store.Store, log zerolog.Logger) *Tracker {
	return &Tracker{
		store: st,
		log:   log.With().Str("component", "progress_tracker").Logger(),
		now:   time.Now,
	}
}

// All returns the full per-bank progress map.
func (t *Tracker) All(ctx context.Context) (map[string]*model.BankProgress, error) {
	return t.load(ctx)
}

// Get returns the bank's progress, creating an empty ledger on first
// access.
func (t *Tracker) Get(ctx context.Context, bankID string) (*model.BankProgress, error) {
	all, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	if p, ok := all[bankID]; ok {
		return p, nil
	}

	p := model.NewBankProgress()
	all[bankID] = p
	if err := t.save(ctx, all); err != nil {
		return nil, err
	}
	return p, nil
}

// Record stores the latest answer to one question and updates the
// counters. Completed counts distinct questions; when a re-answer flips
// correctness, the correct/incorrect counters move with it instead of
// double counting.
func (t *Tracker) Record(ctx context.Context, bankID, questionID, userAnswer, correctAnswer string) error {
	all, err := t.load(ctx)
	if err != nil {
		return err
	}
	p, ok := all[bankID]
	if !ok {
		p = model.NewBankProgress()
		all[bankID] = p
	}

	isCorrect := grader.IsCorrect(userAnswer, correctAnswer)
	prev, answeredBefore := p.AnsweredQuestions[questionID]

	p.AnsweredQuestions[questionID] = model.AnsweredQuestion{
		Answer:     userAnswer,
		Correct:    isCorrect,
		AnsweredAt: t.now().UnixMilli(),
	}

	switch {
	case !answeredBefore:
		p.Completed++
		if isCorrect {
			p.Correct++
		} else {
			p.Incorrect++
		}
	case prev.Correct != isCorrect:
		if isCorrect {
			p.Correct++
			p.Incorrect--
		} else {
			p.Correct--
			p.Incorrect++
		}
	}

	studied := t.now().UnixMilli()
	p.LastStudied = &studied
	p.StudyCount++

	return t.save(ctx, all)
}

// SetExamScore records the bank's most recent exam outcome.
func (t *Tracker) SetExamScore(ctx context.Context, bankID string, score float64) error {
	all, err := t.load(ctx)
	if err != nil {
		return err
	}
	p, ok := all[bankID]
	if !ok {
		p = model.NewBankProgress()
		all[bankID] = p
	}

	when := t.now().UnixMilli()
	p.LastExamScore = &score
	p.LastExamTime = &when

	return t.save(ctx, all)
}

// Unanswered returns the IDs of bank questions never answered in
// learning mode.
func (t *Tracker) Unanswered(ctx context.Context, bank *model.QuestionBank) ([]string, error) {
	p, err := t.Get(ctx, bank.ID)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, q := range bank.Questions {
		if _, ok := p.AnsweredQuestions[q.ID]; !ok {
			ids = append(ids, q.ID)
		}
	}
	return ids, nil
}

// Incorrect returns the IDs of questions whose latest answer was wrong.
func (t *Tracker) Incorrect(ctx context.Context, bankID string) ([]string, error) {
	p, err := t.Get(ctx, bankID)
	if err != nil {
		return nil, err
	}

	var ids []string
	for id, a := range p.AnsweredQuestions {
		if !a.Correct {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Reset empties the bank's ledger but keeps the bank entry.
func (t *Tracker) Reset(ctx context.Context, bankID string) error {
	all, err := t.load(ctx)
	if err != nil {
		return err
	}
	all[bankID] = model.NewBankProgress()
	return t.save(ctx, all)
}

// Delete drops the bank's ledger entirely (bank deletion cascade).
func (t *Tracker) Delete(ctx context.Context, bankID string) error {
	all, err := t.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := all[bankID]; !ok {
		return nil
	}
	delete(all, bankID)
	return t.save(ctx, all)
}

func (t *Tracker) load(ctx context.Context) (map[string]*model.BankProgress, error) {
	raw, err := t.store.Get(ctx, config.StoreKey.LearningProgressKey())
	if errors.Is(err, store.ErrNotFound) {
		return map[string]*model.BankProgress{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load learning progress: %w", err)
	}

	var all map[string]*model.BankProgress
	if err := json.Unmarshal(raw, &all); err != nil {
		t.log.Warn().Err(err).Msg("Discarding malformed learning progress")
		return map[string]*model.BankProgress{}, nil
	}
	for _, p := range all {
		if p.AnsweredQuestions == nil {
			p.AnsweredQuestions = make(map[string]model.AnsweredQuestion)
		}
	}
	return all, nil
}

func (t *Tracker) save(ctx context.Context, all map[string]*model.BankProgress) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("marshal learning progress: %w", err)
	}
	if err := t.store.Set(ctx, config.StoreKey.LearningProgressKey(), raw); err != nil {
		return fmt.Errorf("save learning progress: %w", err)
	}
	return nil
}
