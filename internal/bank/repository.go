// Package bank stores question banks in the key-value Store and
// exposes their learning statistics.
package bank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/studiku/quizbank-backend/internal/config"
	"github.com/studiku/quizbank-backend/internal/model"
	"github.com/studiku/quizbank-backend/internal/progress"
	"github.com/studiku/quizbank-backend/internal/store"
)

var (
	// ErrBankNotFound marks a lookup for a missing bank.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrNameTaken rejects a rename that collides with another bank.
	ErrNameTaken = errors.New("bank name already in use")
)

// Repository manages the bank list. Adding under a taken name appends a
// timestamp suffix instead of failing; renaming onto a taken name is an
// error — both mirror how imports versus deliberate renames behave.
type Repository struct {
	store   store.Store
	tracker *progress.Tracker
	log     zerolog.Logger
	now     func() time.Time
}

// NewRepository creates a bank repository.
func NewRepository(st store.Store, tracker *progress.Tracker, log zerolog.Logger) *Repository {
	return &Repository{
		store:   st,
		tracker: tracker,
		log:     log.With().Str("component", "bank_repository").Logger(),
		now:     time.Now,
	}
}

// List returns every stored bank.
func (r *Repository) List(ctx context.Context) ([]model.QuestionBank, error) {
	return r.load(ctx)
}

// Get returns the bank with the given ID.
func (r *Repository) Get(ctx context.Context, bankID string) (*model.QuestionBank, error) {
	banks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range banks {
		if banks[i].ID == bankID {
			return &banks[i], nil
		}
	}
	return nil, ErrBankNotFound
}

// Add stores a new bank. A name collision gets a timestamp suffix so
// repeated imports never clobber each other.
func (r *Repository) Add(ctx context.Context, name string, questions []model.Question) (*model.QuestionBank, error) {
	banks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	if r.nameTaken(banks, name, "") {
		name = fmt.Sprintf("%s_%d", name, r.now().UnixMilli())
	}

	nowMs := r.now().UnixMilli()
	bank := model.QuestionBank{
		ID:         uuid.New().String(),
		Name:       name,
		Questions:  ensureQuestionIDs(questions),
		CreateTime: nowMs,
		UpdateTime: nowMs,
	}

	banks = append(banks, bank)
	if err := r.save(ctx, banks); err != nil {
		return nil, err
	}
	return &bank, nil
}

// Update replaces the bank's questions.
func (r *Repository) Update(ctx context.Context, bankID string, questions []model.Question) (*model.QuestionBank, error) {
	banks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range banks {
		if banks[i].ID != bankID {
			continue
		}
		banks[i].Questions = ensureQuestionIDs(questions)
		banks[i].UpdateTime = r.now().UnixMilli()
		if err := r.save(ctx, banks); err != nil {
			return nil, err
		}
		return &banks[i], nil
	}
	return nil, ErrBankNotFound
}

// Rename changes the bank's display name; colliding names are rejected.
func (r *Repository) Rename(ctx context.Context, bankID, newName string) (*model.QuestionBank, error) {
	banks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	if r.nameTaken(banks, newName, bankID) {
		return nil, ErrNameTaken
	}

	for i := range banks {
		if banks[i].ID != bankID {
			continue
		}
		banks[i].Name = newName
		banks[i].UpdateTime = r.now().UnixMilli()
		if err := r.save(ctx, banks); err != nil {
			return nil, err
		}
		return &banks[i], nil
	}
	return nil, ErrBankNotFound
}

// Copy duplicates a bank under "<name>_copy" (suffixed further on
// collision) with fresh question snapshots.
func (r *Repository) Copy(ctx context.Context, bankID string) (*model.QuestionBank, error) {
	original, err := r.Get(ctx, bankID)
	if err != nil {
		return nil, err
	}
	return r.Add(ctx, original.Name+"_copy", model.CloneQuestions(original.Questions))
}

// Delete removes the bank and cascades its learning progress. Exam
// history cascade is the caller's concern (it owns the history store).
func (r *Repository) Delete(ctx context.Context, bankID string) error {
	banks, err := r.load(ctx)
	if err != nil {
		return err
	}

	kept := banks[:0]
	found := false
	for _, b := range banks {
		if b.ID == bankID {
			found = true
			continue
		}
		kept = append(kept, b)
	}
	if !found {
		return ErrBankNotFound
	}

	if err := r.save(ctx, kept); err != nil {
		return err
	}
	if err := r.tracker.Delete(ctx, bankID); err != nil {
		r.log.Warn().Err(err).Str("bank_id", bankID).Msg("Progress cascade failed")
	}
	return nil
}

// Stats summarizes one bank's size and progress.
func (r *Repository) Stats(ctx context.Context, bankID string) (*model.BankStats, error) {
	bank, err := r.Get(ctx, bankID)
	if err != nil {
		return nil, err
	}
	p, err := r.tracker.Get(ctx, bankID)
	if err != nil {
		return nil, err
	}

	stats := &model.BankStats{
		TotalQuestions: len(bank.Questions),
		Completed:      p.Completed,
		Correct:        p.Correct,
		Incorrect:      p.Incorrect,
		LastStudied:    p.LastStudied,
	}
	if len(bank.Questions) > 0 {
		stats.Accuracy = pct(p.Correct, len(bank.Questions))
	}
	return stats, nil
}

// OverallStats aggregates across every bank.
func (r *Repository) OverallStats(ctx context.Context) (*model.OverallStats, error) {
	banks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	all, err := r.tracker.All(ctx)
	if err != nil {
		return nil, err
	}

	out := &model.OverallStats{TotalBanks: len(banks)}
	for _, b := range banks {
		out.TotalQuestions += len(b.Questions)
		if p, ok := all[b.ID]; ok {
			out.TotalCompleted += p.Completed
			out.TotalCorrect += p.Correct
			out.TotalIncorrect += p.Incorrect
		}
	}
	out.TotalAnswered = out.TotalCorrect + out.TotalIncorrect

	if out.TotalAnswered > 0 {
		out.Accuracy = pct(out.TotalCorrect, out.TotalAnswered)
	}
	if out.TotalQuestions > 0 {
		out.CompletionRate = pct(out.TotalCompleted, out.TotalQuestions)
	}
	return out, nil
}

func (r *Repository) nameTaken(banks []model.QuestionBank, name, excludeID string) bool {
	for _, b := range banks {
		if b.Name == name && b.ID != excludeID {
			return true
		}
	}
	return false
}

func (r *Repository) load(ctx context.Context) ([]model.QuestionBank, error) {
	raw, err := r.store.Get(ctx, config.StoreKey.QuestionBanksKey())
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load banks: %w", err)
	}

	var banks []model.QuestionBank
	if err := json.Unmarshal(raw, &banks); err != nil {
		r.log.Warn().Err(err).Msg("Discarding malformed bank list")
		return nil, nil
	}
	return banks, nil
}

func (r *Repository) save(ctx context.Context, banks []model.QuestionBank) error {
	raw, err := json.Marshal(banks)
	if err != nil {
		return fmt.Errorf("marshal banks: %w", err)
	}
	if err := r.store.Set(ctx, config.StoreKey.QuestionBanksKey(), raw); err != nil {
		return fmt.Errorf("save banks: %w", err)
	}
	return nil
}

// pct rounds a ratio to one decimal percent.
func pct(part, whole int) float64 {
	return float64(int(float64(part)/float64(whole)*1000+0.5)) / 10
}

func ensureQuestionIDs(questions []model.Question) []model.Question {
	out := model.CloneQuestions(questions)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.New().String()
		}
	}
	return out
}
