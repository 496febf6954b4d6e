package persist

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
	"github.com/studiku/quizbank-backend/internal/store"
)

// History stores the exam record list, newest first, capped at limit.
type History struct {
	store store.Store
	limit int
	log   zerolog.Logger
}

// NewHistory creates the exam history accessor. Non-positive limits
// fall back to 10.
func NewHistory(st store.Store, limit int, log zerolog.Logger) *History {
	if limit <= 0 {
		limit = 10
	}
	return &History{
		store: st,
		limit: limit,
		log:   log.With().Str("component", "history").Logger(),
	}
}

// Append prepends a record, assigns its ID and date, and drops entries
// past the cap. Returns the stored record.
func (h *History) Append(ctx context.Context, rec model.ExamRecord) (model.ExamRecord, error) {
	records, err := h.load(ctx)
	if err != nil {
		return model.ExamRecord{}, err
	}

	rec.ID = uuid.New().String()
	if rec.CompletedTime == 0 {
		rec.CompletedTime = time.Now().UnixMilli()
	}

	records = append([]model.ExamRecord{rec}, records...)
	if len(records) > h.limit {
		records = records[:h.limit]
	}

	if err := h.save(ctx, records); err != nil {
		return model.ExamRecord{}, err
	}
	return rec, nil
}

// List returns records newest first, optionally filtered by bank.
func (h *History) List(ctx context.Context, bankID string) ([]model.ExamRecord, error) {
	records, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	if bankID == "" {
		return records, nil
	}

	filtered := make([]model.ExamRecord, 0, len(records))
	for _, r := range records {
		if r.BankID == bankID {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// DeleteByBank drops every record belonging to the bank, as part of
// bank deletion cascade.
func (h *History) DeleteByBank(ctx context.Context, bankID string) error {
	records, err := h.load(ctx)
	if err != nil {
		return err
	}

	kept := records[:0]
	for _, r := range records {
		if r.BankID != bankID {
			kept = append(kept, r)
		}
	}
	return h.save(ctx, kept)
}

func (h *History) load(ctx context.Context) ([]model.ExamRecord, error) {
	raw, err := h.store.Get(ctx, config.StoreKey.ExamRecordsKey())
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load exam records: %w", err)
	}

	var records []model.ExamRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		// Corrupt history is dropped, not fatal.
		h.log.Warn().Err(err).Msg("Discarding malformed exam records")
		return nil, nil
	}
	return records, nil
}

func (h *History) save(ctx context.Context, records []model.ExamRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal exam records: %w", err)
	}
	if err := h.store.Set(ctx, config.StoreKey.ExamRecordsKey(), raw); err != nil {
		return fmt.Errorf("save exam records: %w", err)
	}
	return nil
}
