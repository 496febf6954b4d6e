// Package persist serializes sessions and exam history into the
// key-value Store. It is the only place that knows the stored layout;
// the session core never touches storage.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiku/quizbank-backend/internal/config"
	"github.com/studiku/quizbank-backend/internal/model"
	"github.com/studiku/quizbank-backend/internal/session"
	"github.com/studiku/quizbank-backend/internal/store"
)

// sessionRecord is the stored session schema. Sets are explicit sorted
// slices (the store has no native set type) and times are epoch millis.
type sessionRecord struct {
	Kind            session.Kind                    `json:"kind"`
	Config          session.Config                  `json:"config"`
	Questions       []model.Question                `json:"questions"`
	CurrentIndex    int                             `json:"current_index"`
	Answers         map[int]string                  `json:"answers"`
	Results         map[int]*session.ResultEntry    `json:"results"`
	MarkedQuestions []int                           `json:"marked_questions"`
	ViewedAnswers   []int                           `json:"viewed_answers,omitempty"`
	StartTime       int64                           `json:"start_time"`
	DurationMs      int64                           `json:"duration_ms"`
	Submitted       bool                            `json:"submitted"`
	CompletedAt     *int64                          `json:"completed_at,omitempty"`
}

// Adapter saves and restores sessions through the Store. Writes are
// fire-and-forget from the session's perspective: a failed save is
// logged here and never propagates as a session error.
type Adapter struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewAdapter creates a session persistence adapter.
func NewAdapter(st store.Store, log zerolog.Logger) *Adapter {
	return &Adapter{
		store: st,
		log:   log.With().Str("component", "persist_adapter").Logger(),
		now:   time.Now,
	}
}

// WithClock overrides the adapter's time source (expiry checks on load).
func (a *Adapter) WithClock(now func() time.Time) *Adapter {
	a.now = now
	return a
}

// Save serializes the full session under its kind-specific key.
func (a *Adapter) Save(ctx context.Context, s *session.Session) error {
	rec := sessionRecord{
		Kind:            s.Kind(),
		Config:          s.Config,
		Questions:       s.Questions,
		CurrentIndex:    s.CurrentIndex,
		Answers:         s.Answers,
		Results:         s.Results,
		MarkedQuestions: s.MarkedList(),
		StartTime:       s.StartTime.UnixMilli(),
		DurationMs:      s.Duration.Milliseconds(),
		Submitted:       s.Submitted,
	}
	if s.Kind() == session.KindLearning {
		rec.ViewedAnswers = s.ViewedList()
	}
	if s.CompletedAt != nil {
		ms := s.CompletedAt.UnixMilli()
		rec.CompletedAt = &ms
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	key := config.StoreKey.SessionKey(string(s.Kind()))
	if err := a.store.Set(ctx, key, raw); err != nil {
		a.log.Warn().Err(err).Str("key", key).Msg("Session save failed")
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load restores the stored session of the given kind. It returns
// (nil, nil), no session but not an error, when the key is absent, the
// payload is malformed, or the record is stale (already submitted, or
// an expired exam). Stale and corrupt records are proactively cleared
// so they never resurface.
func (a *Adapter) Load(ctx context.Context, kind session.Kind, opts ...session.Option) (*session.Session, error) {
	key := config.StoreKey.SessionKey(string(kind))

	raw, err := a.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		a.log.Warn().Err(err).Str("key", key).Msg("Discarding malformed session record")
		a.clear(ctx, key)
		return nil, nil
	}

	if rec.Submitted || len(rec.Questions) == 0 {
		a.log.Debug().Str("key", key).Msg("Discarding stale session record")
		a.clear(ctx, key)
		return nil, nil
	}

	s := &session.Session{
		Config:       rec.Config,
		Questions:    rec.Questions,
		CurrentIndex: rec.CurrentIndex,
		Answers:      rec.Answers,
		Results:      rec.Results,
		Marked:       toSet(rec.MarkedQuestions),
		Viewed:       toSet(rec.ViewedAnswers),
		StartTime:    time.UnixMilli(rec.StartTime),
		Duration:     time.Duration(rec.DurationMs) * time.Millisecond,
	}
	// The adapter's clock drives the expiry check below unless the
	// caller injects its own.
	s.Restore(append([]session.Option{session.WithClock(a.now)}, opts...)...)

	if s.IsExpired() {
		a.log.Info().Str("key", key).Msg("Discarding expired exam session")
		a.clear(ctx, key)
		return nil, nil
	}

	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		s.CurrentIndex = 0
	}

	return s, nil
}

// Clear removes the stored session of the given kind.
func (a *Adapter) Clear(ctx context.Context, kind session.Kind) error {
	return a.store.Remove(ctx, config.StoreKey.SessionKey(string(kind)))
}

func (a *Adapter) clear(ctx context.Context, key string) {
	if err := a.store.Remove(ctx, key); err != nil {
		a.log.Warn().Err(err).Str("key", key).Msg("Failed to clear stale session key")
	}
}

func toSet(indexes []int) map[int]struct{} {
	set := make(map[int]struct{}, len(indexes))
	for _, i := range indexes {
		set[i] = struct{}{}
	}
	return set
}
