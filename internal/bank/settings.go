package bank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/studiku/quizbank-backend/internal/config"
	"github.com/studiku/quizbank-backend/internal/model"
	"github.com/studiku/quizbank-backend/internal/store"
)

// SettingsStore persists the application settings blob. Absent or
// corrupt settings fall back to defaults.
type SettingsStore struct {
	store store.Store
	log   zerolog.Logger
}

// NewSettingsStore creates the settings accessor.
func NewSettingsStore(st store.Store, log zerolog.Logger) *SettingsStore {
	return &SettingsStore{
		store: st,
		log:   log.With().Str("component", "settings_store").Logger(),
	}
}

// Get returns the stored settings, or defaults when nothing usable is
// stored.
func (s *SettingsStore) Get(ctx context.Context) (model.Settings, error) {
	raw, err := s.store.Get(ctx, config.StoreKey.SettingsKey())
	if errors.Is(err, store.ErrNotFound) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	var settings model.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.log.Warn().Err(err).Msg("Discarding malformed settings")
		return model.DefaultSettings(), nil
	}
	return settings, nil
}

// Put replaces the stored settings.
func (s *SettingsStore) Put(ctx context.Context, settings model.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.store.Set(ctx, config.StoreKey.SettingsKey(), raw); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
