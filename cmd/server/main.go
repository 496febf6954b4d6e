package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiku/quizbank-backend/internal/bank"
	"github.com/studiku/quizbank-backend/internal/config"
	"github.com/studiku/quizbank-backend/internal/handler"
	"github.com/studiku/quizbank-backend/internal/logger"
	"github.com/studiku/quizbank-backend/internal/persist"
	"github.com/studiku/quizbank-backend/internal/progress"
	"github.com/studiku/quizbank-backend/internal/router"
	"github.com/studiku/quizbank-backend/internal/selector"
	"github.com/studiku/quizbank-backend/internal/service"
	"github.com/studiku/quizbank-backend/internal/store"
	"github.com/studiku/quizbank-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreBackend).
		Msg("Starting Quizbank Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Store ────────────────────────────────────────────────────
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to open store")
	}
	defer st.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	tracker := progress.NewTracker(st, log)
	banks := bank.NewRepository(st, tracker, log)
	settings := bank.NewSettingsStore(st, log)
	adapter := persist.NewAdapter(st, log)
	history := persist.NewHistory(st, cfg.HistoryLimit, log)

	// ─── Initialize Services ──────────────────────────────────────────
	sessionService := service.NewSessionService(banks, tracker, adapter, history, selector.New(nil), log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Bank:    handler.NewBankHandler(banks, tracker, history),
		Session: handler.NewSessionHandler(sessionService),
		History: handler.NewHistoryHandler(history),
		Setting: handler.NewSettingHandler(settings),
		WS:      handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// openStore selects the persistence backend from config.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case "redis":
		return store.OpenRedis(ctx, cfg.RedisURL, log)
	case "memory":
		log.Warn().Msg("Using in-memory store; all data is lost on exit")
		return store.NewMemory(), nil
	default:
		return store.OpenSQLite(cfg.SQLitePath, log)
	}
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
