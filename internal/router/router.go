package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/studiku/quizbank-backend/internal/config"
	"github.com/studiku/quizbank-backend/internal/handler"
	"github.com/studiku/quizbank-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Bank    *handler.BankHandler
	Session *handler.SessionHandler
	History *handler.HistoryHandler
	Setting *handler.SettingHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── Banks ─────────────────────────────────────────────────────────
	api := router.Group("/api/v1")
	{
		api.GET("/stats", handlers.Bank.GetOverallStats)

		banks := api.Group("/banks")
		{
			banks.GET("", handlers.Bank.ListBanks)
			banks.POST("", handlers.Bank.CreateBank)
			banks.GET("/:bank_id", handlers.Bank.GetBank)
			banks.PUT("/:bank_id", handlers.Bank.UpdateBank)
			banks.DELETE("/:bank_id", handlers.Bank.DeleteBank)
			banks.PATCH("/:bank_id/name", handlers.Bank.RenameBank)
			banks.POST("/:bank_id/copy", handlers.Bank.CopyBank)
			banks.GET("/:bank_id/stats", handlers.Bank.GetBankStats)
			banks.GET("/:bank_id/progress", handlers.Bank.GetBankProgress)
			banks.DELETE("/:bank_id/progress", handlers.Bank.ResetBankProgress)
		}

		// ─── Sessions ──────────────────────────────────────────────────
		sessions := api.Group("/sessions")
		{
			sessions.POST("/exam", handlers.Session.StartExam)
			sessions.POST("/learning", handlers.Session.StartLearning)
			sessions.POST("/learning/reveal", handlers.Session.Reveal)
			sessions.GET("/:kind", handlers.Session.GetSession)
			sessions.DELETE("/:kind", handlers.Session.ExitSession)
			sessions.POST("/:kind/answer", handlers.Session.Answer)
			sessions.POST("/:kind/navigate", handlers.Session.Navigate)
			sessions.POST("/:kind/jump", handlers.Session.Jump)
			sessions.POST("/:kind/mark", handlers.Session.Mark)
			sessions.POST("/:kind/submit", handlers.Session.SubmitSession)
			sessions.GET("/:kind/result", handlers.Session.GetResult)
		}

		// ─── History & Settings ────────────────────────────────────────
		api.GET("/history", handlers.History.ListRecords)
		api.GET("/settings", handlers.Setting.GetSettings)
		api.PUT("/settings", handlers.Setting.UpdateSettings)
	}

	// ─── WebSocket ─────────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/exam/countdown", handlers.WS.CountdownStream)
	}

	return router
}
