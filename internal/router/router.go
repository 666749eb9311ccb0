package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/mock-exam/internal/config"
	"github.com/stemsi/mock-exam/internal/handler"
	"github.com/stemsi/mock-exam/internal/middleware"
	"github.com/stemsi/mock-exam/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Exam   *handler.ExamHandler
	WS     *handler.WSHandler
	System *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// limiter guards the intent routes and may be nil.
func SetupRouter(
	handlers *Handlers,
	limiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware(log))

	// Snapshots and result reviews are repetitive JSON; compress them.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", handlers.System.Health)

	// ─── 1. Exam Group (single session, rate limited intents) ──────────
	exam := router.Group("/api/v1/exam")
	exam.Use(middleware.NoStore())
	{
		exam.GET("/state", handlers.Exam.GetState)
		exam.GET("/result", handlers.Exam.GetResult)
	}

	intents := exam.Group("")
	if limiter != nil {
		intents.Use(limiter.Middleware())
	}
	{
		intents.POST("/start", handlers.Exam.StartExam)
		intents.POST("/select", handlers.Exam.SelectOption)
		intents.POST("/navigate", handlers.Exam.Navigate)
		intents.POST("/save-next", handlers.Exam.SaveAndNext)
		intents.POST("/save-mark-review", handlers.Exam.SaveAndMarkForReview)
		intents.POST("/mark-review-next", handlers.Exam.MarkForReviewAndNext)
		intents.POST("/clear", handlers.Exam.ClearResponse)
		intents.POST("/submit", handlers.Exam.SubmitExam)
		intents.POST("/restart", handlers.Exam.RestartExam)
	}

	// ─── 2. Result archive ─────────────────────────────────────────────
	router.GET("/api/v1/results", handlers.Exam.ListResults)
	router.GET("/api/v1/results/:session_id", handlers.Exam.GetArchivedResult)

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/exam/stream", handlers.WS.ExamStream)
	}

	return router
}
