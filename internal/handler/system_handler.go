package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/mock-exam/internal/config"
	"github.com/stemsi/mock-exam/internal/response"
)

const (
	healthCheckTimeout = 2 * time.Second

	componentOK       = "ok"
	componentDown     = "down"
	componentDisabled = "disabled"
)

// SystemHandler reports process health and the state of optional backends.
type SystemHandler struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a new SystemHandler. pool and rdb may be nil.
func NewSystemHandler(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		pool:      pool,
		rdb:       rdb,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthReport struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Postgres string `json:"postgres"`
	Redis    string `json:"redis"`

	// Go Application
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	NumGC      uint32 `json:"num_gc"`
	GoVersion  string `json:"go_version"`

	// Worker Queues
	QueueResults int64 `json:"queue_results"`
}

// Health godoc
// GET /health
// The service stays usable without PostgreSQL or Redis, so a down backend
// degrades the report but never fails it.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	report := healthReport{
		Status:    "ok",
		Uptime:    formatDuration(time.Since(h.startTime)),
		Postgres:  componentDisabled,
		Redis:     componentDisabled,
		GoVersion: runtime.Version(),
	}

	if h.pool != nil {
		report.Postgres = componentOK
		if err := h.pool.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Msg("PostgreSQL health check failed")
			report.Postgres = componentDown
			report.Status = "degraded"
		}
	}

	if h.rdb != nil {
		report.Redis = componentOK
		pipe := h.rdb.Pipeline()
		pipe.Ping(ctx)
		queueCmd := pipe.LLen(ctx, config.WorkerKey.PersistResultsQueue)
		if _, err := pipe.Exec(ctx); err != nil {
			h.log.Warn().Err(err).Msg("Redis health check failed")
			report.Redis = componentDown
			report.Status = "degraded"
		} else {
			report.QueueResults, _ = queueCmd.Result()
		}
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	report.Goroutines = runtime.NumGoroutine()
	report.HeapAlloc = ms.HeapAlloc
	report.NumGC = ms.NumGC

	response.Success(c, http.StatusOK, report)
}

// ---------- Helpers ----------

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
