package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/mock-exam/internal/config"
	"github.com/stemsi/mock-exam/internal/database"
	"github.com/stemsi/mock-exam/internal/generator"
	"github.com/stemsi/mock-exam/internal/handler"
	"github.com/stemsi/mock-exam/internal/logger"
	"github.com/stemsi/mock-exam/internal/middleware"
	"github.com/stemsi/mock-exam/internal/repository"
	"github.com/stemsi/mock-exam/internal/router"
	"github.com/stemsi/mock-exam/internal/service"
	"github.com/stemsi/mock-exam/internal/validator"
	"github.com/stemsi/mock-exam/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("question_source", cfg.QuestionSource).
		Msg("Starting Mock Exam server")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL (optional) ──────────────────────────────
	var pool *pgxpool.Pool
	if p, err := database.NewPostgresPool(ctx, cfg, log); err != nil {
		log.Warn().Err(err).Msg("PostgreSQL unavailable, question bank and result history disabled")
	} else {
		pool = p
		defer pool.Close()
	}

	// ─── Connect to Redis (optional) ───────────────────────────────────
	var rdb *redis.Client
	if c, err := database.NewRedisClient(ctx, cfg, log); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, results will not be archived")
	} else {
		rdb = c
		defer rdb.Close()
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	var (
		bank    service.BankSampler
		lister  service.ResultLister
		results *repository.ResultRepository
	)
	if pool != nil {
		bank = repository.NewQuestionBankRepository(pool)
		results = repository.NewResultRepository(pool)
		lister = results
	}

	// ─── Initialize Services ──────────────────────────────────────────
	var gen service.ContentGenerator
	if g, err := generator.NewClient(ctx, generator.Config{
		APIKey:  cfg.GeneratorAPIKey,
		Model:   cfg.GeneratorModel,
		BaseURL: cfg.GeneratorBaseURL,
		Timeout: cfg.GeneratorTimeout,
	}); err != nil {
		if cfg.QuestionSource == config.SourceGenerator {
			log.Warn().Err(err).Msg("Question generator unavailable, using fallback paper")
		}
	} else {
		gen = g
	}
	questionService := service.NewQuestionService(cfg.QuestionSource, cfg.ExamName, gen, bank, log)

	var (
		sink  service.ResultSink = service.NopSink{}
		cache service.ResultCache
	)
	if rdb != nil {
		redisSink := service.NewRedisResultSink(rdb)
		sink, cache = redisSink, redisSink
	}
	sessionService := service.NewExamSessionService(questionService, sink, service.ExamSessionOptions{
		ExamName:     cfg.ExamName,
		TickInterval: cfg.TickInterval,
	}, log)
	defer sessionService.Close()

	limiter := middleware.NewRateLimiter(cfg.IntentRateLimit, time.Minute)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Exam:   handler.NewExamHandler(sessionService, lister, cache),
		WS:     handler.NewWSHandler(sessionService, limiter, log, cfg.AllowedOrigins),
		System: handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	workers.Add(1)
	go func() {
		defer workers.Done()
		limiter.StartCleanup(workerCtx)
	}()

	if rdb != nil && results != nil {
		resultWorker := worker.NewResultWorker(results, rdb, log)
		workers.Add(1)
		go func() {
			defer workers.Done()
			resultWorker.Start(workerCtx)
		}()
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, limiter, cfg, log)

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

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the countdown, then let the workers drain their queues.
	sessionService.Close()
	workerCancel()

	drained := make(chan struct{})
	go func() {
		workers.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Workers did not drain in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
