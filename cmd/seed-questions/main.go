package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/stemsi/mock-exam/internal/config"
	"github.com/stemsi/mock-exam/internal/database"
	"github.com/stemsi/mock-exam/internal/logger"
	"github.com/stemsi/mock-exam/internal/repository"
)

func main() {
	var file string
	flag.StringVar(&file, "file", "data/questions.yaml", "Question bank file (.json, .yaml or .yml)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	questions, err := loadQuestions(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to load question bank file")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	repo := repository.NewQuestionBankRepository(pool)

	fmt.Printf("=== Seeding %d questions from %s ===\n", len(questions), file)

	inserted, err := repo.InsertMany(ctx, questions)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to insert questions")
	}

	total, err := repo.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count question bank")
	}

	fmt.Printf("\nSeed completed! Added %d/%d questions (%d skipped as duplicates). Bank now holds %d.\n",
		inserted, len(questions), len(questions)-inserted, total)
}
