package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/mock-exam/internal/config"
	"github.com/stemsi/mock-exam/internal/model"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultStore persists archived results.
type ResultStore interface {
	BulkInsert(ctx context.Context, results []model.ArchivedResult) error
	Insert(ctx context.Context, res model.ArchivedResult) error
}

// ResultWorker drains the result queue into PostgreSQL in batches.
type ResultWorker struct {
	store   ResultStore
	rdb     *redis.Client
	requeue func(ctx context.Context, raw []byte) error
	log     zerolog.Logger
}

func NewResultWorker(store ResultStore, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	w := &ResultWorker{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "result_worker").Logger(),
	}
	w.requeue = func(ctx context.Context, raw []byte) error {
		return rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err()
	}
	return w
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]model.ArchivedResult, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var res model.ArchivedResult
			if err := json.Unmarshal([]byte(item[1]), &res); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, res)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with per-row fallback
// ----------------------------------------------------------------

func (w *ResultWorker) flushSafe(ctx context.Context, batch []model.ArchivedResult) {
	if len(batch) == 0 {
		return
	}

	if err := w.store.BulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("size", len(batch)).Msg("bulk result insert failed, using fallback")

		for _, res := range batch {
			if err := w.store.Insert(ctx, res); err != nil {
				w.log.Error().Err(err).Str("session_id", res.SessionID).Msg("single insert failed, requeueing")
				raw, _ := json.Marshal(res)
				if err := w.requeue(ctx, raw); err != nil {
					w.log.Error().Err(err).Str("session_id", res.SessionID).Msg("requeue failed, result dropped")
				}
			}
		}
		return
	}

	w.log.Debug().Int("size", len(batch)).Msg("Results archived")
}
