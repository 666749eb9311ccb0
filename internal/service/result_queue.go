package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/mock-exam/internal/config"
	"github.com/stemsi/mock-exam/internal/model"
)

// ErrResultNotFound is returned when a session result is unknown or expired.
var ErrResultNotFound = errors.New("result not found")

// ResultTTL bounds how long a full result stays readable in Redis.
const ResultTTL = 24 * time.Hour

// RedisResultSink queues results for the archive worker and broadcasts
// session events.
type RedisResultSink struct {
	rdb *redis.Client
}

// NewRedisResultSink creates a new RedisResultSink.
func NewRedisResultSink(rdb *redis.Client) *RedisResultSink {
	return &RedisResultSink{rdb: rdb}
}

// Archive caches the full result and enqueues the summary for persistence.
func (q *RedisResultSink) Archive(ctx context.Context, archived model.ArchivedResult, full model.ExamResult) error {
	summary, err := json.Marshal(archived)
	if err != nil {
		return fmt.Errorf("marshal archived result: %w", err)
	}
	detail, err := json.Marshal(full)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	pipe := q.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.ResultKey(archived.SessionID), detail, ResultTTL)
	pipe.RPush(ctx, config.WorkerKey.PersistResultsQueue, summary)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("queue result: %w", err)
	}
	return nil
}

// Lookup returns the full result cached by Archive for sessionID.
func (q *RedisResultSink) Lookup(ctx context.Context, sessionID string) (model.ExamResult, error) {
	var res model.ExamResult

	raw, err := q.rdb.Get(ctx, config.CacheKey.ResultKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return res, ErrResultNotFound
	}
	if err != nil {
		return res, fmt.Errorf("get result: %w", err)
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return res, fmt.Errorf("unmarshal result: %w", err)
	}
	return res, nil
}

// Publish sends an event on the exam events channel.
func (q *RedisResultSink) Publish(ctx context.Context, event model.SessionEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return q.rdb.Publish(ctx, config.CacheKey.ExamEventsChannel(), raw).Err()
}
