package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/mock-exam/internal/model"
)

// QuestionBankRepository handles access to the pre-authored question bank.
type QuestionBankRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionBankRepository creates a new QuestionBankRepository.
func NewQuestionBankRepository(pool *pgxpool.Pool) *QuestionBankRepository {
	return &QuestionBankRepository{pool: pool}
}

// Sample returns up to n random questions from the bank.
func (r *QuestionBankRepository) Sample(ctx context.Context, n int) ([]model.BankQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, text, options, correct_index, topic, explanation, created_at
		 FROM question_bank
		 ORDER BY random()
		 LIMIT $1`, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.BankQuestion
	for rows.Next() {
		var q model.BankQuestion
		if err := rows.Scan(&q.ID, &q.Text, &q.Options, &q.CorrectAnswerIndex, &q.Topic, &q.Explanation, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Count returns the number of questions in the bank.
func (r *QuestionBankRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM question_bank`).Scan(&n)
	return n, err
}

// InsertMany adds questions in a single transaction. Rows whose stem already
// exists are skipped. Returns the number of inserted rows.
func (r *QuestionBankRepository) InsertMany(ctx context.Context, questions []model.BankQuestion) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, q := range questions {
		batch.Queue(
			`INSERT INTO question_bank (text, options, correct_index, topic, explanation)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (text) DO NOTHING`,
			q.Text, q.Options, q.CorrectAnswerIndex, q.Topic, q.Explanation,
		)
	}

	br := tx.SendBatch(ctx, batch)
	inserted := 0
	for range questions {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return 0, err
		}
		inserted += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}
