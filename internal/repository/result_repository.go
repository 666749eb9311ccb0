package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/mock-exam/internal/model"
)

// ResultRepository handles the archive of submitted exam results.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// BulkInsert writes a batch of results with one statement. Results already
// archived (same id) are ignored so requeued payloads stay idempotent.
func (r *ResultRepository) BulkInsert(ctx context.Context, results []model.ArchivedResult) error {
	n := len(results)

	ids := make([]uuid.UUID, 0, n)
	sessionIDs := make([]string, 0, n)
	examNames := make([]string, 0, n)
	correct := make([]int, 0, n)
	incorrect := make([]int, 0, n)
	unattempted := make([]int, 0, n)
	totals := make([]int, 0, n)
	scores := make([]int, 0, n)
	percentages := make([]int, 0, n)
	autoSubmitted := make([]bool, 0, n)
	submittedAts := make([]time.Time, 0, n)

	for _, res := range results {
		id, err := uuid.Parse(res.ID)
		if err != nil {
			return err
		}
		ids = append(ids, id)
		sessionIDs = append(sessionIDs, res.SessionID)
		examNames = append(examNames, res.ExamName)
		correct = append(correct, res.Correct)
		incorrect = append(incorrect, res.Incorrect)
		unattempted = append(unattempted, res.Unattempted)
		totals = append(totals, res.Total)
		scores = append(scores, res.Score)
		percentages = append(percentages, res.Percentage)
		autoSubmitted = append(autoSubmitted, res.AutoSubmitted)
		submittedAts = append(submittedAts, res.SubmittedAt)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO exam_results (
			id, session_id, exam_name, correct, incorrect, unattempted,
			total, score, percentage, auto_submitted, submitted_at
		)
		SELECT * FROM UNNEST(
			$1::uuid[], $2::text[], $3::text[], $4::int[], $5::int[], $6::int[],
			$7::int[], $8::int[], $9::int[], $10::bool[], $11::timestamptz[]
		)
		ON CONFLICT (id) DO NOTHING`,
		ids, sessionIDs, examNames, correct, incorrect, unattempted,
		totals, scores, percentages, autoSubmitted, submittedAts,
	)
	return err
}

// Insert writes a single result.
func (r *ResultRepository) Insert(ctx context.Context, res model.ArchivedResult) error {
	id, err := uuid.Parse(res.ID)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO exam_results (
			id, session_id, exam_name, correct, incorrect, unattempted,
			total, score, percentage, auto_submitted, submitted_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO NOTHING`,
		id, res.SessionID, res.ExamName, res.Correct, res.Incorrect, res.Unattempted,
		res.Total, res.Score, res.Percentage, res.AutoSubmitted, res.SubmittedAt,
	)
	return err
}

// ListRecent returns the latest archived results, newest first.
func (r *ResultRepository) ListRecent(ctx context.Context, limit int) ([]model.ArchivedResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, exam_name, correct, incorrect, unattempted,
		        total, score, percentage, auto_submitted, submitted_at
		 FROM exam_results
		 ORDER BY submitted_at DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ArchivedResult
	for rows.Next() {
		var (
			res model.ArchivedResult
			id  uuid.UUID
		)
		if err := rows.Scan(&id, &res.SessionID, &res.ExamName, &res.Correct, &res.Incorrect, &res.Unattempted,
			&res.Total, &res.Score, &res.Percentage, &res.AutoSubmitted, &res.SubmittedAt); err != nil {
			return nil, err
		}
		res.ID = id.String()
		results = append(results, res)
	}
	return results, rows.Err()
}
