package service

import (
	"context"

	"github.com/stemsi/mock-exam/internal/generator"
	"github.com/stemsi/mock-exam/internal/model"
)

// QuestionProvider produces the question paper for a new session. It never
// fails: on any error it substitutes the fallback paper.
type QuestionProvider interface {
	Generate(ctx context.Context, count int) []model.Question
}

// ContentGenerator drafts fresh questions on a remote service.
type ContentGenerator interface {
	Generate(ctx context.Context, req generator.Request) ([]generator.RawQuestion, error)
}

// BankSampler draws random questions from the stored question bank.
type BankSampler interface {
	Sample(ctx context.Context, n int) ([]model.BankQuestion, error)
}

// ResultSink receives submitted results and lifecycle events.
type ResultSink interface {
	Archive(ctx context.Context, archived model.ArchivedResult, full model.ExamResult) error
	Publish(ctx context.Context, event model.SessionEvent) error
}

// ResultCache reads the full result of a recently submitted session.
type ResultCache interface {
	Lookup(ctx context.Context, sessionID string) (model.ExamResult, error)
}

// ResultLister reads archived results.
type ResultLister interface {
	ListRecent(ctx context.Context, limit int) ([]model.ArchivedResult, error)
}

// NopSink drops everything. Used when Redis is not available.
type NopSink struct{}

func (NopSink) Archive(context.Context, model.ArchivedResult, model.ExamResult) error { return nil }
func (NopSink) Publish(context.Context, model.SessionEvent) error { return nil }
