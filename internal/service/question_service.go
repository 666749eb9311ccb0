package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/mock-exam/internal/config"
	"github.com/stemsi/mock-exam/internal/generator"
	"github.com/stemsi/mock-exam/internal/model"
	"github.com/stemsi/mock-exam/internal/session"
)

// Question content errors. Any of them makes the whole batch unusable.
var (
	ErrNoSource        = errors.New("question source not configured")
	ErrEmptyStem       = errors.New("question has an empty stem")
	ErrBadOptionCount  = errors.New("question does not have exactly 4 options")
	ErrBadCorrectIndex = errors.New("correct answer index out of range")
	ErrNoContent       = errors.New("question source returned nothing")
)

const generationStyleHint = `"Previous Year Question" style (conceptual, analytical, and some numerical)`

var fallbackQuestions = []model.Question{
	{
		Text:               "Which of the following is NOT a valid state in the Process Control Block (PCB) lifecycle?",
		Options:            []string{"New", "Running", "Waiting", "Archived"},
		CorrectAnswerIndex: 3,
		Topic:              "Operating Systems",
		Explanation:        "Standard process states include New, Ready, Running, Waiting, and Terminated. 'Archived' is not a standard process state.",
	},
	{
		Text:               "In the context of Relational Database, which normal form deals with partial dependency?",
		Options:            []string{"First Normal Form (1NF)", "Second Normal Form (2NF)", "Third Normal Form (3NF)", "Boyce-Codd Normal Form (BCNF)"},
		CorrectAnswerIndex: 1,
		Topic:              "Relational Database Design and SQL",
		Explanation:        "2NF eliminates partial dependencies, ensuring that non-key attributes are fully dependent on the primary key.",
	},
}

// FallbackQuestions returns a fresh copy of the fixed paper used whenever
// content generation fails.
func FallbackQuestions() []model.Question {
	out := make([]model.Question, len(fallbackQuestions))
	for i, q := range fallbackQuestions {
		q.ID = i + 1
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

// QuestionService is the question provider. It pulls a paper from the
// configured source and falls back to the fixed paper on any failure.
type QuestionService struct {
	source   string
	examName string
	gen      ContentGenerator
	bank     BankSampler
	log      zerolog.Logger
}

// NewQuestionService creates a new QuestionService. gen and bank may be nil
// when the matching source is not in use.
func NewQuestionService(source, examName string, gen ContentGenerator, bank BankSampler, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		source:   source,
		examName: examName,
		gen:      gen,
		bank:     bank,
		log:      log.With().Str("component", "question_service").Logger(),
	}
}

// Generate returns an ordered paper of at most count questions with ids 1..n.
func (s *QuestionService) Generate(ctx context.Context, count int) []model.Question {
	if count <= 0 {
		count = session.QuestionCount
	}

	questions, err := s.fetch(ctx, count)
	if err != nil {
		s.log.Warn().Err(err).Str("source", s.source).Msg("Question generation failed, using fallback paper")
		return FallbackQuestions()
	}

	if len(questions) > count {
		questions = questions[:count]
	}
	for i := range questions {
		questions[i].ID = i + 1
	}

	s.log.Info().Str("source", s.source).Int("count", len(questions)).Msg("Question paper generated")
	return questions
}

func (s *QuestionService) fetch(ctx context.Context, count int) ([]model.Question, error) {
	switch s.source {
	case config.SourceGenerator:
		return s.fromGenerator(ctx, count)
	case config.SourceBank:
		return s.fromBank(ctx, count)
	case config.SourceFallback:
		return FallbackQuestions(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrNoSource, s.source)
	}
}

func (s *QuestionService) fromGenerator(ctx context.Context, count int) ([]model.Question, error) {
	if s.gen == nil {
		return nil, ErrNoSource
	}

	raw, err := s.gen.Generate(ctx, generator.Request{
		Exam:   s.examName,
		Count:  count,
		Topics: model.Topics,
		Style:  generationStyleHint,
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNoContent
	}

	out := make([]model.Question, 0, len(raw))
	for i, r := range raw {
		if r.CorrectAnswerIndex == nil {
			return nil, fmt.Errorf("question %d: %w", i+1, ErrBadCorrectIndex)
		}
		q := model.Question{
			Text:               strings.TrimSpace(r.Text),
			Options:            r.Options,
			CorrectAnswerIndex: *r.CorrectAnswerIndex,
			Topic:              r.Topic,
			Explanation:        r.Explanation,
		}
		if err := ValidateQuestion(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *QuestionService) fromBank(ctx context.Context, count int) ([]model.Question, error) {
	if s.bank == nil {
		return nil, ErrNoSource
	}

	rows, err := s.bank.Sample(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("sample bank: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoContent
	}

	out := make([]model.Question, 0, len(rows))
	for _, r := range rows {
		q := model.Question{
			Text:               strings.TrimSpace(r.Text),
			Options:            r.Options,
			CorrectAnswerIndex: r.CorrectAnswerIndex,
			Topic:              r.Topic,
			Explanation:        r.Explanation,
		}
		if err := ValidateQuestion(q); err != nil {
			return nil, fmt.Errorf("bank question %d: %w", r.ID, err)
		}
		out = append(out, q)
	}
	return out, nil
}

// ValidateQuestion checks the shape the session store relies on.
func ValidateQuestion(q model.Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return ErrEmptyStem
	}
	if len(q.Options) != session.OptionsPerQuestion {
		return ErrBadOptionCount
	}
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= session.OptionsPerQuestion {
		return ErrBadCorrectIndex
	}
	return nil
}
