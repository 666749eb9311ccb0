package session

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stemsi/mock-exam/internal/model"
)

func TestScoreFallbackScenario(t *testing.T) {
	s := started(t, fallbackPaper())

	_ = s.SelectOption(1)
	_ = s.SaveAndNext()
	_ = s.SelectOption(1)
	_ = s.SaveAndMarkForReview()
	s.Submit()

	if got := status(t, s, 1); got != model.StatusAnswered {
		t.Errorf("Q1 = %s, want answered", got)
	}
	if got := status(t, s, 2); got != model.StatusAnsweredAndMarked {
		t.Errorf("Q2 = %s, want answered_and_marked", got)
	}

	res, err := Score(s)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.Correct != 1 || res.Incorrect != 1 || res.Unattempted != 0 {
		t.Errorf("correct/incorrect/unattempted = %d/%d/%d, want 1/1/0", res.Correct, res.Incorrect, res.Unattempted)
	}
	if res.Score != 2 || res.Percentage != 50 {
		t.Errorf("score=%d percentage=%d, want 2 and 50", res.Score, res.Percentage)
	}
	if res.Band != model.BandGood {
		t.Errorf("band = %s, want good", res.Band)
	}
	if res.Review[0].YourAnswer != "Running" || res.Review[0].CorrectAnswer != "Archived" {
		t.Errorf("review[0] = %+v", res.Review[0])
	}
}

func TestScoreCountsOnlySavedAnswers(t *testing.T) {
	tests := []struct {
		name    string
		drive   func(s *Session)
		outcome model.Outcome
	}{
		{
			name:    "selected but never saved",
			drive:   func(s *Session) { _ = s.SelectOption(0) },
			outcome: model.OutcomeUnattempted,
		},
		{
			name: "marked for review without selection",
			drive: func(s *Session) {
				_ = s.MarkForReviewAndNext()
			},
			outcome: model.OutcomeUnattempted,
		},
		{
			name: "selected after marking, not saved again",
			drive: func(s *Session) {
				_ = s.MarkForReviewAndNext()
				_ = s.NavigateTo(0)
				_ = s.SelectOption(0)
			},
			outcome: model.OutcomeUnattempted,
		},
		{
			name: "saved correct",
			drive: func(s *Session) {
				_ = s.SelectOption(0)
				_ = s.SaveAndNext()
			},
			outcome: model.OutcomeCorrect,
		},
		{
			name: "answered and marked counts",
			drive: func(s *Session) {
				_ = s.SelectOption(0)
				_ = s.SaveAndMarkForReview()
			},
			outcome: model.OutcomeCorrect,
		},
		{
			name: "saved wrong",
			drive: func(s *Session) {
				_ = s.SelectOption(2)
				_ = s.SaveAndNext()
			},
			outcome: model.OutcomeIncorrect,
		},
		{
			name: "cleared after saving",
			drive: func(s *Session) {
				_ = s.SelectOption(0)
				_ = s.SaveAndNext()
				_ = s.NavigateTo(0)
				_ = s.ClearResponse()
			},
			outcome: model.OutcomeUnattempted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := started(t, paper(2))
			tt.drive(s)
			s.Submit()

			res, err := Score(s)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if got := res.Review[0].Outcome; got != tt.outcome {
				t.Fatalf("outcome = %s, want %s", got, tt.outcome)
			}
			if res.Correct+res.Incorrect+res.Unattempted != res.Total {
				t.Fatalf("counts do not add up: %+v", res)
			}
		})
	}
}

func TestScoreIsPure(t *testing.T) {
	s := started(t, paper(QuestionCount))
	for i := 0; i < QuestionCount; i++ {
		_ = s.SelectOption(i % 3)
		if i%2 == 0 {
			_ = s.SaveAndNext()
		} else {
			_ = s.SaveAndMarkForReview()
		}
	}
	s.Submit()

	a, err := Score(s)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	b, _ := Score(s)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("scoring the same session twice gave different results")
	}
	if a.MaxScore != QuestionCount*PointsPerCorrect {
		t.Fatalf("max score = %d", a.MaxScore)
	}
}

func TestScoreRequiresSubmission(t *testing.T) {
	s := started(t, paper(2))
	if _, err := Score(s); !errors.Is(err, ErrNotSubmitted) {
		t.Fatalf("Score on active session = %v, want ErrNotSubmitted", err)
	}
}

func TestPercentageAndBand(t *testing.T) {
	tests := []struct {
		correct, total int
		pct            int
		band           model.PerformanceBand
	}{
		{0, 20, 0, model.BandKeepPracticing},
		{7, 20, 35, model.BandKeepPracticing},
		{8, 20, 40, model.BandGood},
		{1, 3, 33, model.BandKeepPracticing},
		{2, 3, 67, model.BandExcellent},
		{1, 8, 13, model.BandKeepPracticing},
		{20, 20, 100, model.BandExcellent},
		{0, 0, 0, model.BandKeepPracticing},
	}
	for _, tt := range tests {
		pct := Percentage(tt.correct, tt.total)
		if pct != tt.pct {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.correct, tt.total, pct, tt.pct)
		}
		if band := BandFor(pct); band != tt.band {
			t.Errorf("BandFor(%d) = %s, want %s", pct, band, tt.band)
		}
	}
}
