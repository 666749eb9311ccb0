package session

import (
	"math"

	"github.com/stemsi/mock-exam/internal/model"
)

const notAttempted = "Not Attempted"

var bandMessages = map[model.PerformanceBand]string{
	model.BandExcellent:      "Excellent work! You have a good grasp of the core concepts.",
	model.BandGood:           "Good effort. Review the incorrect answers to improve your score.",
	model.BandKeepPracticing: "Keep practicing. Focus on the topics where you faced difficulty.",
}

// Score grades a submitted session. A question is attempted only when it was
// saved as Answered or AnsweredAndMarked with a selection present; there is
// no partial credit and no negative marking.
func Score(s *Session) (model.ExamResult, error) {
	if !s.Submitted() {
		return model.ExamResult{}, ErrNotSubmitted
	}

	res := model.ExamResult{
		Total:  len(s.questions),
		Review: make([]model.QuestionReview, 0, len(s.questions)),
	}

	for i, q := range s.questions {
		r := copyResponse(*s.responses[q.ID])

		review := model.QuestionReview{
			QuestionID:          q.ID,
			Number:              i + 1,
			Text:                q.Text,
			Topic:               q.Topic,
			Options:             append([]string(nil), q.Options...),
			SelectedOptionIndex: r.SelectedOptionIndex,
			YourAnswer:          notAttempted,
			CorrectAnswerIndex:  q.CorrectAnswerIndex,
			CorrectAnswer:       optionText(q, q.CorrectAnswerIndex),
			Explanation:         q.Explanation,
			Status:              r.Status,
		}
		if r.HasSelection() {
			review.YourAnswer = optionText(q, *r.SelectedOptionIndex)
		}

		switch {
		case attempted(r) && *r.SelectedOptionIndex == q.CorrectAnswerIndex:
			res.Correct++
			review.Outcome = model.OutcomeCorrect
		case attempted(r):
			res.Incorrect++
			review.Outcome = model.OutcomeIncorrect
		default:
			res.Unattempted++
			review.Outcome = model.OutcomeUnattempted
		}
		res.Review = append(res.Review, review)
	}

	res.Score = res.Correct * PointsPerCorrect
	res.MaxScore = res.Total * PointsPerCorrect
	res.Percentage = Percentage(res.Correct, res.Total)
	res.Band = BandFor(res.Percentage)
	res.Message = bandMessages[res.Band]
	return res, nil
}

// Percentage returns round(correct / total * 100), or 0 for an empty paper.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// BandFor maps a percentage to its performance band.
func BandFor(percentage int) model.PerformanceBand {
	switch {
	case percentage >= 60:
		return model.BandExcellent
	case percentage >= 40:
		return model.BandGood
	default:
		return model.BandKeepPracticing
	}
}

func optionText(q model.Question, idx int) string {
	if idx < 0 || idx >= len(q.Options) {
		return ""
	}
	return q.Options[idx]
}
