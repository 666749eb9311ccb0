package model

import "time"

// Outcome classifies a single question after submission.
type Outcome string

const (
	OutcomeCorrect     Outcome = "correct"
	OutcomeIncorrect   Outcome = "incorrect"
	OutcomeUnattempted Outcome = "unattempted"
)

// PerformanceBand is the coarse verdict shown next to the score chart.
type PerformanceBand string

const (
	BandExcellent      PerformanceBand = "excellent"
	BandGood           PerformanceBand = "good"
	BandKeepPracticing PerformanceBand = "keep_practicing"
)

// QuestionReview is one row of the question-wise analysis.
type QuestionReview struct {
	QuestionID          int            `json:"question_id"`
	Number              int            `json:"number"`
	Text                string         `json:"text"`
	Topic               string         `json:"topic"`
	Options             []string       `json:"options"`
	SelectedOptionIndex *int           `json:"selected_option_index"`
	YourAnswer          string         `json:"your_answer"`
	CorrectAnswerIndex  int            `json:"correct_answer_index"`
	CorrectAnswer       string         `json:"correct_answer"`
	Explanation         string         `json:"explanation"`
	Status              ResponseStatus `json:"status"`
	Outcome             Outcome        `json:"outcome"`
}

// ExamResult is the scored summary of a submitted session.
type ExamResult struct {
	Correct     int              `json:"correct"`
	Incorrect   int              `json:"incorrect"`
	Unattempted int              `json:"unattempted"`
	Total       int              `json:"total"`
	Score       int              `json:"score"`
	MaxScore    int              `json:"max_score"`
	Percentage  int              `json:"percentage"`
	Band        PerformanceBand  `json:"band"`
	Message     string           `json:"message"`
	Review      []QuestionReview `json:"review"`
}

// ArchivedResult is the audit record written to PostgreSQL after submission.
type ArchivedResult struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	ExamName      string    `json:"exam_name"`
	Correct       int       `json:"correct"`
	Incorrect     int       `json:"incorrect"`
	Unattempted   int       `json:"unattempted"`
	Total         int       `json:"total"`
	Score         int       `json:"score"`
	Percentage    int       `json:"percentage"`
	AutoSubmitted bool      `json:"auto_submitted"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// SessionEvent is published on the events channel for external monitors.
type SessionEvent struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Reason    string    `json:"reason,omitempty"`
	Score     *int      `json:"score,omitempty"`
	At        time.Time `json:"at"`
}
