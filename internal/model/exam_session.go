package model

// SessionPhase is the lifecycle state of the exam session.
type SessionPhase string

const (
	PhaseNotStarted SessionPhase = "not_started"
	PhaseActive     SessionPhase = "active"
	PhaseSubmitted  SessionPhase = "submitted"
)

// SessionSnapshot is the read-only view of the session handed to the
// presentation layer after every transition.
type SessionSnapshot struct {
	SessionID        string                 `json:"session_id,omitempty"`
	ExamName         string                 `json:"exam_name,omitempty"`
	Phase            SessionPhase           `json:"phase"`
	Active           bool                   `json:"active"`
	Submitted        bool                   `json:"submitted"`
	Position         int                    `json:"position"`
	QuestionNumber   int                    `json:"question_number"`
	TotalQuestions   int                    `json:"total_questions"`
	RemainingSeconds int                    `json:"remaining_seconds"`
	TimeLeft         string                 `json:"time_left"`
	CurrentQuestion  *QuestionForCandidate  `json:"current_question,omitempty"`
	Responses        []ResponseView         `json:"responses"`
	StatusCounts     map[ResponseStatus]int `json:"status_counts"`
}

// SelectOptionRequest is the payload for selecting an option on the current question.
type SelectOptionRequest struct {
	OptionIndex *int `json:"option_index" binding:"required,min=0,max=3"`
}

// NavigateRequest is the payload for jumping to a question from the palette.
type NavigateRequest struct {
	Position *int `json:"position" binding:"required,min=0"`
}
