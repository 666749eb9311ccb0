package model

// ResponseStatus enumerates the per-question palette states.
type ResponseStatus string

const (
	StatusNotVisited        ResponseStatus = "not_visited"
	StatusNotAnswered       ResponseStatus = "not_answered"
	StatusAnswered          ResponseStatus = "answered"
	StatusMarkedForReview   ResponseStatus = "marked_for_review"
	StatusAnsweredAndMarked ResponseStatus = "answered_and_marked"
)

// AllStatuses lists every status in palette legend order.
var AllStatuses = []ResponseStatus{
	StatusAnswered,
	StatusNotAnswered,
	StatusNotVisited,
	StatusMarkedForReview,
	StatusAnsweredAndMarked,
}

// Response is the candidate's mutable answer record for one question.
type Response struct {
	QuestionID          int            `json:"question_id"`
	SelectedOptionIndex *int           `json:"selected_option_index"`
	Status              ResponseStatus `json:"status"`
}

// HasSelection reports whether an option is currently selected.
func (r Response) HasSelection() bool {
	return r.SelectedOptionIndex != nil
}

// ResponseView is a response as rendered in the question palette.
type ResponseView struct {
	QuestionID          int            `json:"question_id"`
	Number              int            `json:"number"`
	SelectedOptionIndex *int           `json:"selected_option_index"`
	Status              ResponseStatus `json:"status"`
}
