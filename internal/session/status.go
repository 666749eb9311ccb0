package session

import "github.com/stemsi/mock-exam/internal/model"

// Action is the kind of event that can move a question between statuses.
type Action int

const (
	// ActionVisit is applied when the candidate lands on or leaves a question
	// without saving.
	ActionVisit Action = iota
	// ActionSave is Save & Next.
	ActionSave
	// ActionMarkForReview is Save & Mark for Review and Mark for Review & Next.
	ActionMarkForReview
	// ActionClear is Clear Response.
	ActionClear
)

func (a Action) String() string {
	switch a {
	case ActionVisit:
		return "visit"
	case ActionSave:
		return "save"
	case ActionMarkForReview:
		return "mark_for_review"
	case ActionClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Transition returns the status a question moves to when action is applied.
// It is the single place the five-state palette machine is defined.
//
// NotVisited is only left, never entered: no action returns it.
func Transition(current model.ResponseStatus, hasSelection bool, action Action) model.ResponseStatus {
	switch action {
	case ActionVisit:
		if current == model.StatusNotVisited {
			return model.StatusNotAnswered
		}
		return current
	case ActionSave:
		if hasSelection {
			return model.StatusAnswered
		}
		return model.StatusNotAnswered
	case ActionMarkForReview:
		if hasSelection {
			return model.StatusAnsweredAndMarked
		}
		return model.StatusMarkedForReview
	case ActionClear:
		return model.StatusNotAnswered
	default:
		return current
	}
}

// attempted reports whether a response counts towards scoring.
func attempted(r model.Response) bool {
	if !r.HasSelection() {
		return false
	}
	return r.Status == model.StatusAnswered || r.Status == model.StatusAnsweredAndMarked
}
