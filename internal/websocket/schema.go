package websocket

import "github.com/stemsi/mock-exam/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelect         Action = "select"
	ActionNavigate       Action = "navigate"
	ActionSaveNext       Action = "save_next"
	ActionSaveMarkReview Action = "save_mark_review"
	ActionMarkReviewNext Action = "mark_review_next"
	ActionClear          Action = "clear"
	ActionSubmit         Action = "submit"
	ActionPing           Action = "ping"
)

// RequestPayload is every client message. Only select and navigate carry
// an argument.
type RequestPayload struct {
	Action      Action `json:"action"`
	OptionIndex *int   `json:"option_index,omitempty"`
	Position    *int   `json:"position,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState  Event = "state"
	EventResult Event = "result"
	EventError  Event = "error"
	EventPong   Event = "pong"
)

// StateResponse carries the latest snapshot. Sent on connect, after every
// intent and on every countdown tick.
type StateResponse struct {
	Event Event                 `json:"event"`
	State model.SessionSnapshot `json:"state"`
}

// ResultResponse is sent once per submitted session.
type ResultResponse struct {
	Event  Event            `json:"event"`
	Result model.ExamResult `json:"result"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
