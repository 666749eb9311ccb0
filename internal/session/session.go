package session

import (
	"errors"
	"fmt"

	"github.com/stemsi/mock-exam/internal/model"
)

const (
	QuestionCount      = 20
	DurationSeconds    = 20 * 60
	PointsPerCorrect   = 2
	OptionsPerQuestion = 4
)

var (
	ErrNoQuestions        = errors.New("session needs at least one question")
	ErrAlreadyStarted     = errors.New("session already started")
	ErrNotActive          = errors.New("session is not active")
	ErrNotSubmitted       = errors.New("session is not submitted")
	ErrOptionOutOfRange   = errors.New("option index out of range")
	ErrPositionOutOfRange = errors.New("position out of range")
)

// Session is the exam aggregate. The zero value is not usable; call New.
//
// A Session is not safe for concurrent use. Callers serialize every
// operation, including Tick, through a single gate.
type Session struct {
	questions []model.Question
	responses map[int]*model.Response
	position  int
	remaining int
	phase     model.SessionPhase
	duration  int
}

// New returns a not-started session with the standard exam duration.
func New() *Session {
	return NewWithDuration(DurationSeconds)
}

// NewWithDuration returns a not-started session whose countdown starts at
// durationSeconds.
func NewWithDuration(durationSeconds int) *Session {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	return &Session{
		remaining: durationSeconds,
		phase:     model.PhaseNotStarted,
		duration:  durationSeconds,
	}
}

// Start loads the question paper and activates the session. The first
// question counts as opened, so it enters as NotAnswered.
func (s *Session) Start(questions []model.Question) error {
	if s.phase != model.PhaseNotStarted {
		return ErrAlreadyStarted
	}
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	qs := make([]model.Question, len(questions))
	copy(qs, questions)

	responses := make(map[int]*model.Response, len(qs))
	for _, q := range qs {
		if _, dup := responses[q.ID]; dup {
			return fmt.Errorf("duplicate question id %d", q.ID)
		}
		responses[q.ID] = &model.Response{
			QuestionID: q.ID,
			Status:     model.StatusNotVisited,
		}
	}

	s.questions = qs
	s.responses = responses
	s.position = 0
	s.remaining = s.duration
	s.phase = model.PhaseActive
	s.visit(0)
	return nil
}

// SelectOption records index as the current question's selection. Status is
// only updated by a save action.
func (s *Session) SelectOption(index int) error {
	if !s.Active() {
		return ErrNotActive
	}
	if index < 0 || index >= OptionsPerQuestion {
		return ErrOptionOutOfRange
	}
	r := s.current()
	r.SelectedOptionIndex = &index
	return nil
}

// NavigateTo leaves the current question without saving and opens target.
func (s *Session) NavigateTo(target int) error {
	if !s.Active() {
		return ErrNotActive
	}
	if target < 0 || target >= len(s.questions) {
		return ErrPositionOutOfRange
	}
	s.visit(s.position)
	s.position = target
	s.visit(target)
	return nil
}

// SaveAndNext saves the current question and moves on.
func (s *Session) SaveAndNext() error {
	return s.saveAndAdvance(ActionSave)
}

// SaveAndMarkForReview saves the current question with a review mark and moves on.
func (s *Session) SaveAndMarkForReview() error {
	return s.saveAndAdvance(ActionMarkForReview)
}

// MarkForReviewAndNext behaves exactly like SaveAndMarkForReview. Both
// buttons exist on the exam screen, so both names are kept.
func (s *Session) MarkForReviewAndNext() error {
	return s.saveAndAdvance(ActionMarkForReview)
}

// ClearResponse drops the selection and any review mark on the current question.
func (s *Session) ClearResponse() error {
	if !s.Active() {
		return ErrNotActive
	}
	r := s.current()
	r.SelectedOptionIndex = nil
	r.Status = Transition(r.Status, false, ActionClear)
	return nil
}

// Tick consumes one second of exam time. It reports whether this tick ran
// the clock out and submitted the session. Ticks on an inactive session or
// an exhausted clock are ignored.
func (s *Session) Tick() bool {
	if !s.Active() || s.remaining <= 0 {
		return false
	}
	s.remaining--
	if s.remaining == 0 {
		s.Submit()
		return true
	}
	return false
}

// Submit ends the exam. Calling it again is a no-op, as is calling it on a
// session that never started.
func (s *Session) Submit() {
	if s.phase != model.PhaseActive {
		return
	}
	s.phase = model.PhaseSubmitted
}

// Restart throws the paper and answers away and returns to not-started.
func (s *Session) Restart() {
	s.questions = nil
	s.responses = nil
	s.position = 0
	s.remaining = s.duration
	s.phase = model.PhaseNotStarted
}

func (s *Session) saveAndAdvance(action Action) error {
	if !s.Active() {
		return ErrNotActive
	}
	r := s.current()
	r.Status = Transition(r.Status, r.HasSelection(), action)
	if s.position+1 < len(s.questions) {
		s.position++
	}
	s.visit(s.position)
	return nil
}

func (s *Session) visit(position int) {
	r := s.responses[s.questions[position].ID]
	r.Status = Transition(r.Status, r.HasSelection(), ActionVisit)
}

func (s *Session) current() *model.Response {
	return s.responses[s.questions[s.position].ID]
}

func (s *Session) Phase() model.SessionPhase { return s.phase }
func (s *Session) Active() bool              { return s.phase == model.PhaseActive }
func (s *Session) Submitted() bool           { return s.phase == model.PhaseSubmitted }
func (s *Session) Position() int             { return s.position }
func (s *Session) RemainingSeconds() int     { return s.remaining }
func (s *Session) Len() int                  { return len(s.questions) }

// Questions returns a copy of the question paper.
func (s *Session) Questions() []model.Question {
	out := make([]model.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Response returns a copy of the response for questionID.
func (s *Session) Response(questionID int) (model.Response, bool) {
	r, ok := s.responses[questionID]
	if !ok {
		return model.Response{}, false
	}
	return copyResponse(*r), true
}

// StatusCounts tallies responses per status. The counts always sum to Len().
func (s *Session) StatusCounts() map[model.ResponseStatus]int {
	counts := make(map[model.ResponseStatus]int, len(model.AllStatuses))
	for _, st := range model.AllStatuses {
		counts[st] = 0
	}
	for _, r := range s.responses {
		counts[r.Status]++
	}
	return counts
}

// Snapshot renders the session for the presentation layer.
func (s *Session) Snapshot() model.SessionSnapshot {
	snap := model.SessionSnapshot{
		Phase:            s.phase,
		Active:           s.Active(),
		Submitted:        s.Submitted(),
		Position:         s.position,
		TotalQuestions:   len(s.questions),
		RemainingSeconds: s.remaining,
		TimeLeft:         FormatClock(s.remaining),
		Responses:        make([]model.ResponseView, 0, len(s.questions)),
		StatusCounts:     s.StatusCounts(),
	}
	if len(s.questions) == 0 {
		return snap
	}

	q := s.questions[s.position]
	snap.QuestionNumber = s.position + 1
	snap.CurrentQuestion = &model.QuestionForCandidate{
		ID:      q.ID,
		Number:  s.position + 1,
		Text:    q.Text,
		Options: append([]string(nil), q.Options...),
		Topic:   q.Topic,
	}
	for i, q := range s.questions {
		r := copyResponse(*s.responses[q.ID])
		snap.Responses = append(snap.Responses, model.ResponseView{
			QuestionID:          q.ID,
			Number:              i + 1,
			SelectedOptionIndex: r.SelectedOptionIndex,
			Status:              r.Status,
		})
	}
	return snap
}

// FormatClock renders seconds as HH:MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

func copyResponse(r model.Response) model.Response {
	if r.SelectedOptionIndex != nil {
		idx := *r.SelectedOptionIndex
		r.SelectedOptionIndex = &idx
	}
	return r
}
