package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/mock-exam/internal/model"
	"github.com/stemsi/mock-exam/internal/session"
	"github.com/stemsi/mock-exam/internal/worker"
)

var (
	// ErrSessionStarting is returned while a question paper is still loading.
	ErrSessionStarting = errors.New("session is starting")
	// ErrStartAborted is returned when a restart lands while a paper loads.
	ErrStartAborted = errors.New("session start aborted by restart")
)

const (
	EventStarted   = "session_started"
	EventSubmitted = "session_submitted"
	EventRestarted = "session_restarted"

	ReasonManual  = "manual"
	ReasonTimeout = "timeout"

	sinkTimeout = 5 * time.Second
)

// ExamSessionOptions tunes an ExamSessionService.
type ExamSessionOptions struct {
	ExamName        string
	TickInterval    time.Duration
	DurationSeconds int
}

// ExamSessionService owns the single exam session. Every intent, including
// the countdown tick, runs under one lock so that each observer sees a
// consistent snapshot.
type ExamSessionService struct {
	mu        sync.Mutex
	sess      *session.Session
	sessionID string
	starting  bool
	epoch     uint64
	clock     uint64
	result    *model.ExamResult
	stopClock context.CancelFunc

	opts      ExamSessionOptions
	questions QuestionProvider
	sink      ResultSink
	log       zerolog.Logger

	listeners map[int]chan model.SessionSnapshot
	nextID    int
}

// NewExamSessionService creates a new ExamSessionService. A nil sink drops
// results and events.
func NewExamSessionService(questions QuestionProvider, sink ResultSink, opts ExamSessionOptions, log zerolog.Logger) *ExamSessionService {
	if sink == nil {
		sink = NopSink{}
	}
	if opts.DurationSeconds <= 0 {
		opts.DurationSeconds = session.DurationSeconds
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	return &ExamSessionService{
		sess:      session.NewWithDuration(opts.DurationSeconds),
		opts:      opts,
		questions: questions,
		sink:      sink,
		log:       log.With().Str("component", "exam_session_service").Logger(),
		listeners: make(map[int]chan model.SessionSnapshot),
	}
}

// Start loads a fresh paper and begins the countdown. The provider runs
// outside the lock; a restart in the meantime cancels the start.
func (s *ExamSessionService) Start(ctx context.Context) (model.SessionSnapshot, error) {
	s.mu.Lock()
	if s.starting {
		s.mu.Unlock()
		return model.SessionSnapshot{}, ErrSessionStarting
	}
	if s.sess.Phase() != model.PhaseNotStarted {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, session.ErrAlreadyStarted
	}
	s.starting = true
	epoch := s.epoch
	s.mu.Unlock()

	questions := s.questions.Generate(ctx, session.QuestionCount)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.starting = false

	if epoch != s.epoch {
		return s.snapshotLocked(), ErrStartAborted
	}
	if err := s.sess.Start(questions); err != nil {
		return s.snapshotLocked(), err
	}

	s.sessionID = uuid.NewString()
	s.result = nil

	s.clock++
	clock := s.clock
	clockCtx, cancel := context.WithCancel(context.Background())
	s.stopClock = cancel
	elapse := func(n int) bool { return s.elapse(clock, n) }
	go worker.NewCountdown(s.opts.TickInterval, elapse, s.log).Start(clockCtx)

	s.log.Info().
		Str("session_id", s.sessionID).
		Int("questions", s.sess.Len()).
		Int("remaining", s.sess.RemainingSeconds()).
		Msg("Exam session started")

	s.publish(model.SessionEvent{Type: EventStarted, SessionID: s.sessionID, At: time.Now()})
	snap := s.snapshotLocked()
	s.notifyLocked(snap)
	return snap, nil
}

// SelectOption records a tentative choice on the current question.
func (s *ExamSessionService) SelectOption(index int) (model.SessionSnapshot, error) {
	return s.mutate(func(sess *session.Session) error { return sess.SelectOption(index) })
}

// NavigateTo jumps to any question.
func (s *ExamSessionService) NavigateTo(position int) (model.SessionSnapshot, error) {
	return s.mutate(func(sess *session.Session) error { return sess.NavigateTo(position) })
}

// SaveAndNext commits the current choice and advances.
func (s *ExamSessionService) SaveAndNext() (model.SessionSnapshot, error) {
	return s.mutate((*session.Session).SaveAndNext)
}

// SaveAndMarkForReview commits the current choice flagged for review.
func (s *ExamSessionService) SaveAndMarkForReview() (model.SessionSnapshot, error) {
	return s.mutate((*session.Session).SaveAndMarkForReview)
}

// MarkForReviewAndNext flags the current question and advances.
func (s *ExamSessionService) MarkForReviewAndNext() (model.SessionSnapshot, error) {
	return s.mutate((*session.Session).MarkForReviewAndNext)
}

// ClearResponse drops the choice on the current question.
func (s *ExamSessionService) ClearResponse() (model.SessionSnapshot, error) {
	return s.mutate((*session.Session).ClearResponse)
}

// Submit ends the exam and scores it. Submitting twice is harmless.
func (s *ExamSessionService) Submit() (model.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.sess.Phase() {
	case model.PhaseSubmitted:
		return s.snapshotLocked(), nil
	case model.PhaseNotStarted:
		return s.snapshotLocked(), session.ErrNotActive
	}

	s.sess.Submit()
	s.finalizeLocked(ReasonManual)
	snap := s.snapshotLocked()
	s.notifyLocked(snap)
	return snap, nil
}

// Elapse consumes n seconds of exam time. It reports true once the session
// is no longer active, which stops the countdown.
func (s *ExamSessionService) Elapse(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapseLocked(n)
}

// elapse is the countdown's entry point. A countdown left over from an
// earlier session must not tick the current one.
func (s *ExamSessionService) elapse(clock uint64, n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if clock != s.clock {
		return true
	}
	return s.elapseLocked(n)
}

func (s *ExamSessionService) elapseLocked(n int) bool {
	if !s.sess.Active() {
		return true
	}
	for i := 0; i < n; i++ {
		if s.sess.Tick() {
			s.finalizeLocked(ReasonTimeout)
			break
		}
	}
	s.notifyLocked(s.snapshotLocked())
	return !s.sess.Active()
}

// Restart discards the session and returns to not-started.
func (s *ExamSessionService) Restart() model.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelClockLocked()
	prev := s.sessionID
	s.sess.Restart()
	s.epoch++
	s.sessionID = ""
	s.result = nil

	s.log.Info().Str("session_id", prev).Msg("Exam session restarted")
	s.publish(model.SessionEvent{Type: EventRestarted, SessionID: prev, At: time.Now()})

	snap := s.snapshotLocked()
	s.notifyLocked(snap)
	return snap
}

// Snapshot returns the current observable state.
func (s *ExamSessionService) Snapshot() model.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Result returns the scored result of the submitted session.
func (s *ExamSessionService) Result() (model.ExamResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return model.ExamResult{}, session.ErrNotSubmitted
	}
	res := *s.result
	res.Review = append([]model.QuestionReview(nil), s.result.Review...)
	return res, nil
}

// Subscribe registers an observer. The channel always holds the latest
// snapshot; stale ones are dropped. Call the returned func to unsubscribe.
func (s *ExamSessionService) Subscribe() (<-chan model.SessionSnapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan model.SessionSnapshot, 1)
	ch <- s.snapshotLocked()
	s.listeners[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
			close(ch)
		})
	}
}

// Close stops the countdown.
func (s *ExamSessionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelClockLocked()
}

func (s *ExamSessionService) mutate(fn func(*session.Session) error) (model.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.sess); err != nil {
		return s.snapshotLocked(), err
	}
	snap := s.snapshotLocked()
	s.notifyLocked(snap)
	return snap, nil
}

// finalizeLocked scores a freshly submitted session and hands the result
// to the sink.
func (s *ExamSessionService) finalizeLocked(reason string) {
	s.cancelClockLocked()

	res, err := session.Score(s.sess)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to score submitted session")
		return
	}
	s.result = &res

	now := time.Now()
	archived := model.ArchivedResult{
		ID:            uuid.NewString(),
		SessionID:     s.sessionID,
		ExamName:      s.opts.ExamName,
		Correct:       res.Correct,
		Incorrect:     res.Incorrect,
		Unattempted:   res.Unattempted,
		Total:         res.Total,
		Score:         res.Score,
		Percentage:    res.Percentage,
		AutoSubmitted: reason == ReasonTimeout,
		SubmittedAt:   now,
	}

	s.log.Info().
		Str("session_id", s.sessionID).
		Str("reason", reason).
		Int("score", res.Score).
		Int("percentage", res.Percentage).
		Msg("Exam session submitted")

	score := res.Score
	event := model.SessionEvent{Type: EventSubmitted, SessionID: s.sessionID, Reason: reason, Score: &score, At: now}
	full := res
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		defer cancel()
		if err := s.sink.Archive(ctx, archived, full); err != nil {
			s.log.Error().Err(err).Str("session_id", archived.SessionID).Msg("Failed to archive result")
		}
		if err := s.sink.Publish(ctx, event); err != nil {
			s.log.Warn().Err(err).Msg("Failed to publish session event")
		}
	}()
}

func (s *ExamSessionService) publish(event model.SessionEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		defer cancel()
		if err := s.sink.Publish(ctx, event); err != nil {
			s.log.Warn().Err(err).Str("type", event.Type).Msg("Failed to publish session event")
		}
	}()
}

func (s *ExamSessionService) cancelClockLocked() {
	if s.stopClock != nil {
		s.stopClock()
		s.stopClock = nil
	}
}

func (s *ExamSessionService) snapshotLocked() model.SessionSnapshot {
	snap := s.sess.Snapshot()
	snap.SessionID = s.sessionID
	snap.ExamName = s.opts.ExamName
	return snap
}

func (s *ExamSessionService) notifyLocked(snap model.SessionSnapshot) {
	for _, ch := range s.listeners {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
