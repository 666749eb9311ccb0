package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/mock-exam/internal/model"
	"github.com/stemsi/mock-exam/internal/session"
)

type staticProvider struct {
	questions []model.Question
	entered   chan struct{}
	gate      chan struct{}
}

func (p *staticProvider) Generate(context.Context, int) []model.Question {
	if p.entered != nil {
		close(p.entered)
	}
	if p.gate != nil {
		<-p.gate
	}
	out := make([]model.Question, len(p.questions))
	copy(out, p.questions)
	return out
}

type recordingSink struct {
	mu       sync.Mutex
	archived []model.ArchivedResult
	events   []model.SessionEvent
}

func (r *recordingSink) Archive(_ context.Context, a model.ArchivedResult, _ model.ExamResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.archived = append(r.archived, a)
	return nil
}

func (r *recordingSink) Publish(_ context.Context, e model.SessionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSink) archivedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.archived)
}

func (r *recordingSink) lastArchived() model.ArchivedResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.archived[len(r.archived)-1]
}

func newTestService(t *testing.T, opts ExamSessionOptions) (*ExamSessionService, *recordingSink) {
	t.Helper()
	if opts.TickInterval == 0 {
		opts.TickInterval = time.Hour
	}
	if opts.ExamName == "" {
		opts.ExamName = "UGC NET"
	}
	sink := &recordingSink{}
	svc := NewExamSessionService(&staticProvider{questions: FallbackQuestions()}, sink, opts, zerolog.Nop())
	t.Cleanup(svc.Close)
	return svc, sink
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestExamSessionStart(t *testing.T) {
	svc, _ := newTestService(t, ExamSessionOptions{})

	snap, err := svc.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !snap.Active || snap.TotalQuestions != 2 || snap.SessionID == "" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.ExamName != "UGC NET" {
		t.Errorf("exam name = %q", snap.ExamName)
	}
	if snap.RemainingSeconds != session.DurationSeconds || snap.TimeLeft != "00:20:00" {
		t.Errorf("clock = %d (%s)", snap.RemainingSeconds, snap.TimeLeft)
	}

	if _, err := svc.Start(context.Background()); !errors.Is(err, session.ErrAlreadyStarted) {
		t.Errorf("second Start err = %v, want ErrAlreadyStarted", err)
	}
}

func TestExamSessionIntents(t *testing.T) {
	svc, _ := newTestService(t, ExamSessionOptions{})

	if _, err := svc.SelectOption(0); !errors.Is(err, session.ErrNotActive) {
		t.Fatalf("SelectOption before start err = %v", err)
	}

	if _, err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.SelectOption(3); err != nil {
		t.Fatal(err)
	}
	snap, err := svc.SaveAndNext()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Position != 1 || snap.Responses[0].Status != model.StatusAnswered {
		t.Fatalf("after save and next: position %d status %s", snap.Position, snap.Responses[0].Status)
	}

	if _, err := svc.SelectOption(7); !errors.Is(err, session.ErrOptionOutOfRange) {
		t.Errorf("SelectOption(7) err = %v", err)
	}
	if _, err := svc.NavigateTo(9); !errors.Is(err, session.ErrPositionOutOfRange) {
		t.Errorf("NavigateTo(9) err = %v", err)
	}

	snap, err = svc.MarkForReviewAndNext()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Responses[1].Status != model.StatusMarkedForReview {
		t.Errorf("status = %s, want marked_for_review", snap.Responses[1].Status)
	}

	snap, err = svc.NavigateTo(0)
	if err != nil {
		t.Fatal(err)
	}
	snap, err = svc.ClearResponse()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Responses[0].Status != model.StatusNotAnswered || snap.Responses[0].SelectedOptionIndex != nil {
		t.Errorf("after clear: %+v", snap.Responses[0])
	}
}

func TestExamSessionSubmitAndResult(t *testing.T) {
	svc, sink := newTestService(t, ExamSessionOptions{})

	if _, err := svc.Result(); !errors.Is(err, session.ErrNotSubmitted) {
		t.Fatalf("Result before submit err = %v", err)
	}
	if _, err := svc.Submit(); !errors.Is(err, session.ErrNotActive) {
		t.Fatalf("Submit before start err = %v", err)
	}

	if _, err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	svc.SelectOption(3)
	svc.SaveAndNext()

	snap, err := svc.Submit()
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Submitted {
		t.Fatal("session not submitted")
	}

	res, err := svc.Result()
	if err != nil {
		t.Fatal(err)
	}
	if res.Correct != 1 || res.Unattempted != 1 || res.Score != 2 || res.Percentage != 50 {
		t.Errorf("result = %+v", res)
	}

	// Idempotent.
	if _, err := svc.Submit(); err != nil {
		t.Errorf("second Submit err = %v", err)
	}

	waitFor(t, "archive", func() bool { return sink.archivedCount() == 1 })
	if a := sink.lastArchived(); a.AutoSubmitted || a.Score != 2 {
		t.Errorf("archived = %+v", a)
	}

	if _, err := svc.SelectOption(0); !errors.Is(err, session.ErrNotActive) {
		t.Errorf("SelectOption after submit err = %v", err)
	}
}

func TestExamSessionElapse(t *testing.T) {
	svc, sink := newTestService(t, ExamSessionOptions{DurationSeconds: 5})

	if !svc.Elapse(1) {
		t.Error("Elapse on a not-started session should stop the countdown")
	}

	if _, err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	if svc.Elapse(2) {
		t.Fatal("countdown stopped early")
	}
	if got := svc.Snapshot().RemainingSeconds; got != 3 {
		t.Fatalf("remaining = %d, want 3", got)
	}

	// Overshoot is clamped at zero and submits once.
	if !svc.Elapse(10) {
		t.Fatal("countdown should stop at zero")
	}
	snap := svc.Snapshot()
	if snap.RemainingSeconds != 0 || !snap.Submitted {
		t.Fatalf("snapshot = %+v", snap)
	}

	waitFor(t, "archive", func() bool { return sink.archivedCount() == 1 })
	if !sink.lastArchived().AutoSubmitted {
		t.Error("timeout submission not flagged as auto-submitted")
	}
}

func TestExamSessionCountdownAutoSubmits(t *testing.T) {
	svc, _ := newTestService(t, ExamSessionOptions{DurationSeconds: 3, TickInterval: 5 * time.Millisecond})

	if _, err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "auto submit", func() bool { return svc.Snapshot().Submitted })

	if _, err := svc.Result(); err != nil {
		t.Errorf("Result after auto submit: %v", err)
	}
}

func TestExamSessionRestart(t *testing.T) {
	svc, _ := newTestService(t, ExamSessionOptions{DurationSeconds: 30})

	first, err := svc.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	svc.SelectOption(1)
	svc.Elapse(10)
	svc.Submit()

	snap := svc.Restart()
	if snap.Phase != model.PhaseNotStarted || snap.TotalQuestions != 0 || snap.SessionID != "" {
		t.Fatalf("after restart: %+v", snap)
	}
	if snap.RemainingSeconds != 30 {
		t.Errorf("remaining = %d, want 30", snap.RemainingSeconds)
	}
	if _, err := svc.Result(); !errors.Is(err, session.ErrNotSubmitted) {
		t.Errorf("Result after restart err = %v", err)
	}

	second, err := svc.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if second.SessionID == first.SessionID {
		t.Error("restart reused the session id")
	}
	for _, r := range second.Responses[1:] {
		if r.Status != model.StatusNotVisited {
			t.Errorf("question %d status %s after restart", r.Number, r.Status)
		}
	}
}

func TestExamSessionStartConcurrency(t *testing.T) {
	entered := make(chan struct{})
	gate := make(chan struct{})
	sink := &recordingSink{}
	svc := NewExamSessionService(
		&staticProvider{questions: FallbackQuestions(), entered: entered, gate: gate},
		sink,
		ExamSessionOptions{TickInterval: time.Hour},
		zerolog.Nop(),
	)
	t.Cleanup(svc.Close)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Start(context.Background())
		done <- err
	}()

	<-entered
	if _, err := svc.Start(context.Background()); !errors.Is(err, ErrSessionStarting) {
		t.Fatalf("Start while loading err = %v, want ErrSessionStarting", err)
	}

	// A restart while loading aborts the pending start.
	svc.Restart()
	close(gate)

	if err := <-done; !errors.Is(err, ErrStartAborted) {
		t.Fatalf("start err = %v, want ErrStartAborted", err)
	}
	if svc.Snapshot().Phase != model.PhaseNotStarted {
		t.Error("aborted start activated the session")
	}
}

func TestExamSessionSubscribe(t *testing.T) {
	svc, _ := newTestService(t, ExamSessionOptions{})

	ch, unsubscribe := svc.Subscribe()

	initial := <-ch
	if initial.Phase != model.PhaseNotStarted {
		t.Fatalf("initial phase = %s", initial.Phase)
	}

	if _, err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	svc.SelectOption(2)

	// Only the latest snapshot is kept.
	latest := <-ch
	if latest.Responses[0].SelectedOptionIndex == nil || *latest.Responses[0].SelectedOptionIndex != 2 {
		t.Errorf("latest snapshot = %+v", latest.Responses[0])
	}

	unsubscribe()
	unsubscribe()
	if _, ok := <-ch; ok {
		t.Error("channel still open after unsubscribe")
	}
}
