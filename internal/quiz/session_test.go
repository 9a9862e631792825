package quiz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newSession(t *testing.T, total int) *Session {
	t.Helper()
	s, err := NewSession(uuid.New(), uuid.New(), total)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestNewSessionRequiresQuestions(t *testing.T) {
	if _, err := NewSession(uuid.New(), uuid.New(), 0); err == nil {
		t.Fatalf("NewSession(0): want error, got nil")
	}
}

func TestSelectSubmitFlow(t *testing.T) {
	s := newSession(t, 3)
	qid := uuid.New()

	// submit before select is illegal
	if err := s.Submit(0, Result{QuestionID: qid, IsCorrect: true}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Submit before select: err=%v, want ErrInvalidTransition", err)
	}

	if err := s.Select("A"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if s.State != StateAnswerPending {
		t.Fatalf("state = %s after select", s.State)
	}

	// reselecting while pending is allowed
	if err := s.Select("B"); err != nil {
		t.Fatalf("reselect: %v", err)
	}

	if err := s.Submit(0, Result{QuestionID: qid, IsCorrect: false, CorrectAnswer: "C"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if s.State != StateAnswerRevealed {
		t.Fatalf("state = %s after submit", s.State)
	}
	if len(s.Attempts) != 1 || s.Attempts[0].SelectedChoice != "B" {
		t.Fatalf("attempts = %+v", s.Attempts)
	}

	// double submit while revealed is rejected
	if err := s.Submit(0, Result{QuestionID: qid}); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("double submit: err=%v, want ErrAlreadySubmitted", err)
	}
	// selecting after reveal is rejected
	if err := s.Select("A"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("select after reveal: err=%v, want ErrInvalidTransition", err)
	}
}

func TestNavigationResetsTransientState(t *testing.T) {
	s := newSession(t, 2)
	qid := uuid.New()

	if err := s.Select("A"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := s.Submit(0, Result{QuestionID: qid, IsCorrect: true, CorrectAnswer: "A"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if s.Index != 1 || s.State != StateInProgress {
		t.Fatalf("after Next: index=%d state=%s", s.Index, s.State)
	}
	if s.SelectedChoice != "" || s.LastResult != nil {
		t.Fatalf("transient state not reset: choice=%q result=%+v", s.SelectedChoice, s.LastResult)
	}
	// attempts survive navigation
	if len(s.Attempts) != 1 {
		t.Fatalf("attempts = %d, want 1", len(s.Attempts))
	}

	if err := s.Prev(); err != nil {
		t.Fatalf("Prev: %v", err)
	}
	if s.Index != 0 {
		t.Fatalf("after Prev: index=%d", s.Index)
	}
}

func TestNavigationBounds(t *testing.T) {
	s := newSession(t, 1)

	if err := s.Prev(); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("Prev at 0: err=%v, want ErrIndexOutOfRange", err)
	}
	if err := s.Next(); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("Next at last: err=%v, want ErrIndexOutOfRange", err)
	}
}

func TestFinishStatsLatestAttemptWins(t *testing.T) {
	s := newSession(t, 3)
	q0, q1 := uuid.New(), uuid.New()

	mustSelectSubmit := func(seq int, qid uuid.UUID, choice string, correct bool) {
		t.Helper()
		if err := s.Select(choice); err != nil {
			t.Fatalf("Select: %v", err)
		}
		if err := s.Submit(seq, Result{QuestionID: qid, IsCorrect: correct}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	mustSelectSubmit(0, q0, "A", false)
	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	mustSelectSubmit(1, q1, "B", true)

	// go back and answer q0 again, correctly this time
	if err := s.Prev(); err != nil {
		t.Fatalf("Prev: %v", err)
	}
	mustSelectSubmit(0, q0, "C", true)

	stats, err := s.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if stats.Attempted != 2 || stats.Correct != 2 || stats.Incorrect != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Accuracy != 100 {
		t.Fatalf("accuracy = %v, want 100", stats.Accuracy)
	}
	if s.State != StateComplete {
		t.Fatalf("state = %s after finish", s.State)
	}
	if _, err := s.Finish(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double finish: err=%v, want ErrInvalidTransition", err)
	}
}

func TestFinishPartialAccuracy(t *testing.T) {
	s := newSession(t, 3)

	if err := s.Select("A"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := s.Submit(0, Result{QuestionID: uuid.New(), IsCorrect: false}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := s.Select("B"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := s.Submit(1, Result{QuestionID: uuid.New(), IsCorrect: true}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	stats, err := s.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if stats.Total != 3 || stats.Attempted != 2 || stats.Correct != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Accuracy != 50 {
		t.Fatalf("accuracy = %v, want 50", stats.Accuracy)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := newMemoryStore(time.Hour)
	ctx := context.Background()

	s := newSession(t, 2)
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != s.ID || got.Total != 2 {
		t.Fatalf("Get = %+v", got)
	}

	// mutating the returned copy must not leak into the store
	got.Index = 1
	again, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get again: %v", err)
	}
	if again.Index != 0 {
		t.Fatalf("store mutated through returned copy: index=%d", again.Index)
	}

	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get after delete: err=%v, want ErrSessionNotFound", err)
	}
}
