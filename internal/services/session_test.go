package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/studybuddy/studybuddy-backend/internal/domain"
	"github.com/studybuddy/studybuddy-backend/internal/quiz"
)

// fakeQuizService hands back one canned question and records which document
// it was asked for.
type fakeQuizService struct {
	mu            sync.Mutex
	question      *QuestionView
	result        *ValidateResult
	gotDocumentID uuid.UUID
}

func (f *fakeQuizService) QuestionCount(ctx context.Context, userID uuid.UUID, filename string) (int64, error) {
	return int64(f.question.Total), nil
}

func (f *fakeQuizService) QuestionByIndex(ctx context.Context, userID uuid.UUID, filename string, index int) (*QuestionView, error) {
	return f.question, nil
}

func (f *fakeQuizService) QuestionAt(ctx context.Context, userID, documentID uuid.UUID, index int) (*QuestionView, error) {
	f.mu.Lock()
	f.gotDocumentID = documentID
	f.mu.Unlock()
	return f.question, nil
}

func (f *fakeQuizService) ListQuestions(ctx context.Context, userID uuid.UUID, filename string) ([]*QuestionView, error) {
	return []*QuestionView{f.question}, nil
}

func (f *fakeQuizService) ValidateAnswer(ctx context.Context, userID, questionID uuid.UUID, selectedChoice string) (*ValidateResult, error) {
	return f.result, nil
}

type fakeProgress struct {
	mu      sync.Mutex
	records int
}

func (f *fakeProgress) Record(ctx context.Context, userID uuid.UUID, in RecordInput) (*domain.AnswerAttempt, error) {
	f.mu.Lock()
	f.records++
	f.mu.Unlock()
	return &domain.AnswerAttempt{}, nil
}

func (f *fakeProgress) Document(ctx context.Context, userID, documentID uuid.UUID) (*DocumentProgress, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProgress) Overall(ctx context.Context, userID uuid.UUID) (*OverallStats, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProgress) Question(ctx context.Context, userID, questionID uuid.UUID) (*QuestionHistory, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProgress) ClearDocument(ctx context.Context, userID, documentID uuid.UUID) error {
	return errors.New("not implemented")
}

// Submit must grade against the session's own document, not whatever
// document currently answers to the same filename.
func TestSubmitResolvesQuestionsBySessionDocument(t *testing.T) {
	log := promptLogger(t)
	userID := uuid.New()
	docID := uuid.New()
	questionID := uuid.New()

	fq := &fakeQuizService{
		question: &QuestionView{ID: questionID, Total: 1},
		result: &ValidateResult{
			QuestionID:    questionID,
			IsCorrect:     true,
			CorrectAnswer: "B",
			DocumentID:    docID,
		},
	}
	store := quiz.NewStore(log, nil)
	svc := NewSessionService(log, store, fq, &fakeDocuments{}, &fakeProgress{})

	session, err := quiz.NewSession(userID, docID, 1)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	ctx := context.Background()
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := svc.Select(ctx, userID, session.ID, "B"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	view, err := svc.Submit(ctx, userID, session.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	fq.mu.Lock()
	got := fq.gotDocumentID
	fq.mu.Unlock()
	if got != docID {
		t.Fatalf("questions resolved for document %s, want %s", got, docID)
	}
	if view.Session.State != quiz.StateAnswerRevealed {
		t.Fatalf("state = %s", view.Session.State)
	}
	if view.Session.LastResult == nil || !view.Session.LastResult.IsCorrect {
		t.Fatalf("last result = %+v", view.Session.LastResult)
	}
}
