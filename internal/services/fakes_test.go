package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-backend/internal/domain"
	"github.com/studybuddy/studybuddy-backend/internal/platform/apierr"
	"github.com/studybuddy/studybuddy-backend/internal/platform/dbctx"
)

// fakeDocuments serves a single canned document.
type fakeDocuments struct {
	doc   *domain.StudyDocument
	pages []string
}

func (f *fakeDocuments) Upload(ctx context.Context, userID uuid.UUID, filename, mimeType string, data []byte) (*domain.StudyDocument, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDocuments) List(ctx context.Context, userID uuid.UUID) ([]*DocumentSummary, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDocuments) GetByFilename(ctx context.Context, userID uuid.UUID, filename string) (*domain.StudyDocument, error) {
	if f.doc != nil && f.doc.UserID == userID && f.doc.Filename == filename {
		return f.doc, nil
	}
	return nil, apierr.New(http.StatusNotFound, apierr.CodeNotFound, errors.New("document not found"))
}

func (f *fakeDocuments) GetOwned(ctx context.Context, userID, documentID uuid.UUID) (*domain.StudyDocument, error) {
	if f.doc != nil && f.doc.UserID == userID && f.doc.ID == documentID {
		return f.doc, nil
	}
	return nil, apierr.New(http.StatusNotFound, apierr.CodeNotFound, errors.New("document not found"))
}

func (f *fakeDocuments) FileBytes(ctx context.Context, userID uuid.UUID, filename string) ([]byte, string, error) {
	return nil, "", errors.New("not implemented")
}

func (f *fakeDocuments) Delete(ctx context.Context, userID, documentID uuid.UUID) error {
	return errors.New("not implemented")
}

func (f *fakeDocuments) Pages(doc *domain.StudyDocument) ([]string, error) {
	return f.pages, nil
}

// fakeQuestionRepo keeps questions in a slice, appended in insertion order.
type fakeQuestionRepo struct {
	mu        sync.Mutex
	questions []*domain.MCQQuestion
	wipes     int
}

func (f *fakeQuestionRepo) Create(dbc dbctx.Context, questions []*domain.MCQQuestion) ([]*domain.MCQQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions = append(f.questions, questions...)
	return questions, nil
}

func (f *fakeQuestionRepo) GetByIDs(dbc dbctx.Context, questionIDs []uuid.UUID) ([]*domain.MCQQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.MCQQuestion
	for _, q := range f.questions {
		for _, id := range questionIDs {
			if q.ID == id {
				out = append(out, q)
			}
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) GetByDocumentAndSeq(dbc dbctx.Context, docID uuid.UUID, seq int) (*domain.MCQQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.questions {
		if q.DocumentID == docID && q.Seq == seq {
			return q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQuestionRepo) ListByDocumentID(dbc dbctx.Context, docID uuid.UUID) ([]*domain.MCQQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.MCQQuestion
	for _, q := range f.questions {
		if q.DocumentID == docID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) CountByDocumentID(dbc dbctx.Context, docID uuid.UUID) (int64, error) {
	qs, _ := f.ListByDocumentID(dbc, docID)
	return int64(len(qs)), nil
}

func (f *fakeQuestionRepo) MaxSeqByDocumentID(dbc dbctx.Context, docID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	maxSeq := -1
	for _, q := range f.questions {
		if q.DocumentID == docID && q.Seq > maxSeq {
			maxSeq = q.Seq
		}
	}
	return maxSeq, nil
}

func (f *fakeQuestionRepo) FullDeleteByDocumentIDs(dbc dbctx.Context, docIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wipes++
	kept := f.questions[:0]
	for _, q := range f.questions {
		match := false
		for _, id := range docIDs {
			if q.DocumentID == id {
				match = true
				break
			}
		}
		if !match {
			kept = append(kept, q)
		}
	}
	f.questions = kept
	return nil
}

// fakeLLM replies with a fixed payload and records what it was asked.
type fakeLLM struct {
	mu       sync.Mutex
	payload  string
	calls    int
	lastUser string
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, system, user string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastUser = user
	return json.RawMessage(f.payload), nil
}

func mustChoicesJSON(choices []domain.Choice) []byte {
	raw, err := json.Marshal(choices)
	if err != nil {
		panic(err)
	}
	return raw
}
