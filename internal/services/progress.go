package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-backend/internal/data/repos"
	"github.com/studybuddy/studybuddy-backend/internal/domain"
	"github.com/studybuddy/studybuddy-backend/internal/platform/apierr"
	"github.com/studybuddy/studybuddy-backend/internal/platform/dbctx"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

// RecordInput is the canonical attempt payload.
type RecordInput struct {
	DocumentID     uuid.UUID `json:"document_id"`
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedChoice string    `json:"selected_choice"`
	IsCorrect      bool      `json:"is_correct"`
}

// DocumentProgress aggregates a user's standing on one document. A question
// counts as correct only when its latest attempt is correct.
type DocumentProgress struct {
	DocumentID     uuid.UUID  `json:"document_id"`
	Filename       string     `json:"filename"`
	TotalQuestions int        `json:"total_questions"`
	Attempted      int        `json:"attempted"`
	Correct        int        `json:"correct"`
	Incorrect      int        `json:"incorrect"`
	Accuracy       float64    `json:"accuracy"`
	LastAttempt    *time.Time `json:"last_attempt,omitempty"`
}

type OverallStats struct {
	TotalAttempted int                 `json:"total_attempted"`
	TotalCorrect   int                 `json:"total_correct"`
	Accuracy       float64             `json:"accuracy"`
	Documents      []*DocumentProgress `json:"documents"`
}

type QuestionHistory struct {
	QuestionID uuid.UUID               `json:"question_id"`
	Attempts   []*domain.AnswerAttempt `json:"attempts"`
	Total      int                     `json:"total_attempts"`
	Correct    int                     `json:"correct_attempts"`
	Accuracy   float64                 `json:"accuracy"`
}

type ProgressService interface {
	Record(ctx context.Context, userID uuid.UUID, in RecordInput) (*domain.AnswerAttempt, error)
	Document(ctx context.Context, userID, documentID uuid.UUID) (*DocumentProgress, error)
	Overall(ctx context.Context, userID uuid.UUID) (*OverallStats, error)
	Question(ctx context.Context, userID, questionID uuid.UUID) (*QuestionHistory, error)
	ClearDocument(ctx context.Context, userID, documentID uuid.UUID) error
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	documents    DocumentService
	questionRepo repos.MCQQuestionRepo
	attemptRepo  repos.AnswerAttemptRepo
	documentRepo repos.StudyDocumentRepo
}

func NewProgressService(
	db *gorm.DB,
	log *logger.Logger,
	documents DocumentService,
	questionRepo repos.MCQQuestionRepo,
	attemptRepo repos.AnswerAttemptRepo,
	documentRepo repos.StudyDocumentRepo,
) ProgressService {
	return &progressService{
		db:           db,
		log:          log.With("service", "ProgressService"),
		documents:    documents,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		documentRepo: documentRepo,
	}
}

func (ps *progressService) Record(ctx context.Context, userID uuid.UUID, in RecordInput) (*domain.AnswerAttempt, error) {
	if in.SelectedChoice == "" {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidationFailed, errors.New("selected_choice required"))
	}

	if _, err := ps.documents.GetOwned(ctx, userID, in.DocumentID); err != nil {
		return nil, err
	}

	dbc := dbctx.New(ctx, nil)
	questions, err := ps.questionRepo.GetByIDs(dbc, []uuid.UUID{in.QuestionID})
	if err != nil {
		return nil, fmt.Errorf("fetch question: %w", err)
	}
	if len(questions) == 0 || questions[0].DocumentID != in.DocumentID {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeNotFound, errors.New("question not found in document"))
	}

	attempt := &domain.AnswerAttempt{
		ID:             uuid.New(),
		UserID:         userID,
		DocumentID:     in.DocumentID,
		QuestionID:     in.QuestionID,
		SelectedChoice: in.SelectedChoice,
		IsCorrect:      in.IsCorrect,
	}
	if _, err := ps.attemptRepo.Create(dbc, []*domain.AnswerAttempt{attempt}); err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}
	return attempt, nil
}

func (ps *progressService) Document(ctx context.Context, userID, documentID uuid.UUID) (*DocumentProgress, error) {
	doc, err := ps.documents.GetOwned(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	return ps.documentProgress(ctx, userID, doc)
}

func (ps *progressService) documentProgress(ctx context.Context, userID uuid.UUID, doc *domain.StudyDocument) (*DocumentProgress, error) {
	dbc := dbctx.New(ctx, nil)

	total, err := ps.questionRepo.CountByDocumentID(dbc, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}

	latest, err := ps.attemptRepo.LatestPerQuestion(dbc, userID, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}

	progress := &DocumentProgress{
		DocumentID:     doc.ID,
		Filename:       doc.Filename,
		TotalQuestions: int(total),
		Attempted:      len(latest),
	}
	for _, a := range latest {
		if a.IsCorrect {
			progress.Correct++
		}
		if progress.LastAttempt == nil || a.CreatedAt.After(*progress.LastAttempt) {
			t := a.CreatedAt
			progress.LastAttempt = &t
		}
	}
	progress.Incorrect = progress.Attempted - progress.Correct
	progress.Accuracy = roundAccuracy(progress.Correct, progress.Attempted)
	return progress, nil
}

func (ps *progressService) Overall(ctx context.Context, userID uuid.UUID) (*OverallStats, error) {
	docs, err := ps.documentRepo.ListActiveByUserID(dbctx.New(ctx, nil), userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	stats := &OverallStats{Documents: []*DocumentProgress{}}
	for _, doc := range docs {
		progress, pErr := ps.documentProgress(ctx, userID, doc)
		if pErr != nil {
			return nil, pErr
		}
		if progress.Attempted == 0 {
			continue
		}
		stats.Documents = append(stats.Documents, progress)
		stats.TotalAttempted += progress.Attempted
		stats.TotalCorrect += progress.Correct
	}
	stats.Accuracy = roundAccuracy(stats.TotalCorrect, stats.TotalAttempted)
	return stats, nil
}

func (ps *progressService) Question(ctx context.Context, userID, questionID uuid.UUID) (*QuestionHistory, error) {
	dbc := dbctx.New(ctx, nil)

	questions, err := ps.questionRepo.GetByIDs(dbc, []uuid.UUID{questionID})
	if err != nil {
		return nil, fmt.Errorf("fetch question: %w", err)
	}
	if len(questions) == 0 {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeNotFound, errors.New("question not found"))
	}
	if _, err := ps.documents.GetOwned(ctx, userID, questions[0].DocumentID); err != nil {
		return nil, err
	}

	attempts, err := ps.attemptRepo.ListByUserAndQuestion(dbc, userID, questionID)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}

	history := &QuestionHistory{
		QuestionID: questionID,
		Total:      len(attempts),
	}
	for _, a := range attempts {
		if a.IsCorrect {
			history.Correct++
		}
	}
	history.Accuracy = roundAccuracy(history.Correct, history.Total)

	// newest first
	history.Attempts = make([]*domain.AnswerAttempt, len(attempts))
	for i, a := range attempts {
		history.Attempts[len(attempts)-1-i] = a
	}
	return history, nil
}

func (ps *progressService) ClearDocument(ctx context.Context, userID, documentID uuid.UUID) error {
	doc, err := ps.documents.GetOwned(ctx, userID, documentID)
	if err != nil {
		return err
	}

	attempts, err := ps.attemptRepo.ListByUserAndDocument(dbctx.New(ctx, nil), userID, doc.ID)
	if err != nil {
		return fmt.Errorf("load attempts: %w", err)
	}
	if len(attempts) == 0 {
		return nil
	}

	return ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Where("user_id = ? AND document_id = ?", userID, doc.ID).
			Delete(&domain.AnswerAttempt{}).Error
	})
}

func roundAccuracy(correct, attempted int) float64 {
	if attempted == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(attempted)*10000) / 100
}
