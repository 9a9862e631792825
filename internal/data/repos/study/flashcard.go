package study

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-backend/internal/domain"
	"github.com/studybuddy/studybuddy-backend/internal/platform/dbctx"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

type FlashcardRepo interface {
	Create(dbc dbctx.Context, cards []*domain.Flashcard) ([]*domain.Flashcard, error)
	ListByDocumentID(dbc dbctx.Context, docID uuid.UUID) ([]*domain.Flashcard, error)
	CountByDocumentID(dbc dbctx.Context, docID uuid.UUID) (int64, error)
	FullDeleteByDocumentIDs(dbc dbctx.Context, docIDs []uuid.UUID) error
}

type flashcardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlashcardRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardRepo {
	repoLog := baseLog.With("repo", "FlashcardRepo")
	return &flashcardRepo{db: db, log: repoLog}
}

func (r *flashcardRepo) Create(dbc dbctx.Context, cards []*domain.Flashcard) ([]*domain.Flashcard, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(cards) == 0 {
		return []*domain.Flashcard{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *flashcardRepo) ListByDocumentID(dbc dbctx.Context, docID uuid.UUID) ([]*domain.Flashcard, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.Flashcard
	if err := transaction.WithContext(dbc.Ctx).
		Where("document_id = ?", docID).
		Order("seq ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *flashcardRepo) CountByDocumentID(dbc dbctx.Context, docID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&domain.Flashcard{}).
		Where("document_id = ?", docID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *flashcardRepo) FullDeleteByDocumentIDs(dbc dbctx.Context, docIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(docIDs) == 0 {
		return nil
	}

	return transaction.WithContext(dbc.Ctx).
		Unscoped().
		Where("document_id IN ?", docIDs).
		Delete(&domain.Flashcard{}).Error
}
