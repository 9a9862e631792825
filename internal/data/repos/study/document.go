package study

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-backend/internal/domain"
	"github.com/studybuddy/studybuddy-backend/internal/platform/dbctx"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

type StudyDocumentRepo interface {
	Create(dbc dbctx.Context, docs []*domain.StudyDocument) ([]*domain.StudyDocument, error)
	GetByIDs(dbc dbctx.Context, docIDs []uuid.UUID) ([]*domain.StudyDocument, error)
	GetActiveByUserAndFilename(dbc dbctx.Context, userID uuid.UUID, filename string) (*domain.StudyDocument, error)
	ListActiveByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*domain.StudyDocument, error)
	UpdateSummary(dbc dbctx.Context, docID uuid.UUID, summary string, keyConcepts datatypes.JSON) error
	Deactivate(dbc dbctx.Context, docID uuid.UUID) error
	SoftDeleteByIDs(dbc dbctx.Context, docIDs []uuid.UUID) error
}

type studyDocumentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudyDocumentRepo(db *gorm.DB, baseLog *logger.Logger) StudyDocumentRepo {
	repoLog := baseLog.With("repo", "StudyDocumentRepo")
	return &studyDocumentRepo{db: db, log: repoLog}
}

func (r *studyDocumentRepo) Create(dbc dbctx.Context, docs []*domain.StudyDocument) ([]*domain.StudyDocument, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(docs) == 0 {
		return []*domain.StudyDocument{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *studyDocumentRepo) GetByIDs(dbc dbctx.Context, docIDs []uuid.UUID) ([]*domain.StudyDocument, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.StudyDocument
	if len(docIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", docIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetActiveByUserAndFilename returns the most recent active document a user
// uploaded under the given filename, or gorm.ErrRecordNotFound.
func (r *studyDocumentRepo) GetActiveByUserAndFilename(dbc dbctx.Context, userID uuid.UUID, filename string) (*domain.StudyDocument, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var result domain.StudyDocument
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND filename = ? AND is_active = ?", userID, filename, true).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *studyDocumentRepo) ListActiveByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*domain.StudyDocument, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.StudyDocument
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *studyDocumentRepo) UpdateSummary(dbc dbctx.Context, docID uuid.UUID, summary string, keyConcepts datatypes.JSON) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&domain.StudyDocument{}).
		Where("id = ?", docID).
		Updates(map[string]any{
			"summary":      summary,
			"key_concepts": keyConcepts,
		}).Error
}

func (r *studyDocumentRepo) Deactivate(dbc dbctx.Context, docID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&domain.StudyDocument{}).
		Where("id = ?", docID).
		Update("is_active", false).Error
}

func (r *studyDocumentRepo) SoftDeleteByIDs(dbc dbctx.Context, docIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(docIDs) == 0 {
		return nil
	}

	return transaction.WithContext(dbc.Ctx).
		Where("id IN ?", docIDs).
		Delete(&domain.StudyDocument{}).Error
}
