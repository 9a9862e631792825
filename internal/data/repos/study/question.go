package study

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-backend/internal/domain"
	"github.com/studybuddy/studybuddy-backend/internal/platform/dbctx"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

type MCQQuestionRepo interface {
	Create(dbc dbctx.Context, questions []*domain.MCQQuestion) ([]*domain.MCQQuestion, error)
	GetByIDs(dbc dbctx.Context, questionIDs []uuid.UUID) ([]*domain.MCQQuestion, error)
	GetByDocumentAndSeq(dbc dbctx.Context, docID uuid.UUID, seq int) (*domain.MCQQuestion, error)
	ListByDocumentID(dbc dbctx.Context, docID uuid.UUID) ([]*domain.MCQQuestion, error)
	CountByDocumentID(dbc dbctx.Context, docID uuid.UUID) (int64, error)
	MaxSeqByDocumentID(dbc dbctx.Context, docID uuid.UUID) (int, error)
	FullDeleteByDocumentIDs(dbc dbctx.Context, docIDs []uuid.UUID) error
}

type mcqQuestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMCQQuestionRepo(db *gorm.DB, baseLog *logger.Logger) MCQQuestionRepo {
	repoLog := baseLog.With("repo", "MCQQuestionRepo")
	return &mcqQuestionRepo{db: db, log: repoLog}
}

func (r *mcqQuestionRepo) Create(dbc dbctx.Context, questions []*domain.MCQQuestion) ([]*domain.MCQQuestion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(questions) == 0 {
		return []*domain.MCQQuestion{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *mcqQuestionRepo) GetByIDs(dbc dbctx.Context, questionIDs []uuid.UUID) ([]*domain.MCQQuestion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.MCQQuestion
	if len(questionIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", questionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *mcqQuestionRepo) GetByDocumentAndSeq(dbc dbctx.Context, docID uuid.UUID, seq int) (*domain.MCQQuestion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var result domain.MCQQuestion
	if err := transaction.WithContext(dbc.Ctx).
		Where("document_id = ? AND seq = ?", docID, seq).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *mcqQuestionRepo) ListByDocumentID(dbc dbctx.Context, docID uuid.UUID) ([]*domain.MCQQuestion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.MCQQuestion
	if err := transaction.WithContext(dbc.Ctx).
		Where("document_id = ?", docID).
		Order("seq ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *mcqQuestionRepo) CountByDocumentID(dbc dbctx.Context, docID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&domain.MCQQuestion{}).
		Where("document_id = ?", docID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MaxSeqByDocumentID returns -1 when the document has no questions yet.
func (r *mcqQuestionRepo) MaxSeqByDocumentID(dbc dbctx.Context, docID uuid.UUID) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var maxSeq *int
	if err := transaction.WithContext(dbc.Ctx).
		Model(&domain.MCQQuestion{}).
		Where("document_id = ?", docID).
		Select("MAX(seq)").
		Scan(&maxSeq).Error; err != nil {
		return -1, err
	}
	if maxSeq == nil {
		return -1, nil
	}
	return *maxSeq, nil
}

func (r *mcqQuestionRepo) FullDeleteByDocumentIDs(dbc dbctx.Context, docIDs []uuid.UUID) error {
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
		Delete(&domain.MCQQuestion{}).Error
}
