package progress

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-backend/internal/domain"
	"github.com/studybuddy/studybuddy-backend/internal/platform/dbctx"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

// AnswerAttemptRepo is append-only: attempts are created and read, never
// updated or deleted except when the owning document is purged.
type AnswerAttemptRepo interface {
	Create(dbc dbctx.Context, attempts []*domain.AnswerAttempt) ([]*domain.AnswerAttempt, error)
	ListByUserAndDocument(dbc dbctx.Context, userID, docID uuid.UUID) ([]*domain.AnswerAttempt, error)
	ListByUserAndQuestion(dbc dbctx.Context, userID, questionID uuid.UUID) ([]*domain.AnswerAttempt, error)
	LatestPerQuestion(dbc dbctx.Context, userID, docID uuid.UUID) ([]*domain.AnswerAttempt, error)
	FullDeleteByDocumentIDs(dbc dbctx.Context, docIDs []uuid.UUID) error
}

type answerAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AnswerAttemptRepo {
	repoLog := baseLog.With("repo", "AnswerAttemptRepo")
	return &answerAttemptRepo{db: db, log: repoLog}
}

func (r *answerAttemptRepo) Create(dbc dbctx.Context, attempts []*domain.AnswerAttempt) ([]*domain.AnswerAttempt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(attempts) == 0 {
		return []*domain.AnswerAttempt{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *answerAttemptRepo) ListByUserAndDocument(dbc dbctx.Context, userID, docID uuid.UUID) ([]*domain.AnswerAttempt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.AnswerAttempt
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND document_id = ?", userID, docID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *answerAttemptRepo) ListByUserAndQuestion(dbc dbctx.Context, userID, questionID uuid.UUID) ([]*domain.AnswerAttempt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.AnswerAttempt
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// LatestPerQuestion returns one attempt per question: the most recent one.
// Stats treat a question as "correct" only if its latest attempt is correct.
func (r *answerAttemptRepo) LatestPerQuestion(dbc dbctx.Context, userID, docID uuid.UUID) ([]*domain.AnswerAttempt, error) {
	attempts, err := r.ListByUserAndDocument(dbc, userID, docID)
	if err != nil {
		return nil, err
	}

	latest := make(map[uuid.UUID]*domain.AnswerAttempt, len(attempts))
	order := make([]uuid.UUID, 0, len(attempts))
	for _, a := range attempts {
		if _, seen := latest[a.QuestionID]; !seen {
			order = append(order, a.QuestionID)
		}
		// attempts are ordered oldest first, so the last write wins
		latest[a.QuestionID] = a
	}

	results := make([]*domain.AnswerAttempt, 0, len(order))
	for _, qid := range order {
		results = append(results, latest[qid])
	}
	return results, nil
}

func (r *answerAttemptRepo) FullDeleteByDocumentIDs(dbc dbctx.Context, docIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(docIDs) == 0 {
		return nil
	}

	return transaction.WithContext(dbc.Ctx).
		Where("document_id IN ?", docIDs).
		Delete(&domain.AnswerAttempt{}).Error
}
