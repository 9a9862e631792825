package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	goredis "github.com/studybuddy/studybuddy-backend/internal/clients/redis"
	"github.com/studybuddy/studybuddy-backend/internal/data/repos"
	"github.com/studybuddy/studybuddy-backend/internal/domain"
	"github.com/studybuddy/studybuddy-backend/internal/platform/apierr"
	"github.com/studybuddy/studybuddy-backend/internal/platform/dbctx"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

// QuestionView is the client-facing question shape. It never carries the
// correct answer or explanation; those only come back from ValidateAnswer.
type QuestionView struct {
	ID         uuid.UUID       `json:"id"`
	Seq        int             `json:"seq"`
	PageNumber int             `json:"page_number"`
	Question   string          `json:"question"`
	Choices    []domain.Choice `json:"choices"`
	Total      int             `json:"total_questions"`
}

// ValidateResult is the grading response, the single source of truth for
// correctness.
type ValidateResult struct {
	QuestionID    uuid.UUID       `json:"question_id"`
	Question      string          `json:"question"`
	Choices       []domain.Choice `json:"choices"`
	IsCorrect     bool            `json:"is_correct"`
	CorrectAnswer string          `json:"correct_answer"`
	Explanation   string          `json:"explanation"`
	DocumentID    uuid.UUID       `json:"-"`
	Seq           int             `json:"-"`
}

type QuizService interface {
	QuestionCount(ctx context.Context, userID uuid.UUID, filename string) (int64, error)
	QuestionByIndex(ctx context.Context, userID uuid.UUID, filename string, index int) (*QuestionView, error)
	QuestionAt(ctx context.Context, userID, documentID uuid.UUID, index int) (*QuestionView, error)
	ListQuestions(ctx context.Context, userID uuid.UUID, filename string) ([]*QuestionView, error)
	ValidateAnswer(ctx context.Context, userID, questionID uuid.UUID, selectedChoice string) (*ValidateResult, error)
}

type quizService struct {
	db           *gorm.DB
	log          *logger.Logger
	documents    DocumentService
	questionRepo repos.MCQQuestionRepo
	cache        *goredis.Cache
	cacheTTL     time.Duration
}

func NewQuizService(
	db *gorm.DB,
	log *logger.Logger,
	documents DocumentService,
	questionRepo repos.MCQQuestionRepo,
	cache *goredis.Cache,
) QuizService {
	return &quizService{
		db:           db,
		log:          log.With("service", "QuizService"),
		documents:    documents,
		questionRepo: questionRepo,
		cache:        cache,
		cacheTTL:     time.Hour,
	}
}

func (qs *quizService) QuestionCount(ctx context.Context, userID uuid.UUID, filename string) (int64, error) {
	doc, err := qs.documents.GetByFilename(ctx, userID, filename)
	if err != nil {
		return 0, err
	}
	count, err := qs.questionRepo.CountByDocumentID(dbctx.New(ctx, nil), doc.ID)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

func questionCacheKey(documentID uuid.UUID, index int) string {
	return fmt.Sprintf("mcq:%s:%d", documentID, index)
}

func (qs *quizService) QuestionByIndex(ctx context.Context, userID uuid.UUID, filename string, index int) (*QuestionView, error) {
	doc, err := qs.documents.GetByFilename(ctx, userID, filename)
	if err != nil {
		return nil, err
	}
	return qs.questionForDocument(ctx, doc.ID, index)
}

// QuestionAt resolves by document id, so callers holding a session are
// immune to a same-named re-upload swapping the document under them.
func (qs *quizService) QuestionAt(ctx context.Context, userID, documentID uuid.UUID, index int) (*QuestionView, error) {
	doc, err := qs.documents.GetOwned(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	return qs.questionForDocument(ctx, doc.ID, index)
}

func (qs *quizService) questionForDocument(ctx context.Context, documentID uuid.UUID, index int) (*QuestionView, error) {
	dbc := dbctx.New(ctx, nil)
	total, err := qs.questionRepo.CountByDocumentID(dbc, documentID)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	if index < 0 || int64(index) >= total {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeIndexOutOfRange,
			fmt.Errorf("index %d out of range [0,%d)", index, total))
	}

	if raw, err := qs.cache.Get(ctx, questionCacheKey(documentID, index)); err == nil {
		var view QuestionView
		if uErr := json.Unmarshal(raw, &view); uErr == nil {
			view.Total = int(total)
			return &view, nil
		}
	}

	q, err := qs.questionRepo.GetByDocumentAndSeq(dbc, documentID, index)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(http.StatusBadRequest, apierr.CodeIndexOutOfRange,
				fmt.Errorf("no question at index %d", index))
		}
		return nil, fmt.Errorf("fetch question: %w", err)
	}

	view, err := toQuestionView(q, int(total))
	if err != nil {
		return nil, err
	}

	if raw, mErr := json.Marshal(view); mErr == nil {
		if cErr := qs.cache.Set(ctx, questionCacheKey(documentID, index), raw, qs.cacheTTL); cErr != nil {
			qs.log.Warn("Failed to cache question", "document_id", documentID.String(), "index", index, "error", cErr)
		}
	}
	return view, nil
}

func (qs *quizService) ListQuestions(ctx context.Context, userID uuid.UUID, filename string) ([]*QuestionView, error) {
	doc, err := qs.documents.GetByFilename(ctx, userID, filename)
	if err != nil {
		return nil, err
	}

	questions, err := qs.questionRepo.ListByDocumentID(dbctx.New(ctx, nil), doc.ID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	views := make([]*QuestionView, 0, len(questions))
	for _, q := range questions {
		view, vErr := toQuestionView(q, len(questions))
		if vErr != nil {
			return nil, vErr
		}
		views = append(views, view)
	}
	return views, nil
}

func (qs *quizService) ValidateAnswer(ctx context.Context, userID, questionID uuid.UUID, selectedChoice string) (*ValidateResult, error) {
	dbc := dbctx.New(ctx, nil)

	questions, err := qs.questionRepo.GetByIDs(dbc, []uuid.UUID{questionID})
	if err != nil {
		return nil, fmt.Errorf("fetch question: %w", err)
	}
	if len(questions) == 0 {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeNotFound, errors.New("question not found"))
	}
	q := questions[0]

	// ownership via the document
	if _, err := qs.documents.GetOwned(ctx, userID, q.DocumentID); err != nil {
		return nil, err
	}

	choices, err := decodeChoices(q)
	if err != nil {
		return nil, err
	}
	known := false
	for _, c := range choices {
		if c.ID == selectedChoice {
			known = true
			break
		}
	}
	if !known {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidationFailed,
			fmt.Errorf("choice %q is not one of this question's choices", selectedChoice))
	}

	return &ValidateResult{
		QuestionID:    q.ID,
		Question:      q.QuestionText,
		Choices:       choices,
		IsCorrect:     selectedChoice == q.CorrectAnswer,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		DocumentID:    q.DocumentID,
		Seq:           q.Seq,
	}, nil
}

func decodeChoices(q *domain.MCQQuestion) ([]domain.Choice, error) {
	var choices []domain.Choice
	if err := json.Unmarshal(q.Choices, &choices); err != nil {
		return nil, fmt.Errorf("decode choices for %s: %w", q.ID, err)
	}
	return choices, nil
}

func toQuestionView(q *domain.MCQQuestion, total int) (*QuestionView, error) {
	choices, err := decodeChoices(q)
	if err != nil {
		return nil, err
	}
	return &QuestionView{
		ID:         q.ID,
		Seq:        q.Seq,
		PageNumber: q.PageNumber,
		Question:   q.QuestionText,
		Choices:    choices,
		Total:      total,
	}, nil
}
