package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-backend/internal/clients/blob"
	goredis "github.com/studybuddy/studybuddy-backend/internal/clients/redis"
	"github.com/studybuddy/studybuddy-backend/internal/data/repos"
	"github.com/studybuddy/studybuddy-backend/internal/domain"
	"github.com/studybuddy/studybuddy-backend/internal/ingestion/extractor"
	"github.com/studybuddy/studybuddy-backend/internal/platform/apierr"
	"github.com/studybuddy/studybuddy-backend/internal/platform/dbctx"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

// allowedUploads maps accepted extensions to the MIME types clients may
// declare for them. Empty declared MIME is accepted; the extractor sniffs
// the real type from bytes anyway.
var allowedUploads = map[string][]string{
	".pdf":  {"application/pdf"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	".pptx": {"application/vnd.openxmlformats-officedocument.presentationml.presentation"},
	".txt":  {"text/plain"},
	".md":   {"text/plain", "text/markdown"},
}

type DocumentSummary struct {
	Document       *domain.StudyDocument `json:"document"`
	QuestionCount  int64                 `json:"question_count"`
	FlashcardCount int64                 `json:"flashcard_count"`
}

type DocumentService interface {
	Upload(ctx context.Context, userID uuid.UUID, filename, mimeType string, data []byte) (*domain.StudyDocument, error)
	List(ctx context.Context, userID uuid.UUID) ([]*DocumentSummary, error)
	GetByFilename(ctx context.Context, userID uuid.UUID, filename string) (*domain.StudyDocument, error)
	GetOwned(ctx context.Context, userID, documentID uuid.UUID) (*domain.StudyDocument, error)
	FileBytes(ctx context.Context, userID uuid.UUID, filename string) ([]byte, string, error)
	Delete(ctx context.Context, userID, documentID uuid.UUID) error
	Pages(doc *domain.StudyDocument) ([]string, error)
}

type documentService struct {
	db            *gorm.DB
	log           *logger.Logger
	documentRepo  repos.StudyDocumentRepo
	questionRepo  repos.MCQQuestionRepo
	flashcardRepo repos.FlashcardRepo
	attemptRepo   repos.AnswerAttemptRepo
	store         blob.Store
	cache         *goredis.Cache
}

func NewDocumentService(
	db *gorm.DB,
	log *logger.Logger,
	documentRepo repos.StudyDocumentRepo,
	questionRepo repos.MCQQuestionRepo,
	flashcardRepo repos.FlashcardRepo,
	attemptRepo repos.AnswerAttemptRepo,
	store blob.Store,
	cache *goredis.Cache,
) DocumentService {
	return &documentService{
		db:            db,
		log:           log.With("service", "DocumentService"),
		documentRepo:  documentRepo,
		questionRepo:  questionRepo,
		flashcardRepo: flashcardRepo,
		attemptRepo:   attemptRepo,
		store:         store,
		cache:         cache,
	}
}

func (ds *documentService) Upload(ctx context.Context, userID uuid.UUID, filename, mimeType string, data []byte) (*domain.StudyDocument, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeUploadRejected, errors.New("missing filename"))
	}

	if err := checkUploadAllowed(filename, mimeType); err != nil {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeUploadRejected, err)
	}

	pages, err := extractor.ExtractPages(filename, mimeType, data)
	if err != nil {
		return nil, apierr.New(http.StatusUnprocessableEntity, apierr.CodeDocumentParseError, err)
	}

	pagesJSON, err := json.Marshal(pages)
	if err != nil {
		return nil, fmt.Errorf("encode pages: %w", err)
	}

	doc := &domain.StudyDocument{
		ID:        uuid.New(),
		UserID:    userID,
		Filename:  filename,
		MimeType:  mimeType,
		SizeBytes: int64(len(data)),
		PageCount: len(pages),
		PagesText: datatypes.JSON(pagesJSON),
		IsActive:  true,
	}
	doc.StorageKey = fmt.Sprintf("documents/%s/%s", doc.ID, filename)

	if err := ds.store.Upload(ctx, doc.StorageKey, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	if err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx, tx)

		// re-uploading a filename supersedes the previous document
		if prev, gErr := ds.documentRepo.GetActiveByUserAndFilename(dbc, userID, filename); gErr == nil {
			if dErr := ds.documentRepo.Deactivate(dbc, prev.ID); dErr != nil {
				return fmt.Errorf("deactivate previous upload: %w", dErr)
			}
		} else if !errors.Is(gErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check previous upload: %w", gErr)
		}

		_, cErr := ds.documentRepo.Create(dbc, []*domain.StudyDocument{doc})
		return cErr
	}); err != nil {
		_ = ds.store.Delete(ctx, doc.StorageKey)
		return nil, err
	}

	ds.log.Info("Document uploaded",
		"user_id", userID.String(),
		"document_id", doc.ID.String(),
		"pages", doc.PageCount,
	)
	return doc, nil
}

func checkUploadAllowed(filename, mimeType string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	allowedMimes, ok := allowedUploads[ext]
	if !ok {
		return fmt.Errorf("file type %q not allowed", ext)
	}

	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if mt == "" || mt == "application/octet-stream" {
		return nil
	}
	for _, allowed := range allowedMimes {
		if mt == allowed {
			return nil
		}
	}
	return fmt.Errorf("mime type %q does not match %s", mimeType, ext)
}

func (ds *documentService) List(ctx context.Context, userID uuid.UUID) ([]*DocumentSummary, error) {
	dbc := dbctx.New(ctx, nil)

	docs, err := ds.documentRepo.ListActiveByUserID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	out := make([]*DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		qCount, err := ds.questionRepo.CountByDocumentID(dbc, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("count questions: %w", err)
		}
		fCount, err := ds.flashcardRepo.CountByDocumentID(dbc, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("count flashcards: %w", err)
		}
		out = append(out, &DocumentSummary{
			Document:       doc,
			QuestionCount:  qCount,
			FlashcardCount: fCount,
		})
	}
	return out, nil
}

func (ds *documentService) GetByFilename(ctx context.Context, userID uuid.UUID, filename string) (*domain.StudyDocument, error) {
	doc, err := ds.documentRepo.GetActiveByUserAndFilename(dbctx.New(ctx, nil), userID, filepath.Base(filename))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(http.StatusNotFound, apierr.CodeNotFound, fmt.Errorf("document %q not found", filename))
		}
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	return doc, nil
}

func (ds *documentService) GetOwned(ctx context.Context, userID, documentID uuid.UUID) (*domain.StudyDocument, error) {
	docs, err := ds.documentRepo.GetByIDs(dbctx.New(ctx, nil), []uuid.UUID{documentID})
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	if len(docs) == 0 || docs[0].UserID != userID {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeNotFound, errors.New("document not found"))
	}
	return docs[0], nil
}

func (ds *documentService) FileBytes(ctx context.Context, userID uuid.UUID, filename string) ([]byte, string, error) {
	doc, err := ds.GetByFilename(ctx, userID, filename)
	if err != nil {
		return nil, "", err
	}
	data, err := ds.store.Download(ctx, doc.StorageKey)
	if err != nil {
		return nil, "", fmt.Errorf("download %q: %w", doc.StorageKey, err)
	}
	return data, doc.MimeType, nil
}

// Delete removes the document's generated questions, flashcards, attempts
// and stored bytes, then soft-deletes the row.
func (ds *documentService) Delete(ctx context.Context, userID, documentID uuid.UUID) error {
	doc, err := ds.GetOwned(ctx, userID, documentID)
	if err != nil {
		return err
	}

	if err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx, tx)
		ids := []uuid.UUID{doc.ID}

		if err := ds.attemptRepo.FullDeleteByDocumentIDs(dbc, ids); err != nil {
			return fmt.Errorf("delete attempts: %w", err)
		}
		if err := ds.questionRepo.FullDeleteByDocumentIDs(dbc, ids); err != nil {
			return fmt.Errorf("delete questions: %w", err)
		}
		if err := ds.flashcardRepo.FullDeleteByDocumentIDs(dbc, ids); err != nil {
			return fmt.Errorf("delete flashcards: %w", err)
		}
		return ds.documentRepo.SoftDeleteByIDs(dbc, ids)
	}); err != nil {
		return err
	}

	if err := ds.store.Delete(ctx, doc.StorageKey); err != nil {
		ds.log.Warn("Failed to delete stored file", "storage_key", doc.StorageKey, "error", err)
	}
	if err := ds.cache.DeleteByPrefix(ctx, "mcq:"+doc.ID.String()); err != nil {
		ds.log.Warn("Failed to invalidate question cache", "document_id", doc.ID.String(), "error", err)
	}

	ds.log.Info("Document deleted", "user_id", userID.String(), "document_id", doc.ID.String())
	return nil
}

// Pages decodes the stored per-page text.
func (ds *documentService) Pages(doc *domain.StudyDocument) ([]string, error) {
	var pages []string
	if err := json.Unmarshal(doc.PagesText, &pages); err != nil {
		return nil, fmt.Errorf("decode pages for %s: %w", doc.ID, err)
	}
	return pages, nil
}
