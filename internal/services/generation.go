package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-backend/internal/clients/llm"
	goredis "github.com/studybuddy/studybuddy-backend/internal/clients/redis"
	"github.com/studybuddy/studybuddy-backend/internal/data/repos"
	"github.com/studybuddy/studybuddy-backend/internal/domain"
	"github.com/studybuddy/studybuddy-backend/internal/platform/apierr"
	"github.com/studybuddy/studybuddy-backend/internal/platform/dbctx"
	"github.com/studybuddy/studybuddy-backend/internal/platform/envutil"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

// GenerationResult is returned by GenerateMCQs. When generation for the
// remaining pages continues in the background, Message says so.
type GenerationResult struct {
	Document  *domain.StudyDocument `json:"-"`
	Questions []*domain.MCQQuestion `json:"questions"`
	Message   string                `json:"message"`
}

type SummaryResult struct {
	Summary     string   `json:"summary"`
	KeyConcepts []string `json:"key_concepts"`
}

type GenerationService interface {
	GenerateMCQs(ctx context.Context, userID uuid.UUID, filename string, numQuestions int) (*GenerationResult, error)
	GenerateFlashcards(ctx context.Context, userID uuid.UUID, filename string) ([]*domain.Flashcard, error)
	ListFlashcards(ctx context.Context, userID uuid.UUID, filename string) ([]*domain.Flashcard, error)
	Summarize(ctx context.Context, userID uuid.UUID, filename string) (*SummaryResult, error)
}

type generationService struct {
	db            *gorm.DB
	log           *logger.Logger
	llmClient     llm.Client
	prompts       *PromptBuilder
	documents     DocumentService
	questionRepo  repos.MCQQuestionRepo
	flashcardRepo repos.FlashcardRepo
	documentRepo  repos.StudyDocumentRepo
	cache         *goredis.Cache

	// bound on concurrent per-page generation calls
	maxConcurrent int
	// background generation deadline for the remaining pages
	backgroundTimeout time.Duration
}

func NewGenerationService(
	db *gorm.DB,
	log *logger.Logger,
	llmClient llm.Client,
	prompts *PromptBuilder,
	documents DocumentService,
	questionRepo repos.MCQQuestionRepo,
	flashcardRepo repos.FlashcardRepo,
	documentRepo repos.StudyDocumentRepo,
	cache *goredis.Cache,
) GenerationService {
	serviceLog := log.With("service", "GenerationService")
	return &generationService{
		db:                db,
		log:               serviceLog,
		llmClient:         llmClient,
		prompts:           prompts,
		documents:         documents,
		questionRepo:      questionRepo,
		flashcardRepo:     flashcardRepo,
		documentRepo:      documentRepo,
		cache:             cache,
		maxConcurrent:     envutil.GetEnvAsInt("GENERATION_MAX_CONCURRENT", 2, log),
		backgroundTimeout: time.Duration(envutil.GetEnvAsInt("GENERATION_BACKGROUND_TIMEOUT_MINUTES", 15, log)) * time.Minute,
	}
}

// GenerateMCQs produces questions for a document. Repeat calls regenerate:
// prior questions are wiped and the cache invalidated once the first page
// generates successfully. The first page runs synchronously so the caller
// gets questions immediately; the remaining pages run in the background.
func (gs *generationService) GenerateMCQs(ctx context.Context, userID uuid.UUID, filename string, numQuestions int) (*GenerationResult, error) {
	doc, err := gs.documents.GetByFilename(ctx, userID, filename)
	if err != nil {
		return nil, err
	}

	pages, err := gs.documents.Pages(doc)
	if err != nil {
		return nil, apierr.New(http.StatusUnprocessableEntity, apierr.CodeDocumentParseError, err)
	}
	if len(pages) == 0 {
		return nil, apierr.New(http.StatusUnprocessableEntity, apierr.CodeDocumentParseError, errors.New("document has no extracted text"))
	}

	perPage := ClampQuestionCount(numQuestions)

	firstPage, err := gs.generateQuestionsForPage(ctx, pages[0], perPage)
	if err != nil {
		return nil, err
	}

	// the wipe waits until the first page generates, so a failed LLM call
	// never destroys the previous question set
	dbc := dbctx.New(ctx, nil)
	if err := gs.questionRepo.FullDeleteByDocumentIDs(dbc, []uuid.UUID{doc.ID}); err != nil {
		return nil, fmt.Errorf("wipe prior questions: %w", err)
	}
	if err := gs.cache.DeleteByPrefix(ctx, "mcq:"+doc.ID.String()); err != nil {
		gs.log.Warn("Failed to invalidate question cache", "document_id", doc.ID.String(), "error", err)
	}

	questions := materializeQuestions(doc.ID, 1, 0, firstPage)
	if _, err := gs.questionRepo.Create(dbc, questions); err != nil {
		return nil, fmt.Errorf("store questions: %w", err)
	}

	message := "questions generated"
	if len(pages) > 1 {
		message = fmt.Sprintf("generated questions for page 1, remaining %d pages in progress", len(pages)-1)
		go gs.generateRemainingPages(doc.ID, pages[1:], perPage)
	}

	return &GenerationResult{Document: doc, Questions: questions, Message: message}, nil
}

// generateRemainingPages runs detached from the request. Pages that fail
// generation or parsing are logged and skipped; the rest still land.
func (gs *generationService) generateRemainingPages(documentID uuid.UUID, pages []string, perPage int) {
	ctx, cancel := context.WithTimeout(context.Background(), gs.backgroundTimeout)
	defer cancel()

	results := make([][]generatedQuestion, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(gs.maxConcurrent)
	for i, pageText := range pages {
		g.Go(func() error {
			if strings.TrimSpace(pageText) == "" {
				return nil
			}
			qs, err := gs.generateQuestionsForPage(gctx, pageText, perPage)
			if err != nil {
				gs.log.Warn("Background page generation failed",
					"document_id", documentID.String(),
					"page", i+2,
					"error", err,
				)
				return nil
			}
			results[i] = qs
			return nil
		})
	}
	_ = g.Wait()

	// seq continues from whatever the synchronous pass stored; persisting
	// in page order keeps it aligned with reading order
	dbc := dbctx.New(ctx, nil)
	maxSeq, err := gs.questionRepo.MaxSeqByDocumentID(dbc, documentID)
	if err != nil {
		gs.log.Error("Failed to read max seq", "document_id", documentID.String(), "error", err)
		return
	}

	var all []*domain.MCQQuestion
	seq := maxSeq + 1
	for i, qs := range results {
		page := materializeQuestions(documentID, i+2, seq, qs)
		seq += len(page)
		all = append(all, page...)
	}
	if len(all) == 0 {
		return
	}

	if _, err := gs.questionRepo.Create(dbc, all); err != nil {
		gs.log.Error("Failed to store background questions",
			"document_id", documentID.String(),
			"count", len(all),
			"error", err,
		)
		return
	}
	gs.log.Info("Background generation finished",
		"document_id", documentID.String(),
		"questions", len(all),
	)
}

func (gs *generationService) generateQuestionsForPage(ctx context.Context, pageText string, perPage int) ([]generatedQuestion, error) {
	system, user := gs.prompts.MCQPrompt(pageText, perPage)

	raw, err := gs.llmClient.GenerateJSON(ctx, system, user)
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, apierr.CodeGenerationUnavailable, err)
	}

	questions, err := parseMCQPayload(raw)
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, apierr.CodeGenerationParseError, err)
	}
	return questions, nil
}

// GenerateFlashcards produces flashcards for every page. Unlike questions,
// all pages run before returning; a document is rarely more than a handful
// of pages of card material. Existing cards are returned as-is.
func (gs *generationService) GenerateFlashcards(ctx context.Context, userID uuid.UUID, filename string) ([]*domain.Flashcard, error) {
	doc, err := gs.documents.GetByFilename(ctx, userID, filename)
	if err != nil {
		return nil, err
	}

	dbc := dbctx.New(ctx, nil)
	existing, err := gs.flashcardRepo.ListByDocumentID(dbc, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("list existing flashcards: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	pages, err := gs.documents.Pages(doc)
	if err != nil {
		return nil, apierr.New(http.StatusUnprocessableEntity, apierr.CodeDocumentParseError, err)
	}

	results := make([][]generatedFlashcard, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(gs.maxConcurrent)
	for i, pageText := range pages {
		g.Go(func() error {
			if strings.TrimSpace(pageText) == "" {
				return nil
			}
			system, user := gs.prompts.FlashcardPrompt(pageText, 0)
			raw, err := gs.llmClient.GenerateJSON(gctx, system, user)
			if err != nil {
				return apierr.New(http.StatusBadGateway, apierr.CodeGenerationUnavailable, err)
			}
			cards, err := parseFlashcardPayload(raw)
			if err != nil {
				return apierr.New(http.StatusBadGateway, apierr.CodeGenerationParseError, err)
			}
			results[i] = cards
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*domain.Flashcard
	seq := 0
	for i, cards := range results {
		for _, c := range cards {
			all = append(all, &domain.Flashcard{
				ID:          uuid.New(),
				DocumentID:  doc.ID,
				Seq:         seq,
				PageNumber:  i + 1,
				Front:       c.Front,
				Back:        c.Back,
				Explanation: c.Explanation,
			})
			seq++
		}
	}
	if len(all) == 0 {
		return nil, apierr.New(http.StatusBadGateway, apierr.CodeGenerationParseError, errors.New("no flashcards generated"))
	}

	if _, err := gs.flashcardRepo.Create(dbc, all); err != nil {
		return nil, fmt.Errorf("store flashcards: %w", err)
	}
	return all, nil
}

// ListFlashcards returns already-generated cards without triggering
// generation.
func (gs *generationService) ListFlashcards(ctx context.Context, userID uuid.UUID, filename string) ([]*domain.Flashcard, error) {
	doc, err := gs.documents.GetByFilename(ctx, userID, filename)
	if err != nil {
		return nil, err
	}
	cards, err := gs.flashcardRepo.ListByDocumentID(dbctx.New(ctx, nil), doc.ID)
	if err != nil {
		return nil, fmt.Errorf("list flashcards: %w", err)
	}
	return cards, nil
}

// Summarize produces and persists a document summary with key concepts.
// Re-summarizing overwrites.
func (gs *generationService) Summarize(ctx context.Context, userID uuid.UUID, filename string) (*SummaryResult, error) {
	doc, err := gs.documents.GetByFilename(ctx, userID, filename)
	if err != nil {
		return nil, err
	}

	pages, err := gs.documents.Pages(doc)
	if err != nil {
		return nil, apierr.New(http.StatusUnprocessableEntity, apierr.CodeDocumentParseError, err)
	}

	system, user := gs.prompts.SummaryPrompt(strings.Join(pages, "\n\n"))
	raw, err := gs.llmClient.GenerateJSON(ctx, system, user)
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, apierr.CodeGenerationUnavailable, err)
	}

	result, err := parseSummaryPayload(raw)
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, apierr.CodeGenerationParseError, err)
	}

	conceptsJSON, err := json.Marshal(result.KeyConcepts)
	if err != nil {
		return nil, fmt.Errorf("encode key concepts: %w", err)
	}
	if err := gs.documentRepo.UpdateSummary(dbctx.New(ctx, nil), doc.ID, result.Summary, datatypes.JSON(conceptsJSON)); err != nil {
		return nil, fmt.Errorf("store summary: %w", err)
	}
	return result, nil
}

// -------------------- LLM payload parsing --------------------

type generatedChoice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type generatedQuestion struct {
	Question      string            `json:"question"`
	Choices       []generatedChoice `json:"choices"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
}

type mcqPayload struct {
	Questions []generatedQuestion `json:"questions"`
}

var choiceIDs = []string{"A", "B", "C", "D"}

// parseMCQPayload decodes and strictly validates a model response. Every
// question must carry exactly the choice ids A-D and a correct_answer that
// names one of them; anything else rejects the whole payload.
func parseMCQPayload(raw json.RawMessage) ([]generatedQuestion, error) {
	var payload mcqPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode generation payload: %w", err)
	}
	if len(payload.Questions) == 0 {
		return nil, errors.New("generation payload has no questions")
	}

	for i := range payload.Questions {
		q := &payload.Questions[i]

		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" {
			return nil, fmt.Errorf("question %d: empty question text", i)
		}
		if len(q.Choices) != len(choiceIDs) {
			return nil, fmt.Errorf("question %d: got %d choices, want %d", i, len(q.Choices), len(choiceIDs))
		}

		seen := map[string]bool{}
		for j := range q.Choices {
			c := &q.Choices[j]
			c.ID = strings.ToUpper(strings.TrimSpace(c.ID))
			c.Text = strings.TrimSpace(c.Text)
			if c.Text == "" {
				return nil, fmt.Errorf("question %d choice %s: empty text", i, c.ID)
			}
			seen[c.ID] = true
		}
		for _, id := range choiceIDs {
			if !seen[id] {
				return nil, fmt.Errorf("question %d: missing choice %s", i, id)
			}
		}

		q.CorrectAnswer = strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))
		if !seen[q.CorrectAnswer] {
			return nil, fmt.Errorf("question %d: correct_answer %q is not a choice id", i, q.CorrectAnswer)
		}
	}
	return payload.Questions, nil
}

type generatedFlashcard struct {
	Front       string `json:"front"`
	Back        string `json:"back"`
	Explanation string `json:"explanation"`
}

type flashcardPayload struct {
	Flashcards []generatedFlashcard `json:"flashcards"`
}

func parseFlashcardPayload(raw json.RawMessage) ([]generatedFlashcard, error) {
	var payload flashcardPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode flashcard payload: %w", err)
	}
	if len(payload.Flashcards) == 0 {
		return nil, errors.New("flashcard payload has no cards")
	}
	for i := range payload.Flashcards {
		c := &payload.Flashcards[i]
		c.Front = strings.TrimSpace(c.Front)
		c.Back = strings.TrimSpace(c.Back)
		// explanation is optional; models occasionally leave it out
		c.Explanation = strings.TrimSpace(c.Explanation)
		if c.Front == "" || c.Back == "" {
			return nil, fmt.Errorf("flashcard %d: empty front or back", i)
		}
	}
	return payload.Flashcards, nil
}

func parseSummaryPayload(raw json.RawMessage) (*SummaryResult, error) {
	var result SummaryResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode summary payload: %w", err)
	}
	result.Summary = strings.TrimSpace(result.Summary)
	if result.Summary == "" {
		return nil, errors.New("summary payload has empty summary")
	}
	return &result, nil
}

func materializeQuestions(documentID uuid.UUID, pageNumber, startSeq int, qs []generatedQuestion) []*domain.MCQQuestion {
	out := make([]*domain.MCQQuestion, 0, len(qs))
	for i, q := range qs {
		choicesJSON, err := json.Marshal(q.Choices)
		if err != nil {
			continue
		}
		out = append(out, &domain.MCQQuestion{
			ID:            uuid.New(),
			DocumentID:    documentID,
			Seq:           startSeq + i,
			PageNumber:    pageNumber,
			QuestionText:  q.Question,
			Choices:       datatypes.JSON(choicesJSON),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}
	return out
}
