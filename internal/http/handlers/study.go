package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studybuddy/studybuddy-backend/internal/http/response"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
	"github.com/studybuddy/studybuddy-backend/internal/services"
)

// StudyHandler serves generation and question retrieval endpoints.
type StudyHandler struct {
	log        *logger.Logger
	generation services.GenerationService
	quiz       services.QuizService
}

func NewStudyHandler(log *logger.Logger, generation services.GenerationService, quiz services.QuizService) *StudyHandler {
	return &StudyHandler{
		log:        log.With("handler", "StudyHandler"),
		generation: generation,
		quiz:       quiz,
	}
}

func (sh *StudyHandler) GenerateMCQs(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Filename     string `json:"filename"`
		NumQuestions int    `json:"num_questions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Filename == "" {
		response.RespondError(c, http.StatusBadRequest, "validation_failed", errors.New("filename is required"))
		return
	}
	result, err := sh.generation.GenerateMCQs(c.Request.Context(), userID, req.Filename, req.NumQuestions)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	// CorrectAnswer and Explanation never serialize, so returning the
	// stored rows does not leak the answer key.
	response.RespondOK(c, gin.H{
		"filename":   result.Document.Filename,
		"page_count": result.Document.PageCount,
		"questions":  result.Questions,
		"message":    result.Message,
	})
}

func (sh *StudyHandler) ListQuestions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	questions, err := sh.quiz.ListQuestions(c.Request.Context(), userID, c.Param("filename"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"questions": questions})
}

func (sh *StudyHandler) QuestionByIndex(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_failed", errors.New("index must be an integer"))
		return
	}
	question, err := sh.quiz.QuestionByIndex(c.Request.Context(), userID, c.Param("filename"), index)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, question)
}

func (sh *StudyHandler) QuestionCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	count, err := sh.quiz.QuestionCount(c.Request.Context(), userID, c.Param("filename"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"count": count})
}

func (sh *StudyHandler) ValidateAnswer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		QuestionID     string `json:"question_id"`
		SelectedChoice string `json:"selected_choice"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_failed", errors.New("invalid question_id"))
		return
	}
	result, err := sh.quiz.ValidateAnswer(c.Request.Context(), userID, questionID, req.SelectedChoice)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (sh *StudyHandler) GenerateFlashcards(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cards, err := sh.generation.GenerateFlashcards(c.Request.Context(), userID, c.Param("filename"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"flashcards": cards})
}

func (sh *StudyHandler) ListFlashcards(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cards, err := sh.generation.ListFlashcards(c.Request.Context(), userID, c.Param("filename"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"flashcards": cards})
}

func (sh *StudyHandler) Summarize(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	result, err := sh.generation.Summarize(c.Request.Context(), userID, c.Param("filename"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}
