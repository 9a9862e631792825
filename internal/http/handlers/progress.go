package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studybuddy/studybuddy-backend/internal/http/response"
	"github.com/studybuddy/studybuddy-backend/internal/services"
)

type ProgressHandler struct {
	progress services.ProgressService
	quiz     services.QuizService
}

func NewProgressHandler(progress services.ProgressService, quiz services.QuizService) *ProgressHandler {
	return &ProgressHandler{progress: progress, quiz: quiz}
}

// Record grades the submitted choice server-side and stores the attempt.
// Clients never assert correctness themselves.
func (ph *ProgressHandler) Record(c *gin.Context) {
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

	result, err := ph.quiz.ValidateAnswer(c.Request.Context(), userID, questionID, req.SelectedChoice)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	attempt, err := ph.progress.Record(c.Request.Context(), userID, services.RecordInput{
		DocumentID:     result.DocumentID,
		QuestionID:     result.QuestionID,
		SelectedChoice: req.SelectedChoice,
		IsCorrect:      result.IsCorrect,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"attempt": attempt,
		"result":  result,
	})
}

func (ph *ProgressHandler) Document(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	documentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	progress, err := ph.progress.Document(c.Request.Context(), userID, documentID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, progress)
}

func (ph *ProgressHandler) Overall(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	stats, err := ph.progress.Overall(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

func (ph *ProgressHandler) Question(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	questionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	history, err := ph.progress.Question(c.Request.Context(), userID, questionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, history)
}

func (ph *ProgressHandler) ClearDocument(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	documentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := ph.progress.ClearDocument(c.Request.Context(), userID, documentID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
