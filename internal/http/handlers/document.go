package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studybuddy/studybuddy-backend/internal/http/response"
	"github.com/studybuddy/studybuddy-backend/internal/platform/envutil"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
	"github.com/studybuddy/studybuddy-backend/internal/services"
)

type DocumentHandler struct {
	log       *logger.Logger
	documents services.DocumentService

	maxUploadBytes int64
}

func NewDocumentHandler(log *logger.Logger, documents services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		log:            log.With("handler", "DocumentHandler"),
		documents:      documents,
		maxUploadBytes: int64(envutil.GetEnvAsInt("MAX_UPLOAD_MB", 32, log)) << 20,
	}
}

func (dh *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}
	if fileHeader.Size > dh.maxUploadBytes {
		response.RespondError(c, http.StatusBadRequest, "upload_rejected", errors.New("file too large"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, dh.maxUploadBytes+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}
	if int64(len(data)) > dh.maxUploadBytes {
		response.RespondError(c, http.StatusBadRequest, "upload_rejected", errors.New("file too large"))
		return
	}

	doc, err := dh.documents.Upload(c.Request.Context(), userID, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"document":   doc,
		"page_count": doc.PageCount,
	})
}

func (dh *DocumentHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	docs, err := dh.documents.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"documents": docs})
}

func (dh *DocumentHandler) GetByFilename(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	doc, err := dh.documents.GetByFilename(c.Request.Context(), userID, c.Param("filename"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"document": doc})
}

func (dh *DocumentHandler) Download(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	data, mimeType, err := dh.documents.FileBytes(c.Request.Context(), userID, c.Param("filename"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Data(http.StatusOK, mimeType, data)
}

func (dh *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	documentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := dh.documents.Delete(c.Request.Context(), userID, documentID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
