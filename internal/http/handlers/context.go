package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studybuddy/studybuddy-backend/internal/http/response"
	"github.com/studybuddy/studybuddy-backend/internal/platform/ctxutil"
)

// currentUserID pulls the authenticated user id attached by the auth
// middleware. When missing it renders a 401 and returns false.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(rd.UserID)
	if err != nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("invalid user id"))
		return uuid.Nil, false
	}
	return userID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_failed", errors.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
