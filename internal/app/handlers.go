package app

import (
	"github.com/studybuddy/studybuddy-backend/internal/http/handlers"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	User     *handlers.UserHandler
	Document *handlers.DocumentHandler
	Study    *handlers.StudyHandler
	Session  *handlers.SessionHandler
	Progress *handlers.ProgressHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   handlers.NewHealthHandler(),
		Auth:     handlers.NewAuthHandler(serviceset.Auth),
		User:     handlers.NewUserHandler(serviceset.User),
		Document: handlers.NewDocumentHandler(log, serviceset.Document),
		Study:    handlers.NewStudyHandler(log, serviceset.Generation, serviceset.Quiz),
		Session:  handlers.NewSessionHandler(serviceset.Session),
		Progress: handlers.NewProgressHandler(serviceset.Progress, serviceset.Quiz),
	}
}
