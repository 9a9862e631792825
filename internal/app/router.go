package app

import (
	apphttp "github.com/studybuddy/studybuddy-backend/internal/http"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlerset Handlers, mw Middleware) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:             log,
		AuthMiddleware:  mw.Auth,
		HealthHandler:   handlerset.Health,
		AuthHandler:     handlerset.Auth,
		UserHandler:     handlerset.User,
		DocumentHandler: handlerset.Document,
		StudyHandler:    handlerset.Study,
		SessionHandler:  handlerset.Session,
		ProgressHandler: handlerset.Progress,
		ServiceName:     cfg.ServiceName,
	})
}
