package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/studybuddy/studybuddy-backend/internal/http/handlers"
	httpMW "github.com/studybuddy/studybuddy-backend/internal/http/middleware"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	AuthHandler     *httpH.AuthHandler
	UserHandler     *httpH.UserHandler
	DocumentHandler *httpH.DocumentHandler
	StudyHandler    *httpH.StudyHandler
	SessionHandler  *httpH.SessionHandler
	ProgressHandler *httpH.ProgressHandler

	ServiceName string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS())
	r.Use(httpMW.RequestLogger(cfg.Log))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/v1")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/register", cfg.AuthHandler.Register)
			api.POST("/auth/login", cfg.AuthHandler.Login)
			api.POST("/auth/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/auth/logout", cfg.AuthHandler.Logout)
		}

		if cfg.UserHandler != nil {
			protected.GET("/users/me", cfg.UserHandler.GetMe)
			protected.PATCH("/users/me", cfg.UserHandler.UpdateMe)
		}

		if cfg.DocumentHandler != nil {
			protected.POST("/uploadfile", cfg.DocumentHandler.Upload)
			protected.GET("/documents", cfg.DocumentHandler.List)
			protected.GET("/files/:filename", cfg.DocumentHandler.Download)
			protected.GET("/files/:filename/info", cfg.DocumentHandler.GetByFilename)
			protected.DELETE("/documents/:id", cfg.DocumentHandler.Delete)
		}

		if cfg.StudyHandler != nil {
			protected.POST("/generate-mcq", cfg.StudyHandler.GenerateMCQs)
			protected.GET("/mcq-questions/:filename", cfg.StudyHandler.ListQuestions)
			protected.GET("/mcq-questions/:filename/:index", cfg.StudyHandler.QuestionByIndex)
			protected.GET("/mcq-question-count/:filename", cfg.StudyHandler.QuestionCount)
			protected.POST("/validate-answer", cfg.StudyHandler.ValidateAnswer)
			protected.POST("/generate-flashcards/:filename", cfg.StudyHandler.GenerateFlashcards)
			protected.GET("/flashcards/:filename", cfg.StudyHandler.ListFlashcards)
			protected.POST("/summarize/:filename", cfg.StudyHandler.Summarize)
		}

		if cfg.SessionHandler != nil {
			protected.POST("/quiz-sessions", cfg.SessionHandler.Create)
			protected.GET("/quiz-sessions/:id", cfg.SessionHandler.Get)
			protected.POST("/quiz-sessions/:id/select", cfg.SessionHandler.Select)
			protected.POST("/quiz-sessions/:id/submit", cfg.SessionHandler.Submit)
			protected.POST("/quiz-sessions/:id/next", cfg.SessionHandler.Next)
			protected.POST("/quiz-sessions/:id/prev", cfg.SessionHandler.Prev)
			protected.POST("/quiz-sessions/:id/finish", cfg.SessionHandler.Finish)
			protected.POST("/quiz-sessions/:id/restart", cfg.SessionHandler.Restart)
		}

		if cfg.ProgressHandler != nil {
			protected.POST("/progress/attempts", cfg.ProgressHandler.Record)
			protected.GET("/progress/stats", cfg.ProgressHandler.Overall)
			protected.GET("/progress/documents/:id", cfg.ProgressHandler.Document)
			protected.GET("/progress/questions/:id", cfg.ProgressHandler.Question)
			protected.DELETE("/progress/documents/:id", cfg.ProgressHandler.ClearDocument)
		}
	}

	return r
}
