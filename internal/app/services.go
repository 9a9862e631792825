package app

import (
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
	"github.com/studybuddy/studybuddy-backend/internal/quiz"
	"github.com/studybuddy/studybuddy-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	User       services.UserService
	Document   services.DocumentService
	Generation services.GenerationService
	Quiz       services.QuizService
	Progress   services.ProgressService
	Session    services.SessionService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) Services {
	log.Info("Wiring services...")

	prompts := services.NewPromptBuilder(log)
	sessionStore := quiz.NewStore(log, clients.Cache)

	auth := services.NewAuthService(db, log, reposet.User, reposet.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	user := services.NewUserService(db, log, reposet.User)
	document := services.NewDocumentService(db, log, reposet.StudyDocument, reposet.MCQQuestion, reposet.Flashcard, reposet.AnswerAttempt, clients.Blob, clients.Cache)
	generation := services.NewGenerationService(db, log, clients.LLM, prompts, document, reposet.MCQQuestion, reposet.Flashcard, reposet.StudyDocument, clients.Cache)
	quizSvc := services.NewQuizService(db, log, document, reposet.MCQQuestion, clients.Cache)
	progress := services.NewProgressService(db, log, document, reposet.MCQQuestion, reposet.AnswerAttempt, reposet.StudyDocument)
	session := services.NewSessionService(log, sessionStore, quizSvc, document, progress)

	return Services{
		Auth:       auth,
		User:       user,
		Document:   document,
		Generation: generation,
		Quiz:       quizSvc,
		Progress:   progress,
		Session:    session,
	}
}
