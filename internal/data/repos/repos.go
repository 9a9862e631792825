package repos

import (
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-backend/internal/data/repos/auth"
	"github.com/studybuddy/studybuddy-backend/internal/data/repos/progress"
	"github.com/studybuddy/studybuddy-backend/internal/data/repos/study"
	"github.com/studybuddy/studybuddy-backend/internal/data/repos/user"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type StudyDocumentRepo = study.StudyDocumentRepo
type MCQQuestionRepo = study.MCQQuestionRepo
type FlashcardRepo = study.FlashcardRepo

type AnswerAttemptRepo = progress.AnswerAttemptRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewStudyDocumentRepo(db *gorm.DB, baseLog *logger.Logger) StudyDocumentRepo {
	return study.NewStudyDocumentRepo(db, baseLog)
}
func NewMCQQuestionRepo(db *gorm.DB, baseLog *logger.Logger) MCQQuestionRepo {
	return study.NewMCQQuestionRepo(db, baseLog)
}
func NewFlashcardRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardRepo {
	return study.NewFlashcardRepo(db, baseLog)
}

func NewAnswerAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AnswerAttemptRepo {
	return progress.NewAnswerAttemptRepo(db, baseLog)
}
