package app

import (
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-backend/internal/data/repos"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

type Repos struct {
	User          repos.UserRepo
	UserToken     repos.UserTokenRepo
	StudyDocument repos.StudyDocumentRepo
	MCQQuestion   repos.MCQQuestionRepo
	Flashcard     repos.FlashcardRepo
	AnswerAttempt repos.AnswerAttemptRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:          repos.NewUserRepo(db, log),
		UserToken:     repos.NewUserTokenRepo(db, log),
		StudyDocument: repos.NewStudyDocumentRepo(db, log),
		MCQQuestion:   repos.NewMCQQuestionRepo(db, log),
		Flashcard:     repos.NewFlashcardRepo(db, log),
		AnswerAttempt: repos.NewAnswerAttemptRepo(db, log),
	}
}
