package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-backend/internal/domain"
)

func AutoMigrateAll(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		// Identity + auth
		&domain.User{},
		&domain.UserToken{},

		// Documents + generated study material
		&domain.StudyDocument{},
		&domain.MCQQuestion{},
		&domain.Flashcard{},

		// Progress
		&domain.AnswerAttempt{},
	)
}

func EnsureIndexes(gdb *gorm.DB) error {
	// Latest-attempt-per-question lookups for progress stats.
	if err := gdb.Exec(`
		CREATE INDEX IF NOT EXISTS idx_answer_attempt_user_question_created
		ON answer_attempt (user_id, question_id, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_answer_attempt_user_question_created: %w", err)
	}
	if err := gdb.Exec(`
		CREATE INDEX IF NOT EXISTS idx_answer_attempt_user_document
		ON answer_attempt (user_id, document_id, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_answer_attempt_user_document: %w", err)
	}
	// Active-document listing per user.
	if err := gdb.Exec(`
		CREATE INDEX IF NOT EXISTS idx_study_document_user_active
		ON study_document (user_id, is_active, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_study_document_user_active: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if s.db.Dialector.Name() == "postgres" {
		if err := EnsureIndexes(s.db); err != nil {
			s.log.Error("Index migration failed", "error", err)
			return err
		}
	}
	return nil
}
