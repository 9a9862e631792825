package domain

import (
	"time"

	"github.com/google/uuid"
)

// AnswerAttempt is an append-only record of one answered question. Attempts
// are never updated or deleted; progress stats derive from the latest attempt
// per question.
type AnswerAttempt struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	DocumentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"document_id"`
	QuestionID uuid.UUID      `gorm:"type:uuid;not null;index" json:"question_id"`
	Question   *MCQQuestion   `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"-"`
	Document   *StudyDocument `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID;references:ID" json:"-"`

	SelectedChoice string `gorm:"column:selected_choice;not null" json:"selected_choice"`
	IsCorrect      bool   `gorm:"column:is_correct;not null" json:"is_correct"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (AnswerAttempt) TableName() string { return "answer_attempt" }

// ProgressStats is derived, never stored.
type ProgressStats struct {
	DocumentID     uuid.UUID `json:"document_id"`
	TotalQuestions int       `json:"total_questions"`
	Attempted      int       `json:"attempted"`
	Correct        int       `json:"correct"`
	Accuracy       float64   `json:"accuracy"`
}
