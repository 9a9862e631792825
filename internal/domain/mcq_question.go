package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MCQQuestion is one generated multiple-choice question. Seq is the zero-based
// ordinal within the owning document and is what clients page through.
type MCQQuestion struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DocumentID uuid.UUID      `gorm:"type:uuid;not null;index:idx_mcq_doc_seq,unique" json:"document_id"`
	Document   *StudyDocument `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID;references:ID" json:"-"`

	Seq        int `gorm:"column:seq;not null;index:idx_mcq_doc_seq,unique" json:"seq"`
	PageNumber int `gorm:"column:page_number;not null" json:"page_number"`

	QuestionText string `gorm:"column:question_text;not null" json:"question_text"`

	// Choices is a JSON array of {"id": "A", "text": "..."} objects.
	Choices       datatypes.JSON `gorm:"column:choices;type:jsonb;not null" json:"choices"`
	CorrectAnswer string         `gorm:"column:correct_answer;not null" json:"-"`
	Explanation   string         `gorm:"column:explanation" json:"-"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (MCQQuestion) TableName() string { return "mcq_question" }

// Choice is the decoded element type of MCQQuestion.Choices.
type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
