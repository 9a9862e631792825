package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Flashcard struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DocumentID uuid.UUID      `gorm:"type:uuid;not null;index:idx_flashcard_doc_seq,unique" json:"document_id"`
	Document   *StudyDocument `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID;references:ID" json:"-"`

	Seq         int    `gorm:"column:seq;not null;index:idx_flashcard_doc_seq,unique" json:"seq"`
	PageNumber  int    `gorm:"column:page_number;not null" json:"page_number"`
	Front       string `gorm:"column:front;not null" json:"front"`
	Back        string `gorm:"column:back;not null" json:"back"`
	Explanation string `gorm:"column:explanation" json:"explanation"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Flashcard) TableName() string { return "flashcard" }
