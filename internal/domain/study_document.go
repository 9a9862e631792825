package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type StudyDocument struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	Filename   string `gorm:"column:filename;not null;index" json:"filename"`
	MimeType   string `gorm:"column:mime_type;not null" json:"mime_type"`
	SizeBytes  int64  `gorm:"column:size_bytes" json:"size_bytes"`
	StorageKey string `gorm:"column:storage_key;not null" json:"storage_key"`
	PageCount  int    `gorm:"column:page_count;not null;default:0" json:"page_count"`

	// PagesText holds the extracted plain text per page as a JSON array of
	// strings, in page order. Kept on the row so generation never re-parses
	// the original file.
	PagesText datatypes.JSON `gorm:"column:pages_text;type:jsonb" json:"-"`

	Summary     string         `gorm:"column:summary" json:"summary,omitempty"`
	KeyConcepts datatypes.JSON `gorm:"column:key_concepts;type:jsonb" json:"key_concepts,omitempty"`

	IsActive bool `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (StudyDocument) TableName() string { return "study_document" }
