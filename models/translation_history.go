package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TranslationHistory is one completed translation request of a user.
type TranslationHistory struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`                           // uuid, set in BeforeCreate
	User        *Users    `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"` // foreign key with cascade
	UserID      uint      `json:"user_id" gorm:"not null;index"`                          // owner
	SourceLang  string    `json:"source_lang" gorm:"size:10;not null"`                    // "auto" or a language code
	TargetLangs []string  `json:"target_langs" gorm:"serializer:json;type:text;not null"` // ordered as requested
	SourceCode  string    `json:"source_code" gorm:"type:longtext;not null"`              // up to 2 MiB, MySQL TEXT stops at 64 KiB
	CreatedAt   time.Time `json:"created_at" gorm:"index"`                                // newest first in listings
}

// explicit table name
func (TranslationHistory) TableName() string {
	return "translation_history"
}

// BeforeCreate assigns the uuid when the caller left ID empty.
func (h *TranslationHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
