package models

import (
	"time"

	"github.com/google/uuid"
)

// ShareLink grants read access to a board, optionally behind a password.
type ShareLink struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Token        string     `gorm:"size:255;uniqueIndex;not null" json:"token"`
	BoardID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"board_id"`
	Board        *Board     `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
	PasswordHash *string    `gorm:"size:255" json:"-"`
	ExpiresAt    *time.Time `json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (s *ShareLink) PasswordProtected() bool {
	return s.PasswordHash != nil && *s.PasswordHash != ""
}

func (s *ShareLink) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}
