package models

import (
	"time"

	"github.com/google/uuid"
)

type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

// User represents the database model
type User struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string      `gorm:"size:255;not null" json:"name"`
	Email         string      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash  *string     `gorm:"size:255" json:"-"`
	AvatarURL     *string     `json:"avatar_url"`
	BirthDate     *time.Time  `gorm:"type:date" json:"birth_date"`
	Provider      Provider    `gorm:"size:50;default:'local'" json:"provider"`
	ProviderID    *string     `gorm:"size:255" json:"-"`
	EmailVerified bool        `gorm:"default:false" json:"email_verified"`
	Preferences   Preferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Preferences gate notification emails and profile visibility.
type Preferences struct {
	EmailNotifications bool `gorm:"default:true" json:"email_notifications"`
	Newsletter         bool `gorm:"default:false" json:"newsletter"`
	ProfilePublic      bool `gorm:"default:false" json:"profile_public"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// UserStats is returned by the account page.
type UserStats struct {
	TotalBoards  int64 `json:"totalBoards"`
	TotalImages  int64 `json:"totalImages"`
	LikedBoards  int64 `json:"likedBoards"`
	PublicBoards int64 `json:"publicBoards"`
}
