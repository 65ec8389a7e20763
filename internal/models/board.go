package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultBackgroundColor = "#ffffff"

// Board represents the database model
type Board struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     *string   `gorm:"type:text" json:"description"`
	BackgroundColor string    `gorm:"size:7;default:'#ffffff'" json:"background_color"`
	IsPublic        bool      `gorm:"default:false;index" json:"is_public"`
	ShareToken      *string   `gorm:"size:255;uniqueIndex" json:"share_token,omitempty"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BoardSummary is a board row joined with its counts, used by list views.
type BoardSummary struct {
	Board
	AuthorName   string   `json:"author_name,omitempty"`
	AuthorAvatar *string  `json:"author_avatar,omitempty"`
	ImageCount   int64    `json:"image_count"`
	LikeCount    int64    `json:"like_count"`
	IsLiked      bool     `json:"is_liked"`
	Tags         []string `gorm:"-" json:"tags"`
}

// BoardDetail is the full board returned to the canvas.
type BoardDetail struct {
	BoardSummary
	IsOwner bool    `json:"is_owner"`
	Images  []Image `json:"images"`
}

// SharedBoard is the read-only projection handed out through share tokens.
type SharedBoard struct {
	ID              uuid.UUID     `json:"id"`
	Title           string        `json:"title"`
	Description     *string       `json:"description"`
	BackgroundColor string        `json:"background_color"`
	AuthorName      string        `json:"author_name"`
	CreatedAt       time.Time     `json:"created_at"`
	Images          []SharedImage `json:"images"`
	Tags            []string      `json:"tags,omitempty"`
}
