package models

import (
	"time"

	"github.com/google/uuid"
)

type LikedBoard struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_liked_user_board" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	BoardID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_liked_user_board" json:"board_id"`
	Board     *Board    `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
