package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Image is a picture placed on a board canvas.
type Image struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	URL        string         `gorm:"not null" json:"url"`
	StorageKey string         `gorm:"size:512;index" json:"-"`
	PositionX  int            `gorm:"default:0" json:"position_x"`
	PositionY  int            `gorm:"default:0" json:"position_y"`
	Width      int            `gorm:"not null" json:"width"`
	Height     int            `gorm:"not null" json:"height"`
	Rotation   int            `gorm:"default:0" json:"rotation"`
	ZIndex     int            `gorm:"default:0" json:"z_index"`
	Palette    datatypes.JSON `json:"palette"`
	BoardID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"board_id"`
	Board      *Board         `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// SharedImage drops ids and ownership from an image.
type SharedImage struct {
	URL       string `json:"url"`
	PositionX int    `json:"position_x"`
	PositionY int    `json:"position_y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Rotation  int    `json:"rotation"`
}

func (i Image) Shared() SharedImage {
	return SharedImage{
		URL:       i.URL,
		PositionX: i.PositionX,
		PositionY: i.PositionY,
		Width:     i.Width,
		Height:    i.Height,
		Rotation:  i.Rotation,
	}
}
