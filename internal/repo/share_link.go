package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"studio-space-backend/internal/models"
)

type ShareLinkRepo struct {
	db *gorm.DB
}

type ShareLinkRepoInterface interface {
	Create(ctx context.Context, link *models.ShareLink) error
	GetByToken(ctx context.Context, token string) (*models.ShareLink, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]models.ShareLink, error)
	Delete(ctx context.Context, token string) error
}

func NewShareLinkRepository(db *gorm.DB) ShareLinkRepoInterface {
	return &ShareLinkRepo{db: db}
}

func (r *ShareLinkRepo) Create(ctx context.Context, link *models.ShareLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(link).Error)
}

func (r *ShareLinkRepo) GetByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	var link models.ShareLink
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&link).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

func (r *ShareLinkRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]models.ShareLink, error) {
	links := []models.ShareLink{}
	err := r.db.WithContext(ctx).Where("board_id = ?", boardID).Order("created_at DESC").Find(&links).Error
	return links, err
}

func (r *ShareLinkRepo) Delete(ctx context.Context, token string) error {
	res := r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.ShareLink{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
