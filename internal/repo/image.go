package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"studio-space-backend/internal/models"
)

type ImageRepo struct {
	db *gorm.DB
}

type ImageRepoInterface interface {
	Create(ctx context.Context, image *models.Image) error
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*models.Image, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]models.Image, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Image, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
	KeysForBoard(ctx context.Context, boardID uuid.UUID) ([]string, error)
	KeysForUser(ctx context.Context, userID uuid.UUID) ([]string, error)
	UnreferencedKeys(ctx context.Context, keys []string) ([]string, error)
}

func NewImageRepository(db *gorm.DB) ImageRepoInterface {
	return &ImageRepo{db: db}
}

func (r *ImageRepo) Create(ctx context.Context, image *models.Image) error {
	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(image).Error
}

// GetOwned returns the image only when its board belongs to userID.
func (r *ImageRepo) GetOwned(ctx context.Context, id, userID uuid.UUID) (*models.Image, error) {
	var image models.Image
	err := r.db.WithContext(ctx).
		Joins("JOIN boards ON boards.id = images.board_id").
		Where("images.id = ? AND boards.user_id = ?", id, userID).
		First(&image).Error
	if err != nil {
		return nil, translate(err)
	}
	return &image, nil
}

// ListByBoard returns images in paint order.
func (r *ImageRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]models.Image, error) {
	images := []models.Image{}
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("z_index ASC, created_at ASC").
		Find(&images).Error
	return images, err
}

func (r *ImageRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Image, error) {
	res := r.db.WithContext(ctx).Model(&models.Image{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var image models.Image
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&image).Error; err != nil {
		return nil, translate(err)
	}
	return &image, nil
}

func (r *ImageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Image{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Reorder gives ids[i] z_index i inside one transaction. Any id not on one of
// userID's boards rolls the whole batch back with an *ImageAccessError.
func (r *ImageRepo) Reorder(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			var count int64
			err := tx.Model(&models.Image{}).
				Joins("JOIN boards ON boards.id = images.board_id").
				Where("images.id = ? AND boards.user_id = ?", id, userID).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count == 0 {
				return &ImageAccessError{ID: id}
			}
			if err := tx.Model(&models.Image{}).Where("id = ?", id).Update("z_index", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ImageRepo) KeysForBoard(ctx context.Context, boardID uuid.UUID) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&models.Image{}).
		Where("board_id = ? AND storage_key <> ''", boardID).
		Distinct().
		Pluck("storage_key", &keys).Error
	return keys, err
}

func (r *ImageRepo) KeysForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&models.Image{}).
		Joins("JOIN boards ON boards.id = images.board_id").
		Where("boards.user_id = ? AND images.storage_key <> ''", userID).
		Distinct().
		Pluck("images.storage_key", &keys).Error
	return keys, err
}

// UnreferencedKeys filters keys down to those no image row points at any
// more. Duplicated images share a blob, so a blob may only go once the last
// row using it is gone.
func (r *ImageRepo) UnreferencedKeys(ctx context.Context, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	var used []string
	err := r.db.WithContext(ctx).
		Model(&models.Image{}).
		Where("storage_key IN ?", keys).
		Distinct().
		Pluck("storage_key", &used).Error
	if err != nil {
		return nil, err
	}
	inUse := make(map[string]bool, len(used))
	for _, k := range used {
		inUse[k] = true
	}
	var out []string
	for _, k := range keys {
		if !inUse[k] {
			out = append(out, k)
		}
	}
	return out, nil
}
