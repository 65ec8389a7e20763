package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studio-space-backend/internal/models"
)

type TagRepo struct {
	db *gorm.DB
}

type TagRepoInterface interface {
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]string, error)
	Add(ctx context.Context, boardID uuid.UUID, name string) ([]string, error)
	Replace(ctx context.Context, boardID uuid.UUID, names []string) ([]string, error)
	Remove(ctx context.Context, boardID uuid.UUID, name string) ([]string, error)
	Popular(ctx context.Context, limit int) ([]models.TagCount, error)
}

func NewTagRepository(db *gorm.DB) TagRepoInterface {
	return &TagRepo{db: db}
}

// insertTags adds normalised names to a board, skipping ones it already has.
func insertTags(tx *gorm.DB, boardID uuid.UUID, names []string) error {
	names = models.NormalizeTags(names)
	if len(names) == 0 {
		return nil
	}
	tags := make([]models.Tag, len(names))
	for i, n := range names {
		tags[i] = models.Tag{ID: uuid.New(), Name: n, BoardID: boardID}
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tags).Error
}

func (r *TagRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]string, error) {
	names := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.Tag{}).
		Where("board_id = ?", boardID).
		Order("name ASC").
		Pluck("name", &names).Error
	return names, err
}

// Add is a no-op for a name the board already carries.
func (r *TagRepo) Add(ctx context.Context, boardID uuid.UUID, name string) ([]string, error) {
	if err := insertTags(r.db.WithContext(ctx), boardID, []string{name}); err != nil {
		return nil, err
	}
	return r.ListByBoard(ctx, boardID)
}

func (r *TagRepo) Replace(ctx context.Context, boardID uuid.UUID, names []string) ([]string, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("board_id = ?", boardID).Delete(&models.Tag{}).Error; err != nil {
			return err
		}
		return insertTags(tx, boardID, names)
	})
	if err != nil {
		return nil, err
	}
	return r.ListByBoard(ctx, boardID)
}

func (r *TagRepo) Remove(ctx context.Context, boardID uuid.UUID, name string) ([]string, error) {
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND name = ?", boardID, models.NormalizeTag(name)).
		Delete(&models.Tag{}).Error
	if err != nil {
		return nil, err
	}
	return r.ListByBoard(ctx, boardID)
}

// Popular counts tag use across public boards.
func (r *TagRepo) Popular(ctx context.Context, limit int) ([]models.TagCount, error) {
	_, limit = Page(1, limit, 20)
	counts := []models.TagCount{}
	err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.name AS name, COUNT(*) AS count").
		Joins("JOIN boards ON boards.id = tags.board_id").
		Where("boards.is_public = ?", true).
		Group("tags.name").
		Order("count DESC, name ASC").
		Limit(limit).
		Scan(&counts).Error
	return counts, err
}
