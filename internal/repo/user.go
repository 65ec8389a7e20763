package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"studio-space-backend/internal/models"
)

type UserRepo struct {
	db *gorm.DB
}

type UserRepoInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, id uuid.UUID) (*models.UserStats, error)
	NewsletterSubscribers(ctx context.Context) ([]models.User, error)
}

func NewUserRepository(db *gorm.DB) UserRepoInterface {
	return &UserRepo{db: db}
}

// Create inserts the user; email is stored lower-cased.
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Update applies column updates and returns the fresh row.
func (r *UserRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error) {
	if email, ok := updates["email"].(string); ok {
		updates["email"] = strings.ToLower(strings.TrimSpace(email))
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the user; boards, images, tags and likes cascade.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) Stats(ctx context.Context, id uuid.UUID) (*models.UserStats, error) {
	var stats models.UserStats
	err := r.db.WithContext(ctx).Raw(`SELECT
		(SELECT COUNT(*) FROM boards WHERE user_id = @id) AS total_boards,
		(SELECT COUNT(*) FROM images JOIN boards ON boards.id = images.board_id WHERE boards.user_id = @id) AS total_images,
		(SELECT COUNT(*) FROM liked_boards WHERE user_id = @id) AS liked_boards,
		(SELECT COUNT(*) FROM boards WHERE user_id = @id AND is_public = true) AS public_boards`,
		map[string]any{"id": id},
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *UserRepo) NewsletterSubscribers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("pref_newsletter = ?", true).Order("created_at").Find(&users).Error
	return users, err
}
