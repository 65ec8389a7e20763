package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studio-space-backend/internal/models"
)

type Sort string

const (
	SortRecent  Sort = "recent"
	SortPopular Sort = "popular"
	SortLiked   Sort = "liked"
	SortRandom  Sort = "random"
)

// ParseSort falls back to recent for anything unknown.
func ParseSort(s string) Sort {
	switch Sort(strings.ToLower(s)) {
	case SortPopular:
		return SortPopular
	case SortLiked:
		return SortLiked
	case SortRandom:
		return SortRandom
	}
	return SortRecent
}

type BoardQuery struct {
	Page   int
	Limit  int
	Search string
	Sort   Sort
	Tag    string
	// Viewer decides is_liked; uuid.Nil for anonymous callers.
	Viewer uuid.UUID
}

// BoardRepo represents the repository for the board model
type BoardRepo struct {
	db *gorm.DB
}

type BoardRepoInterface interface {
	Create(ctx context.Context, board *models.Board, tags []string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Board, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Board, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Summary(ctx context.Context, id, viewer uuid.UUID) (*models.BoardSummary, error)
	ListByUser(ctx context.Context, userID uuid.UUID, q BoardQuery) ([]models.BoardSummary, int64, error)
	Explore(ctx context.Context, q BoardQuery) ([]models.BoardSummary, int64, error)
	LikedBy(ctx context.Context, userID uuid.UUID) ([]models.BoardSummary, error)
	ToggleLike(ctx context.Context, userID, boardID uuid.UUID) (bool, error)
	Duplicate(ctx context.Context, sourceID, ownerID uuid.UUID) (*models.Board, error)
}

func NewBoardRepository(db *gorm.DB) BoardRepoInterface {
	return &BoardRepo{db: db}
}

// boardRow is the flat shape of a board joined with its author and counts.
type boardRow struct {
	ID              uuid.UUID
	Title           string
	Description     *string
	BackgroundColor string
	IsPublic        bool
	ShareToken      *string
	UserID          uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
	AuthorName      string
	AuthorAvatar    *string
	ImageCount      int64
	LikeCount       int64
	IsLiked         bool
}

func (r boardRow) summary() models.BoardSummary {
	return models.BoardSummary{
		Board: models.Board{
			ID:              r.ID,
			Title:           r.Title,
			Description:     r.Description,
			BackgroundColor: r.BackgroundColor,
			IsPublic:        r.IsPublic,
			ShareToken:      r.ShareToken,
			UserID:          r.UserID,
			CreatedAt:       r.CreatedAt,
			UpdatedAt:       r.UpdatedAt,
		},
		AuthorName:   r.AuthorName,
		AuthorAvatar: r.AuthorAvatar,
		ImageCount:   r.ImageCount,
		LikeCount:    r.LikeCount,
		IsLiked:      r.IsLiked,
		Tags:         []string{},
	}
}

const summaryColumns = `boards.id, boards.title, boards.description, boards.background_color,
	boards.is_public, boards.share_token, boards.user_id, boards.created_at, boards.updated_at,
	users.name AS author_name, users.avatar_url AS author_avatar,
	(SELECT COUNT(*) FROM images WHERE images.board_id = boards.id) AS image_count,
	(SELECT COUNT(*) FROM liked_boards WHERE liked_boards.board_id = boards.id) AS like_count,
	EXISTS (SELECT 1 FROM liked_boards lb WHERE lb.board_id = boards.id AND lb.user_id = ?) AS is_liked`

func (r *BoardRepo) summaries(ctx context.Context, viewer uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("boards").
		Select(summaryColumns, viewer).
		Joins("JOIN users ON users.id = boards.user_id")
}

func searchScope(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		search = strings.TrimSpace(search)
		if search == "" {
			return db
		}
		like := "%" + search + "%"
		return db.Where("(boards.title ILIKE ? OR boards.description ILIKE ?)", like, like)
	}
}

func tagScope(tag string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tag = models.NormalizeTag(tag); tag == "" {
			return db
		}
		return db.Where("EXISTS (SELECT 1 FROM tags WHERE tags.board_id = boards.id AND tags.name = ?)", tag)
	}
}

// withTags fills in each summary's tags, name ascending.
func (r *BoardRepo) withTags(ctx context.Context, rows []boardRow) ([]models.BoardSummary, error) {
	out := make([]models.BoardSummary, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, len(rows))
	index := make(map[uuid.UUID]int, len(rows))
	for i, row := range rows {
		out[i] = row.summary()
		ids[i] = row.ID
		index[row.ID] = i
	}

	var tags []models.Tag
	err := r.db.WithContext(ctx).
		Where("board_id IN ?", ids).
		Order("name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		i := index[t.BoardID]
		out[i].Tags = append(out[i].Tags, t.Name)
	}
	return out, nil
}

// Create inserts the board together with its initial tags.
func (r *BoardRepo) Create(ctx context.Context, board *models.Board, tags []string) error {
	if board.ID == uuid.Nil {
		board.ID = uuid.New()
	}
	if board.BackgroundColor == "" {
		board.BackgroundColor = models.DefaultBackgroundColor
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(board).Error; err != nil {
			return translate(err)
		}
		return insertTags(tx, board.ID, tags)
	})
}

func (r *BoardRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Board, error) {
	var board models.Board
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		return nil, translate(err)
	}
	return &board, nil
}

func (r *BoardRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Board, error) {
	res := r.db.WithContext(ctx).Model(&models.Board{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *BoardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Board{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Summary loads one board with its author, counts and tags.
func (r *BoardRepo) Summary(ctx context.Context, id, viewer uuid.UUID) (*models.BoardSummary, error) {
	var rows []boardRow
	err := r.summaries(ctx, viewer).Where("boards.id = ?", id).Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	out, err := r.withTags(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// ListByUser returns the owner's boards, most recently updated first.
func (r *BoardRepo) ListByUser(ctx context.Context, userID uuid.UUID, q BoardQuery) ([]models.BoardSummary, int64, error) {
	page, limit := Page(q.Page, q.Limit, 10)

	var total int64
	err := r.db.WithContext(ctx).
		Table("boards").
		Where("boards.user_id = ?", userID).
		Scopes(searchScope(q.Search)).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var rows []boardRow
	err = r.summaries(ctx, q.Viewer).
		Where("boards.user_id = ?", userID).
		Scopes(searchScope(q.Search)).
		Order("boards.updated_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	boards, err := r.withTags(ctx, rows)
	return boards, total, err
}

// Explore pages through public boards.
func (r *BoardRepo) Explore(ctx context.Context, q BoardQuery) ([]models.BoardSummary, int64, error) {
	page, limit := Page(q.Page, q.Limit, 12)

	var total int64
	err := r.db.WithContext(ctx).
		Table("boards").
		Where("boards.is_public = ?", true).
		Scopes(searchScope(q.Search), tagScope(q.Tag)).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	query := r.summaries(ctx, q.Viewer).
		Where("boards.is_public = ?", true).
		Scopes(searchScope(q.Search), tagScope(q.Tag))

	switch q.Sort {
	case SortPopular:
		query = query.Order("image_count DESC").Order("boards.created_at DESC")
	case SortLiked:
		query = query.Order("like_count DESC").Order("boards.created_at DESC")
	case SortRandom:
		query = query.Order("RANDOM()")
	default:
		query = query.Order("boards.created_at DESC")
	}

	var rows []boardRow
	err = query.Offset((page - 1) * limit).Limit(limit).Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	boards, err := r.withTags(ctx, rows)
	return boards, total, err
}

// LikedBy lists boards the user liked that they can still see, newest like
// first.
func (r *BoardRepo) LikedBy(ctx context.Context, userID uuid.UUID) ([]models.BoardSummary, error) {
	var rows []boardRow
	err := r.summaries(ctx, userID).
		Joins("JOIN liked_boards mine ON mine.board_id = boards.id AND mine.user_id = ?", userID).
		Where("(boards.is_public = ? OR boards.user_id = ?)", true, userID).
		Order("mine.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.withTags(ctx, rows)
}

// ToggleLike removes an existing like or adds one. It reports whether the
// board is liked afterwards.
func (r *BoardRepo) ToggleLike(ctx context.Context, userID, boardID uuid.UUID) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND board_id = ?", userID, boardID).Delete(&models.LikedBoard{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		liked = true
		like := models.LikedBoard{ID: uuid.New(), UserID: userID, BoardID: boardID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error
	})
	return liked, err
}

// Duplicate copies a board with its images and tags into a private board
// owned by ownerID.
func (r *BoardRepo) Duplicate(ctx context.Context, sourceID, ownerID uuid.UUID) (*models.Board, error) {
	var copyBoard models.Board
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var src models.Board
		if err := tx.Where("id = ?", sourceID).First(&src).Error; err != nil {
			return translate(err)
		}

		copyBoard = models.Board{
			ID:              uuid.New(),
			Title:           src.Title + " (Copy)",
			Description:     src.Description,
			BackgroundColor: src.BackgroundColor,
			IsPublic:        false,
			UserID:          ownerID,
		}
		if err := tx.Create(&copyBoard).Error; err != nil {
			return err
		}

		var images []models.Image
		if err := tx.Where("board_id = ?", sourceID).Order("z_index ASC, created_at ASC").Find(&images).Error; err != nil {
			return err
		}
		for i := range images {
			images[i].ID = uuid.New()
			images[i].BoardID = copyBoard.ID
			images[i].CreatedAt = time.Time{}
			images[i].UpdatedAt = time.Time{}
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}

		var names []string
		if err := tx.Model(&models.Tag{}).Where("board_id = ?", sourceID).Order("name ASC").Pluck("name", &names).Error; err != nil {
			return err
		}
		return insertTags(tx, copyBoard.ID, names)
	})
	if err != nil {
		return nil, err
	}
	return &copyBoard, nil
}
