package repo

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// ImageAccessError reports an image that is missing or owned by someone else.
type ImageAccessError struct {
	ID uuid.UUID
}

func (e *ImageAccessError) Error() string {
	return fmt.Sprintf("Image %s not found or access denied", e.ID)
}

func (e *ImageAccessError) Is(target error) bool {
	return target == ErrNotFound
}

// translate maps gorm errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

// Page normalises pagination input: page defaults to 1, limit to def and is
// capped at 100.
func Page(page, limit, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
