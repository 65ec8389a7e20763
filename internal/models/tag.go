package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_tags_board_name" json:"name"`
	BoardID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_tags_board_name" json:"board_id"`
	Board     *Board    `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// TagCount feeds the tag cloud.
type TagCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

const MaxTagLength = 100

// NormalizeTag trims and lower-cases name and gives it a single leading '#'.
// Length is capped in characters, not bytes.
// It returns "" for names with no content.
func NormalizeTag(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimLeft(name, "#")
	name = strings.Join(strings.Fields(name), "-")
	if name == "" {
		return ""
	}
	name = "#" + name
	if r := []rune(name); len(r) > MaxTagLength {
		name = string(r[:MaxTagLength])
	}
	return name
}

// NormalizeTags normalises names and drops blanks and duplicates, keeping
// first-seen order.
func NormalizeTags(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeTag(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
