package course

import "gorm.io/gorm"

// Course levels, ordered. Intermediate unlocks after Beginner, Advanced after Intermediate.
const (
	LevelBeginner     = "BEGINNER"
	LevelIntermediate = "INTERMEDIATE"
	LevelAdvanced     = "ADVANCED"
)

// Levels lists the known course levels in gating order
var Levels = []string{LevelBeginner, LevelIntermediate, LevelAdvanced}

// IsValidLevel reports whether level is one of the three known values
func IsValidLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

// PriorLevel returns the level that gates the given one, or "" for Beginner
func PriorLevel(level string) string {
	switch level {
	case LevelIntermediate:
		return LevelBeginner
	case LevelAdvanced:
		return LevelIntermediate
	}
	return ""
}

// Course represents a leveled course in the catalog
type Course struct {
	gorm.Model
	Title        string `json:"title"`
	Description  string `json:"description"`
	Level        string `json:"level" gorm:"index;default:'BEGINNER'"` // BEGINNER, INTERMEDIATE, ADVANCED
	OrderIndex   int    `json:"order_index" gorm:"default:0"`          // 0-based, contiguous within level
	ThumbnailURL string `json:"thumbnail_url"`
	IsPublished  bool   `json:"is_published" gorm:"default:false"`
	IsDeleted    bool   `gorm:"default:false"`
}
