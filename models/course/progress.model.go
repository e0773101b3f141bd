package course

import (
	"time"

	"gorm.io/gorm"
)

// Lesson progress statuses
const (
	StatusNotStarted = "NOT_STARTED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// IsValidStatus reports whether s is a known progress status
func IsValidStatus(s string) bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// LessonProgress tracks a user's state on a single lesson. One row per
// (user, lesson), created lazily on the first progress write.
type LessonProgress struct {
	gorm.Model
	UserID          uint       `json:"user_id" gorm:"uniqueIndex:idx_user_lesson;not null"`
	LessonID        uint       `json:"lesson_id" gorm:"uniqueIndex:idx_user_lesson;not null"`
	CourseID        uint       `json:"course_id" gorm:"index;not null"`
	Status          string     `json:"status" gorm:"default:'NOT_STARTED'"` // NOT_STARTED, IN_PROGRESS, COMPLETED
	ProgressPercent int        `json:"progress_percent" gorm:"default:0"`   // 0-100
	QuizScore       *int       `json:"quiz_score"`
	QuizAttempts    int        `json:"quiz_attempts" gorm:"default:0"`
	CompletedAt     *time.Time `json:"completed_at"`
	LastAccessedAt  time.Time  `json:"last_accessed_at"`
	IsDeleted       bool       `gorm:"default:false"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
