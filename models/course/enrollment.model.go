package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment tracks a user's registration in a course. One row per (user, course).
// CompletedAt is stamped once every published lesson is completed and never cleared.
type Enrollment struct {
	gorm.Model
	UserID      uint       `json:"user_id" gorm:"uniqueIndex:idx_user_course;not null"`
	CourseID    uint       `json:"course_id" gorm:"uniqueIndex:idx_user_course;not null"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	CompletedAt *time.Time `json:"completed_at"`
	IsDeleted   bool       `gorm:"default:false"`
}
