package course

import "gorm.io/gorm"

// Lesson content types
const (
	LessonTypeVideo        = "VIDEO"
	LessonTypeText         = "TEXT"
	LessonTypeQuiz         = "QUIZ"
	LessonTypePDF          = "PDF"
	LessonTypePresentation = "PRESENTATION"
)

// IsValidLessonType reports whether t is a known lesson type
func IsValidLessonType(t string) bool {
	switch t {
	case LessonTypeVideo, LessonTypeText, LessonTypeQuiz, LessonTypePDF, LessonTypePresentation:
		return true
	}
	return false
}

// Lesson represents an atomic content unit within a course
type Lesson struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type" gorm:"default:'TEXT'"` // VIDEO, TEXT, QUIZ, PDF, PRESENTATION
	DurationMin int    `json:"duration_min" gorm:"default:0"`
	TextContent string `json:"text_content" gorm:"type:text"` // For TEXT type
	MediaURL    string `json:"media_url"`                     // Opaque URL for VIDEO, PDF, PRESENTATION
	OrderIndex  int    `json:"order_index" gorm:"default:0"`  // Order within course
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `gorm:"default:false"`
}
