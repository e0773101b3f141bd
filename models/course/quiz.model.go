package course

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quiz question option count bounds
const (
	MinQuizOptions = 2
	MaxQuizOptions = 6
)

// QuizQuestion represents a multiple choice question attached to a quiz lesson.
// Options holds a JSON array of answer strings; CorrectAnswerIndex points into it.
type QuizQuestion struct {
	gorm.Model
	LessonID           uint           `json:"lesson_id" gorm:"index;not null"`
	Question           string         `json:"question" gorm:"type:text"`
	Options            datatypes.JSON `json:"options"`
	CorrectAnswerIndex int            `json:"correct_answer_index" gorm:"default:0"`
	OrderIndex         int            `json:"order_index" gorm:"default:0"`
	IsDeleted          bool           `gorm:"default:false"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// OptionList decodes the stored options JSON array
func (q *QuizQuestion) OptionList() []string {
	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}
