package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	OpenEnded      QuestionType = "open_ended"
)

// Question belongs to exactly one owner: an exam or a lesson quiz.
type Question struct {
	ID       uint  `json:"id" gorm:"primaryKey"`
	ExamID   *uint `json:"exam_id,omitempty" gorm:"index"`
	LessonID *uint `json:"lesson_id,omitempty" gorm:"index"`
	Position int   `json:"position" gorm:"not null;default:0"`

	Prompt        string                      `json:"prompt" gorm:"type:text;not null"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer string                      `json:"correct_answer" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// IsOpenEnded reports whether the question carries no answer options.
func (q *Question) IsOpenEnded() bool {
	return len(q.Options) == 0
}

func (q *Question) Type() QuestionType {
	if q.IsOpenEnded() {
		return OpenEnded
	}
	return MultipleChoice
}

// QuestionOwner identifies what a parsed question is attached to.
type QuestionOwner struct {
	ExamID   *uint
	LessonID *uint
}

func ExamOwner(examID uint) QuestionOwner {
	return QuestionOwner{ExamID: &examID}
}

// AnswerLog is one submitted answer to one question.
type AnswerLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	QuestionID uint      `json:"question_id" gorm:"not null;index"`
	LearnerID  string    `json:"learner_id" gorm:"not null;size:255;index"`
	Answer     string    `json:"answer" gorm:"type:text"`
	Awarded    int       `json:"awarded" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AnswerLog) TableName() string {
	return "question_answer_logs"
}
