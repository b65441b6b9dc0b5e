package models

import (
	"time"
)

type Exam struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	CourseID        *uint     `json:"course_id" gorm:"uniqueIndex"`
	ExamDate        time.Time `json:"exam_date" gorm:"not null"`
	DurationMinutes int       `json:"duration_minutes" gorm:"not null"`
	EssayTopic      string    `json:"essay_topic" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Course    *Course    `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Questions []Question `json:"questions" gorm:"foreignKey:ExamID"`
}

func (Exam) TableName() string {
	return "exams"
}

// Course is the slice of the course catalogue the exam lifecycle needs.
type Course struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"type:text"`
	ExamID      *uint   `json:"exam_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

// Enrollment is the registration record a learner fills in for a course.
// EncryptedPIN holds the personal identifier sealed by the encryption service.
type Enrollment struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	LearnerID    string    `json:"learner_id" gorm:"not null;size:255;uniqueIndex:idx_enrollment_learner_course"`
	CourseID     uint      `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_learner_course"`
	FullName     string    `json:"full_name" gorm:"not null;size:200"`
	EncryptedPIN string    `json:"-" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
