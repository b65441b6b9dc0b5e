package models

import (
	"time"

	"gorm.io/datatypes"
)

// ExamResult is the single current outcome of one learner attempting one exam.
type ExamResult struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ExamID     uint   `json:"exam_id" gorm:"not null;uniqueIndex:idx_exam_result_exam_learner"`
	LearnerID  string `json:"learner_id" gorm:"not null;size:255;uniqueIndex:idx_exam_result_exam_learner"`
	MCScore    int    `json:"mc_score" gorm:"not null;default:0"`
	OpenScore  int    `json:"open_score" gorm:"not null;default:0"`
	EssayScore int    `json:"essay_score" gorm:"not null;default:0"`
	TotalScore int    `json:"total_score" gorm:"not null;default:0"`
	Passed     bool   `json:"passed" gorm:"not null;default:false"`
	Feedback   string `json:"feedback" gorm:"type:text"`

	// Raw rubric returned by the essay grader, empty when grading fell back
	EssayRubric datatypes.JSON `json:"essay_rubric,omitempty"`

	SubmittedAt time.Time `json:"submitted_at" gorm:"not null"`
}

func (ExamResult) TableName() string {
	return "exam_results"
}
