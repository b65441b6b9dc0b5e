package validator

import "time"

// ExamCreateRequest creates a course's final exam together with its question set.
type ExamCreateRequest struct {
	CourseID        uint      `json:"course_id" validate:"required"`
	ExamDate        time.Time `json:"exam_date" validate:"not_zero_time"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,exam_duration"`
	EssayTopic      string    `json:"essay_topic" validate:"max=2000"`
	QuestionsText   string    `json:"questions_text" validate:"questions_text"`
}

// AddQuestionsRequest appends questions written in the compact grammar.
type AddQuestionsRequest struct {
	QuestionsText string `json:"questions_text" validate:"questions_text"`
}

// ParseQuestionsRequest previews a question block without persisting it.
type ParseQuestionsRequest struct {
	QuestionsText string `json:"questions_text" validate:"questions_text"`
}

// SubmitExamRequest maps question ids to the learner's answers.
type SubmitExamRequest struct {
	Answers map[uint]string `json:"answers" validate:"required"`
	Essay   string          `json:"essay" validate:"essay_text"`
}
