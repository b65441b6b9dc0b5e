// Package events publishes exam lifecycle events to the message bus.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "exam-service"
	EventVersion = "1.0"
)

type EventType string

const (
	ExamResultSubmitted EventType = "exam.result_submitted"
	ExamDeleted         EventType = "exam.deleted"
)

type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type ResultSubmittedData struct {
	ExamID     uint   `json:"exam_id"`
	LearnerID  string `json:"learner_id"`
	TotalScore int    `json:"total_score"`
	Passed     bool   `json:"passed"`
	EssayScore int    `json:"essay_score"`
	Degraded   bool   `json:"essay_degraded"`
}

type ExamDeletedData struct {
	ExamID            uint  `json:"exam_id"`
	CourseID          *uint `json:"course_id,omitempty"`
	QuestionsDeleted  int64 `json:"questions_deleted"`
	ResultsDeleted    int64 `json:"results_deleted"`
	AnswerLogsDeleted int64 `json:"answer_logs_deleted"`
}

// EventPublisher is implemented by the bus-backed publisher and by MockEventPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
