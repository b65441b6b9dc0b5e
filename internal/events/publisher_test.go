package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewEvent(t *testing.T) {
	event := NewEvent(ExamDeleted, ExamDeletedData{ExamID: 7})

	if event.ID == "" {
		t.Error("Event ID should not be empty")
	}
	if event.Source != "exam-service" {
		t.Errorf("Expected source 'exam-service', got '%s'", event.Source)
	}
	if event.Version != "1.0" {
		t.Errorf("Expected version '1.0', got '%s'", event.Version)
	}
	if event.Timestamp.IsZero() {
		t.Error("Event timestamp should not be zero")
	}
}

func TestWatermillPublisher_InProcess(t *testing.T) {
	publisher, pubSub := NewInProcessPublisher("exam-events", testLogger())
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "exam-events")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	event := NewEvent(ExamResultSubmitted, ResultSubmittedData{ExamID: 3, LearnerID: "learner-1", TotalScore: 31, Passed: true})
	if err := publisher.Publish(ctx, event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-messages:
		msg.Ack()
		if msg.UUID != event.ID {
			t.Errorf("message UUID = %s, want %s", msg.UUID, event.ID)
		}
		if got := msg.Metadata.Get("event_type"); got != string(ExamResultSubmitted) {
			t.Errorf("event_type metadata = %q", got)
		}

		var decoded struct {
			Type EventType           `json:"type"`
			Data ResultSubmittedData `json:"data"`
		}
		if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		if decoded.Data.LearnerID != "learner-1" || !decoded.Data.Passed {
			t.Errorf("payload data = %+v", decoded.Data)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(testLogger())
	ctx := context.Background()

	mock.Publish(ctx, NewEvent(ExamDeleted, nil))
	mock.Publish(ctx, NewEvent(ExamDeleted, nil))
	if got := len(mock.GetPublishedEvents()); got != 2 {
		t.Fatalf("Expected 2 events, got %d", got)
	}

	mock.ClearEvents()
	if got := len(mock.GetPublishedEvents()); got != 0 {
		t.Fatalf("Expected 0 events after clear, got %d", got)
	}

	mock.Err = errors.New("broker down")
	if err := mock.Publish(ctx, NewEvent(ExamDeleted, nil)); err == nil {
		t.Error("Publish() should fail when Err is set")
	}
}
