package services

import (
	"context"
	"testing"

	"github.com/coursehub/exam-service/internal/events"
	"github.com/coursehub/exam-service/internal/validator"
)

func TestServiceManager_Initialize(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	sm := NewDefaultServiceManager(ServiceDependencies{
		Repo:      repo,
		Logger:    testLogger(),
		Validator: validator.New(),
		Publisher: events.NewMockEventPublisher(testLogger()),
		Decryptor: fakeDecryptor{plain: "PIN"},
		Renderer:  &fakeRenderer{out: []byte("pdf")},
	})

	if err := sm.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() before Initialize should fail")
	}
	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if sm.Exam() == nil || sm.Grading() == nil || sm.Result() == nil || sm.Certificate() == nil || sm.Export() == nil {
		t.Fatal("service getter returned nil")
	}
	if err := sm.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if err := sm.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := sm.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() after Shutdown should fail")
	}
}

func TestServiceManager_MissingDependency(t *testing.T) {
	sm := NewDefaultServiceManager(ServiceDependencies{Logger: testLogger()})
	if err := sm.Initialize(context.Background()); err == nil {
		t.Fatal("Initialize() accepted a missing repository")
	}
}
