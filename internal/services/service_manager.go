package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coursehub/exam-service/internal/certificate"
	"github.com/coursehub/exam-service/internal/crypto"
	"github.com/coursehub/exam-service/internal/essay"
	"github.com/coursehub/exam-service/internal/events"
	"github.com/coursehub/exam-service/internal/repositories"
	"github.com/coursehub/exam-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	EssayTimeout time.Duration
}

// ServiceDependencies are the collaborators shared by the services.
type ServiceDependencies struct {
	Repo      repositories.Repository
	Logger    *slog.Logger
	Validator *validator.Validator
	Grader    essay.Grader
	Publisher events.EventPublisher
	Decryptor crypto.Decryptor
	Renderer  certificate.Renderer
}

type serviceManager struct {
	deps   ServiceDependencies
	config ServiceManagerConfig
	logger *slog.Logger

	examService        ExamService
	gradingService     GradingService
	resultService      ResultService
	certificateService CertificateService
	exportService      ExportService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(deps ServiceDependencies, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		deps:   deps,
		config: config,
		logger: deps.Logger,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(deps ServiceDependencies) ServiceManager {
	return NewServiceManager(deps, ServiceManagerConfig{EssayTimeout: DefaultEssayTimeout})
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.checkDependencies(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	d := sm.deps
	sm.gradingService = NewGradingService(d.Repo, d.Grader, d.Logger, sm.config.EssayTimeout)
	sm.resultService = NewResultService(d.Repo, sm.gradingService, d.Publisher, d.Logger, d.Validator)
	sm.examService = NewExamService(d.Repo, NewQuestionParser(), d.Publisher, d.Logger, d.Validator)
	sm.certificateService = NewCertificateService(d.Repo, d.Decryptor, d.Renderer, d.Logger)
	sm.exportService = NewExportService(d.Repo, sm.resultService, d.Logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully", "essay_grader", d.Grader.Name())

	return nil
}

func (sm *serviceManager) checkDependencies() error {
	d := sm.deps
	switch {
	case d.Repo == nil:
		return fmt.Errorf("repository is required")
	case d.Logger == nil:
		return fmt.Errorf("logger is required")
	case d.Validator == nil:
		return fmt.Errorf("validator is required")
	case d.Publisher == nil:
		return fmt.Errorf("event publisher is required")
	case d.Decryptor == nil:
		return fmt.Errorf("decryptor is required")
	case d.Renderer == nil:
		return fmt.Errorf("certificate renderer is required")
	}
	if d.Grader == nil {
		sm.deps.Grader = essay.Disabled{}
	}
	return nil
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Service getters
func (sm *serviceManager) Exam() ExamService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.examService
}

func (sm *serviceManager) Grading() GradingService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.gradingService
}

func (sm *serviceManager) Result() ResultService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.resultService
}

func (sm *serviceManager) Certificate() CertificateService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.certificateService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.exportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.deps.Publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
