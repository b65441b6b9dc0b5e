package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/coursehub/exam-service/internal/certificate"
	"github.com/coursehub/exam-service/internal/config"
	"github.com/coursehub/exam-service/internal/crypto"
	"github.com/coursehub/exam-service/internal/essay"
	"github.com/coursehub/exam-service/internal/events"
	"github.com/coursehub/exam-service/internal/handlers"
	"github.com/coursehub/exam-service/internal/repositories/casdoor"
	"github.com/coursehub/exam-service/internal/repositories/postgres"
	"github.com/coursehub/exam-service/internal/services"
	"github.com/coursehub/exam-service/internal/utils"
	"github.com/coursehub/exam-service/internal/validator"
	"github.com/coursehub/exam-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without cache", "error", err)
			redisClient = nil
		}
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		CasdoorConfig: casdoor.CasdoorConfig{
			Endpoint:         cfg.Casdoor.Endpoint,
			ClientID:         cfg.Casdoor.ClientID,
			ClientSecret:     cfg.Casdoor.ClientSecret,
			Certificate:      cfg.Casdoor.Cert,
			OrganizationName: cfg.Casdoor.Organization,
			ApplicationName:  cfg.Casdoor.Application,
		},
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	repo := repoManager.GetRepository()

	// Essay grader
	grader, err := essay.New(context.Background(), essay.Config{
		Provider: cfg.Essay.Provider,
		APIKey:   cfg.Essay.APIKey,
		BaseURL:  cfg.Essay.BaseURL,
		Model:    cfg.Essay.Model,
	})
	if err != nil {
		log.Fatalf("Failed to initialize essay grader: %v", err)
	}

	// Domain events: Kafka when brokers are configured, in-process otherwise
	var publisher events.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize event publisher: %v", err)
		}
	} else {
		publisher, _ = events.NewInProcessPublisher(cfg.Kafka.Topic, slogLogger)
	}

	pinCipher, err := crypto.NewPINCipherFromBase64(cfg.PINEncryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize PIN cipher: %v", err)
	}

	// Initialize services
	serviceManager := services.NewServiceManager(services.ServiceDependencies{
		Repo:      repo,
		Logger:    slogLogger,
		Validator: validator.New(),
		Grader:    grader,
		Publisher: publisher,
		Decryptor: pinCipher,
		Renderer:  certificate.NewPDFRenderer(cfg.CertificateIssuer),
	}, services.ServiceManagerConfig{
		EssayTimeout: cfg.Essay.Timeout,
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger, cfg.AllowedOrigins)

	auth := handlers.NewCasdoorAuthMiddleware(cfg.Casdoor, repo.User())
	handlers.NewHandlerManager(serviceManager, logger, auth.AuthMiddleware()).SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment, "essay_provider", cfg.Essay.Provider)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	if closer, ok := grader.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close essay grader", "error", err)
		}
	}

	// Closes the database and Redis
	if err := repoManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to close repositories", "error", err)
	}

	logger.Info("Server exited")
}
