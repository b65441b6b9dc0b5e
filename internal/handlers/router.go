package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coursehub/exam-service/internal/models"
	"github.com/coursehub/exam-service/internal/services"
	"github.com/coursehub/exam-service/internal/utils"
)

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HandlerManager struct {
	examHandler        *ExamHandler
	resultHandler      *ResultHandler
	certificateHandler *CertificateHandler
	health             HealthChecker
	auth               gin.HandlerFunc
}

// NewHandlerManager wires handlers to services. auth is the authentication middleware,
// normally CasdoorAuthMiddleware.AuthMiddleware().
func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	auth gin.HandlerFunc,
) *HandlerManager {
	return &HandlerManager{
		examHandler:        NewExamHandler(serviceManager.Exam(), logger),
		resultHandler:      NewResultHandler(serviceManager.Result(), serviceManager.Export(), logger),
		certificateHandler: NewCertificateHandler(serviceManager.Certificate(), logger),
		health:             serviceManager,
		auth:               auth,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	authoring := RequireRole(models.RoleTeacher)
	learner := RequireRole(models.RoleLearner)

	v1 := router.Group("/api/v1")
	v1.Use(hm.auth)
	{
		exams := v1.Group("/exams")
		{
			exams.POST("", authoring, hm.examHandler.CreateExam)
			exams.GET("/:id", hm.examHandler.GetExam)
			exams.DELETE("/:id", authoring, hm.examHandler.DeleteExam)
			exams.POST("/:id/questions", authoring, hm.examHandler.AddQuestions)

			exams.POST("/:id/submissions", learner, hm.resultHandler.SubmitExam)
			exams.GET("/:id/results/me", hm.resultHandler.GetMyResult)
			exams.GET("/:id/results/stats", authoring, hm.resultHandler.GetStats)
			exams.GET("/:id/results/export", authoring, hm.resultHandler.ExportResults)

			exams.GET("/:id/certificate", learner, hm.certificateHandler.GetCertificate)
		}

		questions := v1.Group("/questions")
		{
			questions.POST("/parse", authoring, hm.examHandler.ParseQuestions)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "exam-service",
	}
	if err := hm.health.HealthCheck(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["error"] = err.Error()
	}
	c.JSON(status, body)
}
