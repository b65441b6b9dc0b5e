package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursehub/exam-service/internal/services"
	"github.com/coursehub/exam-service/internal/utils"
)

type CertificateHandler struct {
	BaseHandler
	certificateService services.CertificateService
}

func NewCertificateHandler(certificateService services.CertificateService, logger utils.Logger) *CertificateHandler {
	return &CertificateHandler{
		BaseHandler:        NewBaseHandler(logger),
		certificateService: certificateService,
	}
}

// GetCertificate renders the caller's certificate for a passed exam
// @Summary Download certificate
// @Tags certificates
// @Produce application/pdf
// @Param id path uint true "Exam ID"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /exams/{id}/certificate [get]
func (h *CertificateHandler) GetCertificate(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	learnerID := h.currentUserID(c)
	if learnerID == "" {
		return
	}

	h.LogRequest(c, "Issuing certificate", "exam_id", id, "learner_id", learnerID)

	pdf, err := h.certificateService.GetCertificate(c.Request.Context(), id, learnerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=certificate-exam-%d.pdf", id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
