package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursehub/exam-service/internal/services"
	"github.com/coursehub/exam-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
	exportService services.ExportService
}

func NewResultHandler(resultService services.ResultService, exportService services.ExportService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
		exportService: exportService,
	}
}

// SubmitExam grades a learner's answers and essay and stores the result
// @Summary Submit exam
// @Tags results
// @Accept json
// @Produce json
// @Param id path uint true "Exam ID"
// @Param submission body services.SubmitExamRequest true "Answers and essay"
// @Success 201 {object} services.SubmissionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id}/submissions [post]
func (h *ResultHandler) SubmitExam(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	learnerID := h.currentUserID(c)
	if learnerID == "" {
		return
	}

	var req services.SubmitExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Submitting exam", "exam_id", id, "learner_id", learnerID)

	resp, err := h.resultService.SubmitExam(c.Request.Context(), id, learnerID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetMyResult returns the caller's current result for an exam
// @Summary Get own result
// @Tags results
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {object} models.ExamResult
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id}/results/me [get]
func (h *ResultHandler) GetMyResult(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	learnerID := h.currentUserID(c)
	if learnerID == "" {
		return
	}

	result, err := h.resultService.GetResult(c.Request.Context(), id, learnerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetStats returns aggregate statistics for an exam
// @Summary Result statistics
// @Tags results
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {object} repositories.ExamResultStats
// @Router /exams/{id}/results/stats [get]
func (h *ResultHandler) GetStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	stats, err := h.resultService.GetStats(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportResults downloads every result of an exam as a spreadsheet
// @Summary Export results
// @Tags results
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Exam ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id}/results/export [get]
func (h *ResultHandler) ExportResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Exporting results", "exam_id", id)

	data, err := h.exportService.ExportResults(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=exam-%d-results.xlsx", id))
	c.Data(http.StatusOK, xlsxContentType, data)
}
