package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/syriashof/shof/internal/middleware"
	"github.com/syriashof/shof/internal/services"
	"github.com/syriashof/shof/pkg/response"
)

// ReportHandler accepts viewer problem reports. Reports work signed out
// too, so the session here is optional.
type ReportHandler struct {
	reports *services.ReportService
}

// NewReportHandler builds the handler.
func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Create handles POST /api/report.
func (h *ReportHandler) Create(c *gin.Context) {
	var input services.ReportInput
	if !bindAndValidate(c, &input) {
		return
	}

	var userID string
	if user, ok := middleware.CurrentUser(c); ok {
		userID = user.ID
	}

	report, err := h.reports.Create(c.Request.Context(), userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"success": true, "reportId": report.ID})
}
