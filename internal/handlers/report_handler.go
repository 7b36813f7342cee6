package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"campuscore/internal/services"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// @Summary      Personnel summary
// @Description  Headcount per role plus admissions for the current intake.
// @Tags         Reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  services.PersonnelSummary
// @Failure      500  {object}  map[string]string
// @Router       /reports/personnel [get]
func (h *ReportHandler) PersonnelSummary(c *gin.Context) {
	summary, err := h.reportService.PersonnelSummary()
	if err != nil {
		log.Printf("[report][personnel] failed: err=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
