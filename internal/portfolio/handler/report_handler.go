package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/service"
)

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Generate handles POST /reports
func (h *ReportHandler) Generate(c *gin.Context) {
	var query service.ReportQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	report, err := h.svc.GenerateReport(c.Request.Context(), &query)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, report)
}

// Export handles POST /reports/export and streams an xlsx workbook.
func (h *ReportHandler) Export(c *gin.Context) {
	var query service.ReportQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	report, err := h.svc.GenerateReport(c.Request.Context(), &query)
	if err != nil {
		ServiceError(c, err)
		return
	}
	data, err := h.svc.ExportXLSX(report)
	if err != nil {
		InternalError(c, "export report: "+err.Error())
		return
	}
	filename := fmt.Sprintf("report_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.DataFromReader(http.StatusOK,
		int64(len(data)),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		bytes.NewReader(data), nil)
}
