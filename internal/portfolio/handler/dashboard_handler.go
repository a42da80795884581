package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/service"
)

type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Stats handles GET /dashboard/stats?start=RFC3339&end=RFC3339
func (h *DashboardHandler) Stats(c *gin.Context) {
	var start, end time.Time
	if v := c.Query("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			BadRequest(c, "invalid start, expected RFC3339 timestamp")
			return
		}
		start = t
	}
	if v := c.Query("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			BadRequest(c, "invalid end, expected RFC3339 timestamp")
			return
		}
		end = t
	}
	stats, err := h.svc.Stats(c.Request.Context(), start, end)
	if err != nil {
		InternalError(c, "dashboard stats: "+err.Error())
		return
	}
	Success(c, stats)
}

// Gantt handles GET /dashboard/gantt/:id
func (h *DashboardHandler) Gantt(c *gin.Context) {
	id, ok := ParamUint(c, "id")
	if !ok {
		return
	}
	data, err := h.svc.Gantt(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, data)
}
