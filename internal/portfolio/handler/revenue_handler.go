package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/service"
)

type RevenueHandler struct {
	svc *service.RevenueService
}

func NewRevenueHandler(svc *service.RevenueService) *RevenueHandler {
	return &RevenueHandler{svc: svc}
}

// Create handles POST /projects/:id/revenues
func (h *RevenueHandler) Create(c *gin.Context) {
	projectID, ok := ParamUint(c, "id")
	if !ok {
		return
	}
	var in service.CreateRevenueInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	revenue, err := h.svc.CreateRevenue(c.Request.Context(), GetUserID(c), projectID, &in)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, revenue)
}

// List handles GET /projects/:id/revenues
func (h *RevenueHandler) List(c *gin.Context) {
	projectID, ok := ParamUint(c, "id")
	if !ok {
		return
	}
	revenues, err := h.svc.ListRevenues(c.Request.Context(), projectID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": revenues})
}

// Get handles GET /projects/:id/revenues/:revenueId
func (h *RevenueHandler) Get(c *gin.Context) {
	projectID, ok := ParamUint(c, "id")
	if !ok {
		return
	}
	revenueID, ok := ParamUint(c, "revenueId")
	if !ok {
		return
	}
	revenue, err := h.svc.GetRevenue(c.Request.Context(), projectID, revenueID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, revenue)
}

// Update handles PATCH /projects/:id/revenues/:revenueId
func (h *RevenueHandler) Update(c *gin.Context) {
	projectID, ok := ParamUint(c, "id")
	if !ok {
		return
	}
	revenueID, ok := ParamUint(c, "revenueId")
	if !ok {
		return
	}
	var patch service.RevenuePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	revenue, err := h.svc.UpdateRevenue(c.Request.Context(), GetUserID(c), projectID, revenueID, &patch)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, revenue)
}

// Delete handles DELETE /projects/:id/revenues/:revenueId (admin only)
func (h *RevenueHandler) Delete(c *gin.Context) {
	projectID, ok := ParamUint(c, "id")
	if !ok {
		return
	}
	revenueID, ok := ParamUint(c, "revenueId")
	if !ok {
		return
	}
	if err := h.svc.DeleteRevenue(c.Request.Context(), GetUserID(c), projectID, revenueID); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "revenue deleted"})
}
