package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/service"
)

type CostHandler struct {
	svc *service.CostService
}

func NewCostHandler(svc *service.CostService) *CostHandler {
	return &CostHandler{svc: svc}
}

// Create handles POST /projects/:id/costs
func (h *CostHandler) Create(c *gin.Context) {
	projectID, ok := ParamUint(c, "id")
	if !ok {
		return
	}
	var in service.CreateCostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	cost, err := h.svc.CreateCost(c.Request.Context(), GetUserID(c), projectID, &in)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, cost)
}

// List handles GET /projects/:id/costs
func (h *CostHandler) List(c *gin.Context) {
	projectID, ok := ParamUint(c, "id")
	if !ok {
		return
	}
	costs, err := h.svc.ListCosts(c.Request.Context(), projectID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": costs})
}

// Get handles GET /projects/:id/costs/:costId
func (h *CostHandler) Get(c *gin.Context) {
	projectID, ok := ParamUint(c, "id")
	if !ok {
		return
	}
	costID, ok := ParamUint(c, "costId")
	if !ok {
		return
	}
	cost, err := h.svc.GetCost(c.Request.Context(), projectID, costID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, cost)
}

// Update handles PATCH /projects/:id/costs/:costId
func (h *CostHandler) Update(c *gin.Context) {
	projectID, ok := ParamUint(c, "id")
	if !ok {
		return
	}
	costID, ok := ParamUint(c, "costId")
	if !ok {
		return
	}
	var patch service.CostPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	cost, err := h.svc.UpdateCost(c.Request.Context(), GetUserID(c), projectID, costID, &patch)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, cost)
}

// Delete handles DELETE /projects/:id/costs/:costId (admin only)
func (h *CostHandler) Delete(c *gin.Context) {
	projectID, ok := ParamUint(c, "id")
	if !ok {
		return
	}
	costID, ok := ParamUint(c, "costId")
	if !ok {
		return
	}
	if err := h.svc.DeleteCost(c.Request.Context(), GetUserID(c), projectID, costID); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "cost deleted"})
}
