package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/service"
)

type ProjectHandler struct {
	svc *service.ProjectService
}

func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// Create handles POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var in service.CreateProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	project, err := h.svc.CreateProject(c.Request.Context(), GetUserID(c), &in)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, project)
}

// List handles GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.svc.ListProjects(c.Request.Context())
	if err != nil {
		InternalError(c, "list projects: "+err.Error())
		return
	}
	Success(c, gin.H{"items": projects})
}

// Get handles GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := ParamUint(c, "id")
	if !ok {
		return
	}
	project, err := h.svc.GetProject(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, project)
}

// Update handles PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := ParamUint(c, "id")
	if !ok {
		return
	}
	var patch service.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	project, err := h.svc.UpdateProject(c.Request.Context(), GetUserID(c), id, &patch)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, project)
}

// Delete handles DELETE /projects/:id (admin only, gated at the route)
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := ParamUint(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteProject(c.Request.Context(), id); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "deleted"})
}

// Changes handles GET /projects/:id/changes?limit=N
func (h *ProjectHandler) Changes(c *gin.Context) {
	id, ok := ParamUint(c, "id")
	if !ok {
		return
	}
	limit := 10
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	changes, err := h.svc.ListChanges(c.Request.Context(), id, limit)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": changes})
}
