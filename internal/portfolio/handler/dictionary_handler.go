package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/service"
)

type DictionaryHandler struct {
	svc *service.DictionaryService
}

func NewDictionaryHandler(svc *service.DictionaryService) *DictionaryHandler {
	return &DictionaryHandler{svc: svc}
}

type createTypeRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateType handles POST /dictionaries/types (admin only)
func (h *DictionaryHandler) CreateType(c *gin.Context) {
	var req createTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	t, err := h.svc.CreateType(c.Request.Context(), req.Name)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, t)
}

// ListTypes handles GET /dictionaries/types
func (h *DictionaryHandler) ListTypes(c *gin.Context) {
	types, err := h.svc.ListTypes(c.Request.Context())
	if err != nil {
		InternalError(c, "list dictionary types: "+err.Error())
		return
	}
	Success(c, gin.H{"items": types})
}

type createItemRequest struct {
	TypeID      uint     `json:"type_id" binding:"required"`
	Value       string   `json:"value" binding:"required"`
	Probability *float64 `json:"probability"`
}

// CreateItem handles POST /dictionaries/items (admin only)
func (h *DictionaryHandler) CreateItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	item, err := h.svc.CreateItem(c.Request.Context(), req.TypeID, req.Value, req.Probability)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, item)
}

// ListItems handles GET /dictionaries/items?type_id=N
func (h *DictionaryHandler) ListItems(c *gin.Context) {
	var typeID uint
	if t := c.Query("type_id"); t != "" {
		v, err := strconv.ParseUint(t, 10, 32)
		if err != nil {
			BadRequest(c, "invalid type_id")
			return
		}
		typeID = uint(v)
	}
	items, err := h.svc.ListItems(c.Request.Context(), typeID)
	if err != nil {
		InternalError(c, "list dictionary items: "+err.Error())
		return
	}
	Success(c, gin.H{"items": items})
}
