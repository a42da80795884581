package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/service"
)

// Handlers bundles the HTTP handlers over the business services.
type Handlers struct {
	Auth       *AuthHandler
	Dictionary *DictionaryHandler
	Project    *ProjectHandler
	Revenue    *RevenueHandler
	Cost       *CostHandler
	Report     *ReportHandler
	Dashboard  *DashboardHandler
}

func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc.Auth),
		Dictionary: NewDictionaryHandler(svc.Dictionary),
		Project:    NewProjectHandler(svc.Project),
		Revenue:    NewRevenueHandler(svc.Revenue),
		Cost:       NewCostHandler(svc.Cost),
		Report:     NewReportHandler(svc.Report),
		Dashboard:  NewDashboardHandler(svc.Dashboard),
	}
}

// Response is the common envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// ServiceError maps each service error kind to its own status so the kind
// survives end-to-end.
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrInvalidReference),
		errors.Is(err, service.ErrInvalidStage),
		errors.Is(err, service.ErrConstraintViolation),
		errors.Is(err, service.ErrInvalidField):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		Unauthorized(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID returns the authenticated user id set by the JWT middleware.
func GetUserID(c *gin.Context) uint {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(uint); ok {
		return id
	}
	return 0
}

// ParamUint parses a numeric path parameter; 0 with false means it was bad
// and a 400 has already been written.
func ParamUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}
