package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, token)
}

// Logout handles POST /auth/logout and revokes the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	jti := c.GetString("jti")
	if jti == "" {
		BadRequest(c, "token has no id, cannot revoke")
		return
	}
	var expiresAt time.Time
	if v, ok := c.Get("token_exp"); ok {
		if t, ok := v.(time.Time); ok {
			expiresAt = t
		}
	}
	if err := h.svc.Logout(c.Request.Context(), jti, expiresAt); err != nil {
		InternalError(c, "revoke token: "+err.Error())
		return
	}
	Success(c, gin.H{"message": "logged out"})
}

// CreateUser handles POST /users (admin only)
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var in service.CreateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	user, err := h.svc.CreateUser(c.Request.Context(), &in)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, user)
}

// ListUsers handles GET /users (admin only)
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		InternalError(c, "list users: "+err.Error())
		return
	}
	Success(c, gin.H{"items": users})
}
