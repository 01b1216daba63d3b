package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-portfolio-tracker/internal/application"
	"github.com/oksasatya/go-portfolio-tracker/internal/interface/middleware"
	"github.com/oksasatya/go-portfolio-tracker/pkg/response"
)

type AuthHandler struct {
	Svc *application.AuthService
}

func NewAuthHandler(svc *application.AuthService) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(middleware.BindError(err))
		return
	}
	tok, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusCreated, tokenResponse{Token: tok.Token, ExpiresAt: tok.ExpiresAt}, "registered", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(middleware.BindError(err))
		return
	}
	tok, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, http.StatusOK, tokenResponse{Token: tok.Token, ExpiresAt: tok.ExpiresAt}, "login successful", nil)
}
