package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-portfolio-tracker/internal/interface/http"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Limits  Limits
}

func NewAuthModule(h *handlers.AuthHandler, limits Limits) *AuthModule {
	return &AuthModule{Handler: h, Limits: limits}
}

// Register mounts the public auth endpoints, rate-limited per IP and route.
func (m *AuthModule) Register(rg *gin.RouterGroup) {
	limiter := m.Limits.perIPAndPath(m.Limits.Auth)

	rg.POST("/auth/register", limiter, m.Handler.Register)
	rg.POST("/auth/login", limiter, m.Handler.Login)
}
