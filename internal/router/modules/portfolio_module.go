package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-portfolio-tracker/internal/interface/http"
	"github.com/oksasatya/go-portfolio-tracker/internal/interface/middleware"
)

type PortfolioModule struct {
	Handler  *handlers.PortfolioHandler
	Verifier middleware.TokenVerifier
	Limits   Limits
}

func NewPortfolioModule(h *handlers.PortfolioHandler, verifier middleware.TokenVerifier, limits Limits) *PortfolioModule {
	return &PortfolioModule{Handler: h, Verifier: verifier, Limits: limits}
}

func (m *PortfolioModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/portfolio")
	auth.Use(middleware.Auth(m.Verifier), m.Limits.perUser())
	{
		auth.GET("", m.Handler.Get)
		auth.PUT("", m.Handler.Update)
		auth.POST("/export", m.Handler.Export)
	}
}
