package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-portfolio-tracker/internal/interface/http"
	"github.com/oksasatya/go-portfolio-tracker/internal/interface/middleware"
)

type TransactionModule struct {
	Handler  *handlers.TransactionHandler
	Verifier middleware.TokenVerifier
	Limits   Limits
}

func NewTransactionModule(h *handlers.TransactionHandler, verifier middleware.TokenVerifier, limits Limits) *TransactionModule {
	return &TransactionModule{Handler: h, Verifier: verifier, Limits: limits}
}

func (m *TransactionModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/transactions")
	auth.Use(middleware.Auth(m.Verifier), m.Limits.perUser())
	{
		auth.POST("", m.Handler.Create)
		auth.GET("", m.Handler.List)
		// static segment wins over :id in gin's tree
		auth.GET("/search", m.Handler.Search)
		auth.GET("/:id", m.Handler.Get)
	}
}
