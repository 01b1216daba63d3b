package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-portfolio-tracker/internal/container"
	"github.com/oksasatya/go-portfolio-tracker/internal/interface/middleware"
	"github.com/oksasatya/go-portfolio-tracker/pkg/response"
)

// NewEngine builds the Gin engine with the global middleware chain and all
// modules registered from c.
func NewEngine(c *container.Container) *gin.Engine {
	cfg := c.Config

	r := gin.New()
	if !cfg.TrustProxyHeaders {
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		c.Logger.WithField("request_id", ctx.GetString("request_id")).Errorf("panic recovered: %v", recovered)
		resp := response.Error[any](ctx, http.StatusInternalServerError, "internal error", nil)
		ctx.AbortWithStatusJSON(resp.Status, resp)
	}))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(cfg.TrustProxyHeaders))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(c.Logger))
	}

	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	reg := NewRegistry(r)
	reg.Use(middleware.Errors(c.Logger), middleware.Deadline(cfg.RequestTimeout))
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}
