package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-portfolio-tracker/internal/interface/middleware"
)

type DebugModule struct {
	Limits Limits
}

func NewDebugModule(limits Limits) *DebugModule { return &DebugModule{Limits: limits} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// expvar counters (price fetches, stale quotes), rate-limited per IP; private networks bypass
	rl := middleware.RateLimit(m.Limits.Redis, m.Limits.User, m.Limits.Window, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
