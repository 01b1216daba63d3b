package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-portfolio-tracker/internal/interface/middleware"
)

// Limits carries the rate-limit settings shared by the modules.
// A nil Redis disables limiting.
type Limits struct {
	Redis  *redis.Client
	Auth   int
	User   int
	Window time.Duration
}

func (l Limits) perIPAndPath(max int) gin.HandlerFunc {
	return middleware.RateLimit(l.Redis, max, l.Window, middleware.KeyByIPAndPath(), nil)
}

func (l Limits) perUser() gin.HandlerFunc {
	return middleware.RateLimit(l.Redis, l.User, l.Window, middleware.KeyByUserID(), nil)
}
