package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxRealIPKey = "real_ip"

// RealIP sets the client IP into the Gin context under CtxRealIPKey.
// With trustProxyHeaders the order is CF-Connecting-IP, then the left-most
// X-Forwarded-For entry, then c.ClientIP(). Without it only c.ClientIP() is
// used, so clients cannot pick their own rate-limit bucket.
func RealIP(trustProxyHeaders bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if trustProxyHeaders {
			if ip := headerIP(c); ip != "" {
				c.Set(CtxRealIPKey, ip)
				c.Next()
				return
			}
		}
		c.Set(CtxRealIPKey, c.ClientIP())
		c.Next()
	}
}

func headerIP(c *gin.Context) string {
	if cf := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); cf != "" {
		if ip := net.ParseIP(cf); ip != nil {
			return ip.String()
		}
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
