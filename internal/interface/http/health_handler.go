package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-portfolio-tracker/pkg/response"
)

// HealthCheck pings one dependency.
type HealthCheck = func(ctx context.Context) error

type HealthHandler struct {
	Checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{Checks: checks}
}

// Healthz GET /api/healthz
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := map[string]string{}
	for _, name := range names {
		if err := h.Checks[name](ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		resp := response.Error[any](c, http.StatusServiceUnavailable, "unhealthy", failed)
		c.JSON(resp.Status, resp)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"ok": true}, "healthy", nil)
}
