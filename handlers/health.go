package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"restaurant-admin-api/services"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	b       *services.Backends
	version string
}

func NewHealthHandler(b *services.Backends, version string) *HealthHandler {
	return &HealthHandler{b: b, version: version}
}

// Health reports which tiers are available. The service stays healthy while
// the fallback tier is enabled, even if the primary store is down.
func (h *HealthHandler) Health(c *gin.Context) {
	primary := "disabled"
	if h.b.Primary != nil {
		primary = "ok"
		if p, ok := h.b.Primary.(pinger); ok {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			if err := p.Ping(ctx); err != nil {
				primary = "unreachable: " + err.Error()
			}
			cancel()
		}
	}
	fallback := "disabled"
	if h.b.Fallback != nil {
		fallback = "ok"
	}
	pooled := 0
	if h.b.Pool != nil {
		pooled = h.b.Pool.Len()
	}

	status := "healthy"
	code := http.StatusOK
	if primary != "ok" && fallback != "ok" {
		status, code = "unhealthy", http.StatusServiceUnavailable
	} else if primary != "ok" && primary != "disabled" {
		status = "degraded"
	}
	c.JSON(code, gin.H{
		"status":  status,
		"service": "Restaurant Admin API",
		"version": h.version,
		"tiers": gin.H{
			"primary":  primary,
			"fallback": fallback,
			"external": gin.H{"pooled_connections": pooled},
		},
	})
}
