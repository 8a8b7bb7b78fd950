package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type StatsProvider interface {
	GetStats() map[string]interface{}
}

type HealthHandler struct {
	Service string
	Version string

	// RateLimiter is nil when rate limiting is disabled.
	RateLimiter StatsProvider
}

func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":  "ok",
		"service": h.Service,
		"version": h.Version,
	}

	if h.RateLimiter != nil {
		body["rate_limiter"] = h.RateLimiter.GetStats()
	}

	c.JSON(http.StatusOK, body)
}
