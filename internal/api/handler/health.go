package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// HealthCheck reports store reachability and the live viewer count.
func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	body := gin.H{
		"status":    "ok",
		"viewers":   h.Hub.Count(),
		"timestamp": time.Now().UTC(),
	}
	if err := h.Health.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("health check failed")
		body["status"] = "unavailable"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
