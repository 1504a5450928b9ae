package handlers

import (
	"net/http"
	"time"

	"gamehub/cache"
	"gamehub/concurrent"
	"gamehub/db"
	"gamehub/monitoring"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats - admin dashboard, aggregates computed in parallel
// GET /stats
func (h *Handler) GetDashboardStats(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()

	stats, err := cache.Remember(ctx, h.Cache, cache.StatsCacheKey, cache.StatsTTL, func() (*concurrent.DashboardStats, error) {
		return concurrent.CalculateDashboardStats(ctx, h.DB)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	monitoring.TotalUsers.Set(float64(stats.TotalUsers))
	monitoring.TotalGames.Set(float64(stats.TotalGames))

	c.JSON(http.StatusOK, gin.H{
		"statistics":       stats,
		"calculation_time": time.Since(start).String(),
	})
}

// Health reports liveness and database reachability. GET /health
func (h *Handler) Health(c *gin.Context) {
	status := gin.H{"status": "ok", "database": "ok", "cache": "disabled"}
	code := http.StatusOK

	if err := db.Ping(h.DB); err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	if h.Cache.Enabled() {
		status["cache"] = "ok"
		if _, err := h.Cache.Stats(c.Request.Context()); err != nil {
			status["cache"] = err.Error()
		}
	}
	c.JSON(code, status)
}
