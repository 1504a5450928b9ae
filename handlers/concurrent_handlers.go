package handlers

import (
	"errors"
	"net/http"
	"time"

	"gamehub/concurrent"
	"gamehub/models"
	"gamehub/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetGameDetails - game with latest reviews, achievements and statistics
// GET /games/:id/details
func (h *Handler) GetGameDetails(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	start := time.Now()
	details, err := concurrent.FetchGameWithDetails(c.Request.Context(), h.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"game":           details.Game,
		"latest_reviews": details.Reviews,
		"achievements":   details.Achievements,
		"related_games":  details.RelatedGames,
		"statistics":     details.Statistics,
		"fetch_time_ms":  time.Since(start).Milliseconds(),
	})
}

// BulkUpdateGamePrices - percentage price change over many games
// POST /games/bulk-price
func (h *Handler) BulkUpdateGamePrices(c *gin.Context) {
	var input models.BulkPriceInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	ctx := c.Request.Context()
	start := time.Now()
	results := concurrent.BulkAdjustPrices(ctx, h.DB, input.GameIDs, input.Percent, h.BulkWorkers)

	updated := 0
	for _, r := range results {
		if r.Success {
			updated++
			h.Cache.InvalidateGame(ctx, r.GameID)
		}
	}

	utils.LogInfo("Bulk price update", map[string]interface{}{
		"games": len(results), "updated": updated, "percent": input.Percent, "by_user": principal(c).UserID,
	})
	c.JSON(http.StatusOK, gin.H{
		"results":       results,
		"updated":       updated,
		"failed":        len(results) - updated,
		"workers":       h.BulkWorkers,
		"processing_ms": time.Since(start).Milliseconds(),
	})
}
