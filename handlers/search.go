package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SearchGames matches title and description. GET /games/search?q=
func (h *Handler) SearchGames(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Search query is required",
			"errors": gin.H{"q": "q is required"},
		})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	start := time.Now()
	games, err := h.Games.Search(c.Request.Context(), query, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":       query,
		"results":     games,
		"total_found": len(games),
		"search_time": time.Since(start).String(),
	})
}
