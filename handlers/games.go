package handlers

import (
	"net/http"
	"strings"

	"gamehub/cache"
	"gamehub/models"
	"gamehub/services"
	"gamehub/utils"

	"github.com/gin-gonic/gin"
)

// ListGames serves GET /games. The unfiltered list is cached.
func (h *Handler) ListGames(c *gin.Context) {
	ctx := c.Request.Context()
	filter := services.GameFilter{
		GenreID:    queryID(c, "genre_id"),
		PlatformID: queryID(c, "platform_id"),
		Query:      strings.TrimSpace(c.Query("q")),
	}

	var (
		games []models.Game
		err   error
	)
	if filter == (services.GameFilter{}) {
		games, err = cache.Remember(ctx, h.Cache, cache.GamesCacheKey, cache.ListTTL, func() ([]models.Game, error) {
			return h.Games.List(ctx, filter)
		})
	} else {
		games, err = h.Games.List(ctx, filter)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

func (h *Handler) GetGame(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	game, err := cache.Remember(ctx, h.Cache, cache.GameKey(id), cache.GameTTL, func() (*models.Game, error) {
		return h.Games.Get(ctx, id)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

func (h *Handler) CreateGame(c *gin.Context) {
	var input models.GameInput
	if !utils.BindAndValidate(c, &input) {
		return
	}
	game, err := h.Games.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Cache.InvalidateGame(c.Request.Context(), game.ID)

	utils.LogInfo("Game created", map[string]interface{}{"game_id": game.ID, "by_user": principal(c).UserID})
	c.JSON(http.StatusCreated, game)
}

func (h *Handler) UpdateGame(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input models.GameInput
	if !utils.BindAndValidate(c, &input) {
		return
	}
	game, err := h.Games.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Cache.InvalidateGame(c.Request.Context(), id)
	c.JSON(http.StatusOK, game)
}

func (h *Handler) DeleteGame(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Games.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.Cache.InvalidateGame(c.Request.Context(), id)

	utils.LogInfo("Game deleted", map[string]interface{}{"game_id": id, "by_user": principal(c).UserID})
	c.Status(http.StatusNoContent)
}
