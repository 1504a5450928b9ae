package handlers

import (
	"net/http"

	"gamehub/cache"
	"gamehub/models"
	"gamehub/monitoring"
	"gamehub/utils"

	"github.com/gin-gonic/gin"
)

// ListReviews - every review, newest first
func (h *Handler) ListReviews(c *gin.Context) {
	reviews, err := h.Reviews.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *Handler) GetReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	review, err := h.Reviews.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// ListGameReviews with Redis caching
func (h *Handler) ListGameReviews(c *gin.Context) {
	gameID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	reviews, err := cache.Remember(ctx, h.Cache, cache.ReviewsKey(gameID), cache.ReviewsTTL, func() ([]models.Review, error) {
		return h.Reviews.ListForGame(ctx, gameID)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// SubmitReview serves POST /reviews and POST /games/:id/reviews. The path id
// wins over game_id in the body.
func (h *Handler) SubmitReview(c *gin.Context) {
	var input models.ReviewInput
	if !utils.BindAndValidate(c, &input) {
		return
	}
	if c.Param("id") != "" {
		gameID, ok := paramID(c, "id")
		if !ok {
			return
		}
		input.GameID = gameID
	}
	if input.GameID == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Validation failed",
			"errors": gin.H{"game_id": "game_id is required"},
		})
		return
	}

	ctx := c.Request.Context()
	review, err := h.Reviews.Submit(ctx, input.GameID, principal(c).UserID, input.Rating, input.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	monitoring.ReviewsSubmitted.Inc()
	h.Cache.InvalidateGame(ctx, review.GameID)

	c.JSON(http.StatusCreated, review)
}

func (h *Handler) UpdateReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input models.UpdateReviewInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	ctx := c.Request.Context()
	review, err := h.Reviews.Update(ctx, id, principal(c), input.Rating, input.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Cache.InvalidateGame(ctx, review.GameID)
	c.JSON(http.StatusOK, review)
}

// DeleteReview with cache invalidation
func (h *Handler) DeleteReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	review, err := h.Reviews.Delete(ctx, id, principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.Cache.InvalidateGame(ctx, review.GameID)
	c.Status(http.StatusNoContent)
}
