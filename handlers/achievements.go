package handlers

import (
	"net/http"

	"gamehub/models"
	"gamehub/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListAchievements(c *gin.Context) {
	gameID, ok := paramID(c, "id")
	if !ok {
		return
	}
	achievements, err := h.Achievements.ListForGame(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, achievements)
}

func (h *Handler) CreateAchievement(c *gin.Context) {
	gameID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input models.AchievementInput
	if !utils.BindAndValidate(c, &input) {
		return
	}
	achievement, err := h.Achievements.Create(c.Request.Context(), gameID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, achievement)
}

func (h *Handler) UpdateAchievement(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input models.AchievementInput
	if !utils.BindAndValidate(c, &input) {
		return
	}
	achievement, err := h.Achievements.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, achievement)
}

func (h *Handler) DeleteAchievement(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Achievements.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
