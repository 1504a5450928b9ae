package handlers

import (
	"net/http"

	"gamehub/models"
	"gamehub/monitoring"
	"gamehub/utils"

	"github.com/gin-gonic/gin"
)

// RecordPurchase - buy a game. Admins may record a purchase for another user.
// POST /purchases
func (h *Handler) RecordPurchase(c *gin.Context) {
	var input models.PurchaseInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	p := principal(c)
	userID := p.UserID
	if input.UserID != nil && *input.UserID != p.UserID {
		if !p.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can record purchases for other users"})
			return
		}
		userID = *input.UserID
	}

	purchase, err := h.Purchases.Record(c.Request.Context(), userID, input.GameID, input.Price)
	if err != nil {
		respondError(c, err)
		return
	}
	monitoring.PurchasesRecorded.Inc()

	c.JSON(http.StatusCreated, purchase)
}

// MyPurchases - the caller's library
// GET /my/purchases
func (h *Handler) MyPurchases(c *gin.Context) {
	purchases, err := h.Purchases.ListForUser(c.Request.Context(), principal(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

func (h *Handler) GetPurchase(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	purchase, err := h.Purchases.Get(c.Request.Context(), id, principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func (h *Handler) UpdatePurchase(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input models.UpdatePurchaseInput
	if !utils.BindAndValidate(c, &input) {
		return
	}
	purchase, err := h.Purchases.UpdatePrice(c.Request.Context(), id, input.Price)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func (h *Handler) DeletePurchase(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Purchases.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
