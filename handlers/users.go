package handlers

import (
	"net/http"

	"gamehub/models"
	"gamehub/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser - self or admin
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := h.Users.Get(c.Request.Context(), id, principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser - users may rename themselves; role and ban flags need an admin
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input models.UpdateUserInput
	if !utils.BindAndValidate(c, &input) {
		return
	}
	user, err := h.Users.Update(c.Request.Context(), id, principal(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes the account with its reviews and purchases.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if id == principal(c).UserID {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "You cannot delete your own account"})
		return
	}

	ctx := c.Request.Context()
	if err := h.Users.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	// averages of the games the user reviewed changed
	h.Cache.InvalidateGames(ctx)

	utils.LogInfo("User deleted", map[string]interface{}{"user_id": id, "by_user": principal(c).UserID})
	c.Status(http.StatusNoContent)
}

func (h *Handler) BanUser(c *gin.Context) {
	h.setBanned(c, true)
}

func (h *Handler) UnbanUser(c *gin.Context) {
	h.setBanned(c, false)
}

func (h *Handler) setBanned(c *gin.Context, banned bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if banned && id == principal(c).UserID {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "You cannot ban yourself"})
		return
	}

	user, err := h.Users.SetBanned(c.Request.Context(), id, banned)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "User unbanned"
	if banned {
		message = "User banned"
	}
	utils.LogInfo(message, map[string]interface{}{"user_id": id, "by_user": principal(c).UserID})
	c.JSON(http.StatusOK, gin.H{"message": message, "user": user})
}
