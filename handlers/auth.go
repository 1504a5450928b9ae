package handlers

import (
	"net/http"
	"strings"

	"gamehub/models"
	"gamehub/services"
	"gamehub/utils"

	"github.com/gin-gonic/gin"
)

const (
	principalKey = "principal"
	userKey      = "user"
	userIDKey    = "user_id"
)

// Register creates an account and returns it with its first token.
func (h *Handler) Register(c *gin.Context) {
	var input models.RegisterInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	user, token, err := h.Auth.Register(c.Request.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "User registered successfully",
		"user":       user,
		"token":      token,
		"token_type": "bearer",
	})
}

func (h *Handler) Login(c *gin.Context) {
	var input models.LoginInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	user, token, err := h.Auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		utils.LogWarn("Login failed", map[string]interface{}{"email": input.Email, "ip": c.ClientIP()})
		respondError(c, err)
		return
	}

	utils.LogInfo("User logged in", map[string]interface{}{"user_id": user.ID})
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Logout revokes the token the request was made with.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), principal(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, c.MustGet(userKey).(models.User))
}

// AuthMiddleware resolves the bearer token into a principal once per request.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, p, err := h.Auth.Authenticate(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		c.Set(principalKey, p)
		c.Set(userKey, *user)
		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

// RequireRole lets the request through only when the principal's role grants required.
func RequireRole(required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !principal(c).Role.Can(required) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admins only"})
			return
		}
		c.Next()
	}
}

func principal(c *gin.Context) services.Principal {
	if p, ok := c.Get(principalKey); ok {
		return p.(services.Principal)
	}
	return services.Principal{}
}
