package handlers

import (
	"time"

	"gamehub/middleware"
	"gamehub/models"
	"gamehub/monitoring"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterOptions struct {
	CORSOrigins []string
	// Requests per minute per client; 0 disables the limit.
	RateLimitPerMinute int
	// Stricter limit on /login and /register; 0 disables it.
	AuthRateLimitPerMinute int
}

// NewRouter builds the engine with the middleware chain and every route.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	limiter := middleware.NewRateLimiter(h.Cache)

	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.ErrorLogger(),
		monitoring.PrometheusMiddleware(),
		middleware.SecurityHeaders(),
		middleware.RemovePoweredBy(),
		cors.New(corsConfig(opts.CORSOrigins)),
		limiter.Limit("global", opts.RateLimitPerMinute, time.Minute),
	)

	r.GET("/health", h.Health)
	r.GET("/metrics", monitoring.PrometheusHandler())

	authLimit := limiter.Limit("auth", opts.AuthRateLimitPerMinute, time.Minute)
	r.POST("/register", authLimit, h.Register)
	r.POST("/login", authLimit, h.Login)

	// Public catalog
	r.GET("/games", h.ListGames)
	r.GET("/games/search", h.SearchGames)
	r.GET("/games/:id", h.GetGame)
	r.GET("/games/:id/details", h.GetGameDetails)
	r.GET("/games/:id/reviews", h.ListGameReviews)
	r.GET("/games/:id/achievements", h.ListAchievements)
	r.GET("/reviews", h.ListReviews)
	r.GET("/reviews/:id", h.GetReview)

	authed := r.Group("/", h.AuthMiddleware())
	{
		authed.POST("/logout", h.Logout)
		authed.GET("/me", h.Me)

		authed.POST("/reviews", h.SubmitReview)
		authed.POST("/games/:id/reviews", h.SubmitReview)
		authed.PUT("/reviews/:id", h.UpdateReview)
		authed.DELETE("/reviews/:id", h.DeleteReview)

		authed.POST("/purchases", h.RecordPurchase)
		authed.GET("/my/purchases", h.MyPurchases)
		authed.GET("/purchases/:id", h.GetPurchase)

		authed.GET("/users/:id", h.GetUser)
		authed.PUT("/users/:id", h.UpdateUser)
	}

	admin := r.Group("/", h.AuthMiddleware(), RequireRole(models.RoleAdmin))
	{
		admin.POST("/games", h.CreateGame)
		admin.POST("/games/bulk-price", h.BulkUpdateGamePrices)
		admin.PUT("/games/:id", h.UpdateGame)
		admin.DELETE("/games/:id", h.DeleteGame)

		admin.POST("/games/:id/achievements", h.CreateAchievement)
		admin.PUT("/achievements/:id", h.UpdateAchievement)
		admin.DELETE("/achievements/:id", h.DeleteAchievement)

		admin.PUT("/purchases/:id", h.UpdatePurchase)
		admin.DELETE("/purchases/:id", h.DeletePurchase)

		admin.GET("/users", h.ListUsers)
		admin.DELETE("/users/:id", h.DeleteUser)
		admin.POST("/users/:id/ban", h.BanUser)
		admin.POST("/users/:id/unban", h.UnbanUser)

		admin.GET("/stats", h.GetDashboardStats)
	}

	registerCatalog(r, admin, "/genres", h.Genres, h.Cache)
	registerCatalog(r, admin, "/platforms", h.Platforms, h.Cache)
	registerCatalog(r, admin, "/developers", h.Developers, h.Cache)
	registerCatalog(r, admin, "/publishers", h.Publishers, h.Cache)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader, "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
