package handlers

import (
	"gamehub/cache"
	"gamehub/models"
	"gamehub/services"

	"gorm.io/gorm"
)

// Handler carries the services behind the HTTP routes.
type Handler struct {
	DB           *gorm.DB
	Cache        *cache.Cache
	Auth         *services.AuthService
	Users        *services.UserService
	Games        *services.GameService
	Reviews      *services.ReviewService
	Purchases    *services.PurchaseService
	Achievements *services.AchievementService
	Genres       *services.CatalogService[models.Genre, *models.Genre]
	Platforms    *services.CatalogService[models.Platform, *models.Platform]
	Developers   *services.CatalogService[models.Developer, *models.Developer]
	Publishers   *services.CatalogService[models.Publisher, *models.Publisher]

	// BulkWorkers sizes the worker pool of POST /games/bulk-price.
	BulkWorkers int
}

// New wires every service onto one connection. store may be nil.
func New(conn *gorm.DB, store *cache.Cache, auth *services.AuthService) *Handler {
	return &Handler{
		DB:           conn,
		Cache:        store,
		Auth:         auth,
		Users:        services.NewUserService(conn),
		Games:        services.NewGameService(conn),
		Reviews:      services.NewReviewService(conn),
		Purchases:    services.NewPurchaseService(conn),
		Achievements: services.NewAchievementService(conn),
		Genres:       services.NewGenreService(conn),
		Platforms:    services.NewPlatformService(conn),
		Developers:   services.NewDeveloperService(conn),
		Publishers:   services.NewPublisherService(conn),
		BulkWorkers:  4,
	}
}
