package db

import (
	"time"

	"gamehub/models"
	"gamehub/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seed inserts a minimal catalog. Running it twice is harmless.
func Seed(conn *gorm.DB) error {
	return conn.Transaction(func(tx *gorm.DB) error {
		dev := models.Developer{Name: "SuperDev Studios"}
		if err := tx.Where(models.Developer{Name: dev.Name}).FirstOrCreate(&dev).Error; err != nil {
			return err
		}
		pub := models.Publisher{Name: "MegaPublisher"}
		if err := tx.Where(models.Publisher{Name: pub.Name}).FirstOrCreate(&pub).Error; err != nil {
			return err
		}

		var genres []models.Genre
		for _, name := range []string{"Action", "RPG"} {
			g := models.Genre{Name: name}
			if err := tx.Where(models.Genre{Name: name}).FirstOrCreate(&g).Error; err != nil {
				return err
			}
			genres = append(genres, g)
		}
		var platforms []models.Platform
		for _, name := range []string{"PC", "PlayStation 5"} {
			p := models.Platform{Name: name}
			if err := tx.Where(models.Platform{Name: name}).FirstOrCreate(&p).Error; err != nil {
				return err
			}
			platforms = append(platforms, p)
		}

		release := datatypes.Date(time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC))
		game := models.Game{
			Title:       "Epic Quest",
			Slug:        "epic-quest",
			DeveloperID: &dev.ID,
			PublisherID: &pub.ID,
			ReleaseDate: &release,
			Price:       39.99,
			Description: "A great adventure game",
		}
		if err := tx.Where(models.Game{Slug: game.Slug}).FirstOrCreate(&game).Error; err != nil {
			return err
		}
		if err := tx.Model(&game).Association("Genres").Replace(genres); err != nil {
			return err
		}
		if err := tx.Model(&game).Association("Platforms").Replace(platforms); err != nil {
			return err
		}

		utils.LogInfo("Database seeded", map[string]interface{}{"game_id": game.ID})
		return nil
	})
}
