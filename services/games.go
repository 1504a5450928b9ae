package services

import (
	"context"
	"strings"
	"time"

	"gamehub/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDuplicateSlug = &conflictError{msg: "slug already taken"}

type conflictError struct{ msg string }

func (e *conflictError) Error() string        { return e.msg }
func (e *conflictError) Is(target error) bool { return target == ErrConflict }

type GameFilter struct {
	GenreID    uint
	PlatformID uint
	Query      string
}

type GameService struct {
	db *gorm.DB
}

func NewGameService(db *gorm.DB) *GameService {
	return &GameService{db: db}
}

func withCatalog(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Developer").Preload("Publisher").Preload("Genres").Preload("Platforms")
}

func (s *GameService) List(ctx context.Context, f GameFilter) ([]models.Game, error) {
	q := withCatalog(s.db.WithContext(ctx)).Model(&models.Game{})
	if f.GenreID != 0 {
		q = q.Where("id IN (?)", s.db.Table("game_genre").Select("game_id").Where("genre_id = ?", f.GenreID))
	}
	if f.PlatformID != 0 {
		q = q.Where("id IN (?)", s.db.Table("game_platform").Select("game_id").Where("platform_id = ?", f.PlatformID))
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(term)+"%")
	}
	games := []models.Game{}
	err := q.Order("id").Find(&games).Error
	return games, err
}

// Search matches titles and descriptions case-insensitively.
func (s *GameService) Search(ctx context.Context, term string, limit int) ([]models.Game, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	games := []models.Game{}
	err := withCatalog(s.db.WithContext(ctx)).
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("average_rating DESC, id").
		Limit(limit).
		Find(&games).Error
	return games, err
}

func (s *GameService) Get(ctx context.Context, id uint) (*models.Game, error) {
	var game models.Game
	if err := withCatalog(s.db.WithContext(ctx)).First(&game, id).Error; err != nil {
		return nil, translate(err, "game", nil)
	}
	return &game, nil
}

// Create inserts a game and syncs its genre and platform sets.
func (s *GameService) Create(ctx context.Context, in models.GameInput) (*models.Game, error) {
	switch {
	case in.Title == nil || strings.TrimSpace(*in.Title) == "":
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	case in.Slug == nil || *in.Slug == "":
		return nil, &ValidationError{Field: "slug", Message: "slug is required"}
	case in.Price == nil:
		return nil, &ValidationError{Field: "price", Message: "price is required"}
	}

	var game models.Game
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyGameInput(tx, &game, in); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&game).Error; err != nil {
			return translate(err, "game", ErrDuplicateSlug)
		}
		return syncAssociations(tx, &game, in)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, game.ID)
}

// Update applies the non-nil fields of in. Supplied id lists replace the
// game's whole genre or platform set.
func (s *GameService) Update(ctx context.Context, id uint, in models.GameInput) (*models.Game, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// same lock as review writes and price adjustments
		var game models.Game
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&game, id).Error; err != nil {
			return translate(err, "game", nil)
		}
		if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
			return &ValidationError{Field: "title", Message: "title must not be empty"}
		}
		if err := applyGameInput(tx, &game, in); err != nil {
			return err
		}
		// average_rating is owned by the review writers
		if err := tx.Omit(clause.Associations, "average_rating").Save(&game).Error; err != nil {
			return translate(err, "game", ErrDuplicateSlug)
		}
		return syncAssociations(tx, &game, in)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a game with its reviews, purchases, achievements and link rows.
func (s *GameService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGame(tx, id); err != nil {
			return err
		}
		game := models.Game{ID: id}
		if err := tx.Model(&game).Association("Genres").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&game).Association("Platforms").Clear(); err != nil {
			return err
		}
		for _, model := range []interface{}{&models.Review{}, &models.Purchase{}, &models.Achievement{}} {
			if err := tx.Where("game_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&game).Error
	})
}

func applyGameInput(tx *gorm.DB, game *models.Game, in models.GameInput) error {
	if in.Title != nil {
		game.Title = strings.TrimSpace(*in.Title)
	}
	if in.Slug != nil {
		var taken int64
		if err := tx.Model(&models.Game{}).Where("slug = ? AND id <> ?", *in.Slug, game.ID).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrDuplicateSlug
		}
		game.Slug = *in.Slug
	}
	if in.Price != nil {
		game.Price = *in.Price
	}
	if in.Description != nil {
		game.Description = *in.Description
	}
	if in.ReleaseDate != nil {
		if *in.ReleaseDate == "" {
			game.ReleaseDate = nil
		} else {
			t, err := time.Parse("2006-01-02", *in.ReleaseDate)
			if err != nil {
				return &ValidationError{Field: "release_date", Message: "release_date must be YYYY-MM-DD"}
			}
			d := datatypes.Date(t)
			game.ReleaseDate = &d
		}
	}

	// 0 detaches the developer or publisher
	if in.DeveloperID != nil {
		ref, err := optionalRef(tx, &models.Developer{}, *in.DeveloperID, "developer_id")
		if err != nil {
			return err
		}
		game.DeveloperID = ref
		game.Developer = nil
	}
	if in.PublisherID != nil {
		ref, err := optionalRef(tx, &models.Publisher{}, *in.PublisherID, "publisher_id")
		if err != nil {
			return err
		}
		game.PublisherID = ref
		game.Publisher = nil
	}
	return nil
}

func optionalRef(tx *gorm.DB, model interface{}, id uint, field string) (*uint, error) {
	if id == 0 {
		return nil, nil
	}
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, &ValidationError{Field: field, Message: field + " does not exist"}
	}
	return &id, nil
}

// syncAssociations replaces the genre and platform sets when ids were supplied.
func syncAssociations(tx *gorm.DB, game *models.Game, in models.GameInput) error {
	if in.GenreIDs != nil {
		var genres []models.Genre
		if err := loadAll(tx, &genres, in.GenreIDs, "genre_ids"); err != nil {
			return err
		}
		if err := replaceSet(tx, game, "Genres", genres, len(genres)); err != nil {
			return err
		}
	}
	if in.PlatformIDs != nil {
		var platforms []models.Platform
		if err := loadAll(tx, &platforms, in.PlatformIDs, "platform_ids"); err != nil {
			return err
		}
		if err := replaceSet(tx, game, "Platforms", platforms, len(platforms)); err != nil {
			return err
		}
	}
	return nil
}

func replaceSet(tx *gorm.DB, game *models.Game, name string, members interface{}, n int) error {
	assoc := tx.Model(game).Association(name)
	if n == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(members)
}

func loadAll(tx *gorm.DB, dest interface{}, ids []uint, field string) error {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return nil
	}
	res := tx.Where("id IN ?", unique).Find(dest)
	if res.Error != nil {
		return res.Error
	}
	if int(res.RowsAffected) != len(unique) {
		return &ValidationError{Field: field, Message: field + " contains unknown ids"}
	}
	return nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
