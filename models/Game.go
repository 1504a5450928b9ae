package models

import (
	"time"

	"gorm.io/datatypes"
)

type Game struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Title         string          `gorm:"size:255;not null" json:"title"`
	Slug          string          `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	DeveloperID   *uint           `gorm:"index" json:"developer_id"`
	Developer     *Developer      `gorm:"constraint:OnDelete:SET NULL" json:"developer,omitempty"`
	PublisherID   *uint           `gorm:"index" json:"publisher_id"`
	Publisher     *Publisher      `gorm:"constraint:OnDelete:SET NULL" json:"publisher,omitempty"`
	ReleaseDate   *datatypes.Date `json:"release_date"`
	Price         float64         `gorm:"type:decimal(8,2);not null;default:0" json:"price"`
	Description   string          `gorm:"type:text" json:"description"`
	AverageRating float64         `gorm:"type:decimal(4,2);not null;default:0" json:"average_rating"`
	Genres        []Genre         `gorm:"many2many:game_genre;constraint:OnDelete:CASCADE" json:"genres,omitempty"`
	Platforms     []Platform      `gorm:"many2many:game_platform;constraint:OnDelete:CASCADE" json:"platforms,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// GameInput - request body for POST /games and PUT /games/:id.
// On update nil fields are left untouched; a non-nil empty id list clears the association.
type GameInput struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Slug        *string  `json:"slug" validate:"omitempty,max=255,slug"`
	DeveloperID *uint    `json:"developer_id"`
	PublisherID *uint    `json:"publisher_id"`
	ReleaseDate *string  `json:"release_date" validate:"omitempty,datetime=2006-01-02"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0,lte=999999.99"`
	Description *string  `json:"description"`
	GenreIDs    []uint   `json:"genre_ids" validate:"omitempty,dive,gte=1"`
	PlatformIDs []uint   `json:"platform_ids" validate:"omitempty,dive,gte=1"`
}

// BulkPriceInput - request body for POST /games/bulk-price
type BulkPriceInput struct {
	GameIDs []uint  `json:"game_ids" validate:"required,min=1,dive,gte=1"`
	Percent float64 `json:"percent" validate:"required,gte=-90,lte=500"`
}
