package models

import "time"

type Purchase struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_purchases_user_game" json:"user_id"`
	GameID      uint      `gorm:"not null;index;uniqueIndex:idx_purchases_user_game" json:"game_id"`
	Price       float64   `gorm:"type:decimal(8,2);not null;default:0" json:"price"`
	PurchasedAt time.Time `gorm:"not null" json:"purchased_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Game        *Game     `gorm:"constraint:OnDelete:CASCADE" json:"game,omitempty"`
}

// PurchaseInput - request body for POST /purchases.
// UserID is honoured only for admins; Price defaults to the game's current price.
type PurchaseInput struct {
	UserID *uint    `json:"user_id" validate:"omitempty,gte=1"`
	GameID uint     `json:"game_id" validate:"required,gte=1"`
	Price  *float64 `json:"price" validate:"omitempty,gte=0,lte=999999.99"`
}

// UpdatePurchaseInput - request body for PUT /purchases/:id
type UpdatePurchaseInput struct {
	Price float64 `json:"price" validate:"gte=0,lte=999999.99"`
}
