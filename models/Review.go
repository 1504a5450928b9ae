package models

import "time"

const (
	MinRating = 1
	MaxRating = 10
)

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reviews_user_game" json:"user_id"`
	GameID    uint      `gorm:"not null;index;uniqueIndex:idx_reviews_user_game" json:"game_id"`
	Rating    int       `gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 10" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Game      *Game     `gorm:"constraint:OnDelete:CASCADE" json:"game,omitempty"`
}

// ReviewInput - request body for POST /reviews and POST /games/:id/reviews.
// Rating bounds are enforced by the review service so they surface as InvalidRating.
type ReviewInput struct {
	GameID  uint   `json:"game_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment" validate:"max=1000"`
}

// UpdateReviewInput - request body for PUT /reviews/:id
type UpdateReviewInput struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}
