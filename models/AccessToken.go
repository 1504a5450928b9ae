package models

import "time"

// AccessToken is the server-side record of an issued bearer token.
// Deleting the row revokes the token even though its signature stays valid.
type AccessToken struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	TokenID    string     `gorm:"size:36;uniqueIndex;not null" json:"-"`
	Name       string     `gorm:"size:64" json:"name"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
	User       User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// BootstrapState is a single-row table serializing the first-admin decision.
type BootstrapState struct {
	ID           uint `gorm:"primaryKey"`
	AdminClaimed bool `gorm:"not null;default:false"`
}

func (BootstrapState) TableName() string {
	return "bootstrap_state"
}
