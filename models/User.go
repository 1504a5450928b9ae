package models

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Can reports whether the role grants the given role's capabilities.
// Admins can do everything a user can.
func (r Role) Can(required Role) bool {
	if r == RoleAdmin {
		return true
	}
	return r == required
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"size:20;not null;default:user" json:"role"`
	IsBanned     bool      `gorm:"default:false" json:"isBanned"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterInput - request body for POST /register
type RegisterInput struct {
	Name                 string `json:"name" validate:"required,min=2,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=6,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"omitempty,eqfield=Password"`
}

// LoginInput - request body for POST /login
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserInput - request body for PUT /users/:id
type UpdateUserInput struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=255"`
	Role     *Role   `json:"role" validate:"omitempty,oneof=user admin"`
	IsBanned *bool   `json:"isBanned"`
}
