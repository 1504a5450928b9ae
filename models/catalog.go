package models

import "time"

// CatalogInput is shared by the reference entities. Fields that an entity
// does not carry are ignored by its Apply.
type CatalogInput struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	Bio          *string `json:"bio" validate:"omitempty,max=5000"`
	Website      *string `json:"website" validate:"omitempty,url,max=255"`
	Manufacturer *string `json:"manufacturer" validate:"omitempty,max=255"`
}

type Genre struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (g *Genre) Apply(in CatalogInput) {
	if in.Name != nil {
		g.Name = *in.Name
	}
	if in.Description != nil {
		g.Description = *in.Description
	}
}

func (g *Genre) EntryName() string { return g.Name }

type Platform struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Manufacturer string    `gorm:"size:255" json:"manufacturer"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p *Platform) Apply(in CatalogInput) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Manufacturer != nil {
		p.Manufacturer = *in.Manufacturer
	}
}

func (p *Platform) EntryName() string { return p.Name }

type Developer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Website   string    `gorm:"size:255" json:"website"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Developer) Apply(in CatalogInput) {
	if in.Name != nil {
		d.Name = *in.Name
	}
	if in.Bio != nil {
		d.Bio = *in.Bio
	}
	if in.Website != nil {
		d.Website = *in.Website
	}
}

func (d *Developer) EntryName() string { return d.Name }

type Publisher struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Website   string    `gorm:"size:255" json:"website"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Publisher) Apply(in CatalogInput) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Website != nil {
		p.Website = *in.Website
	}
}

func (p *Publisher) EntryName() string { return p.Name }

type Achievement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GameID      uint      `gorm:"not null;index" json:"game_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Points      int       `gorm:"not null;default:0" json:"points"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Game        *Game     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// AchievementInput - request body for achievement create/update
type AchievementInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Points      *int    `json:"points" validate:"omitempty,gte=0,lte=100000"`
}
