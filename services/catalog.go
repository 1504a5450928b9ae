package services

import (
	"context"
	"strings"

	"gamehub/models"

	"gorm.io/gorm"
)

// CatalogEntry is implemented by pointers to the reference entities.
type CatalogEntry[T any] interface {
	*T
	Apply(models.CatalogInput)
	EntryName() string
}

// CatalogService is the CRUD store for one reference entity kind (genres,
// platforms, developers, publishers). Names are unique per kind.
type CatalogService[T any, PT CatalogEntry[T]] struct {
	db   *gorm.DB
	kind string
	// detach runs before a delete to release rows in games that point at the entry
	detach []string
}

func NewCatalogService[T any, PT CatalogEntry[T]](db *gorm.DB, kind string, detach ...string) *CatalogService[T, PT] {
	return &CatalogService[T, PT]{db: db, kind: kind, detach: detach}
}

func NewGenreService(db *gorm.DB) *CatalogService[models.Genre, *models.Genre] {
	return NewCatalogService[models.Genre](db, "genre", "DELETE FROM game_genre WHERE genre_id = ?")
}

func NewPlatformService(db *gorm.DB) *CatalogService[models.Platform, *models.Platform] {
	return NewCatalogService[models.Platform](db, "platform", "DELETE FROM game_platform WHERE platform_id = ?")
}

func NewDeveloperService(db *gorm.DB) *CatalogService[models.Developer, *models.Developer] {
	return NewCatalogService[models.Developer](db, "developer", "UPDATE games SET developer_id = NULL WHERE developer_id = ?")
}

func NewPublisherService(db *gorm.DB) *CatalogService[models.Publisher, *models.Publisher] {
	return NewCatalogService[models.Publisher](db, "publisher", "UPDATE games SET publisher_id = NULL WHERE publisher_id = ?")
}

func (s *CatalogService[T, PT]) Kind() string {
	return s.kind
}

func (s *CatalogService[T, PT]) List(ctx context.Context) ([]T, error) {
	entries := []T{}
	err := s.db.WithContext(ctx).Order("name").Find(&entries).Error
	return entries, err
}

func (s *CatalogService[T, PT]) Get(ctx context.Context, id uint) (*T, error) {
	var entry T
	if err := s.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, translate(err, s.kind, nil)
	}
	return &entry, nil
}

func (s *CatalogService[T, PT]) Create(ctx context.Context, in models.CatalogInput) (*T, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	var entry T
	PT(&entry).Apply(in)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureUniqueName(tx, PT(&entry).EntryName(), 0); err != nil {
			return err
		}
		return translate(tx.Create(&entry).Error, s.kind, s.duplicate())
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *CatalogService[T, PT]) Update(ctx context.Context, id uint, in models.CatalogInput) (*T, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name must not be empty"}
	}
	var entry T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, id).Error; err != nil {
			return translate(err, s.kind, nil)
		}
		if in.Name != nil {
			if err := s.ensureUniqueName(tx, *in.Name, id); err != nil {
				return err
			}
		}
		PT(&entry).Apply(in)
		return translate(tx.Save(&entry).Error, s.kind, s.duplicate())
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *CatalogService[T, PT]) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry T
		if err := tx.First(&entry, id).Error; err != nil {
			return translate(err, s.kind, nil)
		}
		for _, stmt := range s.detach {
			if err := tx.Exec(stmt, id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&entry).Error
	})
}

func (s *CatalogService[T, PT]) ensureUniqueName(tx *gorm.DB, name string, exceptID uint) error {
	var count int64
	var model T
	if err := tx.Model(&model).Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return s.duplicate()
	}
	return nil
}

func (s *CatalogService[T, PT]) duplicate() error {
	return &conflictError{msg: s.kind + " name already taken"}
}
