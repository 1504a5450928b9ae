package services

import (
	"context"

	"gamehub/models"

	"gorm.io/gorm"
)

// UserService backs the admin user-management endpoints.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

func (s *UserService) Get(ctx context.Context, id uint, by Principal) (*models.User, error) {
	if !by.Owns(id) {
		return nil, ErrForbidden
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "user", nil)
	}
	return &user, nil
}

// Update lets users rename themselves; role and ban changes need an admin.
func (s *UserService) Update(ctx context.Context, id uint, by Principal, in models.UpdateUserInput) (*models.User, error) {
	if !by.Owns(id) {
		return nil, ErrForbidden
	}
	if (in.Role != nil || in.IsBanned != nil) && !by.IsAdmin() {
		return nil, ErrForbidden
	}
	if in.IsBanned != nil && *in.IsBanned && id == by.UserID {
		return nil, &ValidationError{Field: "isBanned", Message: "you cannot ban yourself"}
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return translate(err, "user", nil)
		}
		if in.Name != nil {
			user.Name = *in.Name
		}
		if in.Role != nil {
			user.Role = *in.Role
		}
		if in.IsBanned != nil {
			user.IsBanned = *in.IsBanned
		}
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		if in.IsBanned != nil && *in.IsBanned {
			return tx.Where("user_id = ?", id).Delete(&models.AccessToken{}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetBanned bans or unbans a user. Banning also revokes every token the user holds.
func (s *UserService) SetBanned(ctx context.Context, id uint, banned bool) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return translate(err, "user", nil)
		}
		if err := tx.Model(&user).UpdateColumn("is_banned", banned).Error; err != nil {
			return err
		}
		user.IsBanned = banned
		if banned {
			return tx.Where("user_id = ?", id).Delete(&models.AccessToken{}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes a user together with their tokens, reviews and purchases.
// Games the user reviewed get their averages recomputed in the same transaction.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return translate(err, "user", nil)
		}

		var gameIDs []uint
		if err := tx.Model(&models.Review{}).Where("user_id = ?", id).Order("game_id").Pluck("game_id", &gameIDs).Error; err != nil {
			return err
		}
		for _, gameID := range gameIDs {
			if err := lockGame(tx, gameID); err != nil {
				return err
			}
		}

		for _, model := range []interface{}{&models.Review{}, &models.Purchase{}, &models.AccessToken{}} {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&user).Error; err != nil {
			return err
		}

		for _, gameID := range gameIDs {
			if _, err := recomputeAverage(tx, gameID); err != nil {
				return err
			}
		}
		return nil
	})
}
