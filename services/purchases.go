package services

import (
	"context"
	"time"

	"gamehub/models"
	"gamehub/utils"

	"gorm.io/gorm"
)

type PurchaseService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPurchaseService(db *gorm.DB) *PurchaseService {
	return &PurchaseService{db: db, now: time.Now}
}

// Record stores a purchase of gameID by userID. A nil price records the
// game's current price. At most one purchase exists per (user, game); the
// unique index settles concurrent attempts.
func (s *PurchaseService) Record(ctx context.Context, userID, gameID uint, price *float64) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.Select("id", "price").First(&game, gameID).Error; err != nil {
			return translate(err, "game", nil)
		}
		var users int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&users).Error; err != nil {
			return err
		}
		if users == 0 {
			return notFound("user")
		}

		var existing int64
		if err := tx.Model(&models.Purchase{}).
			Where("user_id = ? AND game_id = ?", userID, gameID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyPurchased
		}

		purchase = models.Purchase{
			UserID:      userID,
			GameID:      gameID,
			Price:       game.Price,
			PurchasedAt: s.now().UTC(),
		}
		if price != nil {
			purchase.Price = *price
		}
		return translate(tx.Create(&purchase).Error, "purchase", ErrAlreadyPurchased)
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Purchase recorded", map[string]interface{}{
		"purchase_id": purchase.ID, "user_id": userID, "game_id": gameID, "price": purchase.Price,
	})
	return &purchase, nil
}

// ListForUser returns the user's purchases with their games, newest first.
func (s *PurchaseService) ListForUser(ctx context.Context, userID uint) ([]models.Purchase, error) {
	purchases := []models.Purchase{}
	err := s.db.WithContext(ctx).
		Preload("Game").
		Where("user_id = ?", userID).
		Order("purchased_at DESC, id DESC").
		Find(&purchases).Error
	return purchases, err
}

func (s *PurchaseService) Get(ctx context.Context, id uint, by Principal) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := s.db.WithContext(ctx).Preload("Game").First(&purchase, id).Error; err != nil {
		return nil, translate(err, "purchase", nil)
	}
	if !by.Owns(purchase.UserID) {
		return nil, ErrForbidden
	}
	return &purchase, nil
}

// UpdatePrice corrects the recorded price of a purchase.
func (s *PurchaseService) UpdatePrice(ctx context.Context, id uint, price float64) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&purchase, id).Error; err != nil {
			return translate(err, "purchase", nil)
		}
		purchase.Price = price
		return tx.Model(&purchase).Update("price", price).Error
	})
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (s *PurchaseService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Purchase{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("purchase")
	}
	return nil
}
