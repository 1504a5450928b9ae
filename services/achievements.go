package services

import (
	"context"
	"strings"

	"gamehub/models"

	"gorm.io/gorm"
)

type AchievementService struct {
	db *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{db: db}
}

func (s *AchievementService) ListForGame(ctx context.Context, gameID uint) ([]models.Achievement, error) {
	conn := s.db.WithContext(ctx)
	var count int64
	if err := conn.Model(&models.Game{}).Where("id = ?", gameID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, notFound("game")
	}
	achievements := []models.Achievement{}
	err := conn.Where("game_id = ?", gameID).Order("points DESC, id").Find(&achievements).Error
	return achievements, err
}

func (s *AchievementService) Create(ctx context.Context, gameID uint, in models.AchievementInput) (*models.Achievement, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	achievement := models.Achievement{GameID: gameID}
	applyAchievement(&achievement, in)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Game{}).Where("id = ?", gameID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return notFound("game")
		}
		return tx.Create(&achievement).Error
	})
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (s *AchievementService) Update(ctx context.Context, id uint, in models.AchievementInput) (*models.Achievement, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name must not be empty"}
	}
	var achievement models.Achievement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&achievement, id).Error; err != nil {
			return translate(err, "achievement", nil)
		}
		applyAchievement(&achievement, in)
		return tx.Omit("Game").Save(&achievement).Error
	})
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (s *AchievementService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Achievement{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("achievement")
	}
	return nil
}

func applyAchievement(a *models.Achievement, in models.AchievementInput) {
	if in.Name != nil {
		a.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.Points != nil {
		a.Points = *in.Points
	}
}
