package services

import (
	"context"
	"errors"

	"gamehub/models"
	"gamehub/utils"

	"gorm.io/gorm"
)

const (
	minRating = models.MinRating
	maxRating = models.MaxRating
)

// ReviewService owns reviews and keeps games.average_rating in step with them.
type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

func validRating(rating int) bool {
	return rating >= minRating && rating <= maxRating
}

// Submit creates the user's review for a game and recomputes the game's
// average in the same transaction.
func (s *ReviewService) Submit(ctx context.Context, gameID, userID uint, rating int, comment string) (*models.Review, error) {
	if !validRating(rating) {
		return nil, ErrInvalidRating
	}

	review := models.Review{UserID: userID, GameID: gameID, Rating: rating, Comment: comment}
	var avg float64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGame(tx, gameID); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("user_id = ? AND game_id = ?", userID, gameID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateReview
		}

		if err := tx.Create(&review).Error; err != nil {
			return translate(err, "review", ErrDuplicateReview)
		}

		var err error
		avg, err = recomputeAverage(tx, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Review submitted", map[string]interface{}{
		"review_id": review.ID, "game_id": gameID, "user_id": userID, "average_rating": avg,
	})
	return &review, nil
}

// Update changes a review's rating and/or comment. Only the author or an
// admin may edit. The average is recomputed when the rating changes.
func (s *ReviewService) Update(ctx context.Context, reviewID uint, by Principal, rating *int, comment *string) (*models.Review, error) {
	if rating != nil && !validRating(*rating) {
		return nil, ErrInvalidRating
	}

	gameID, err := s.gameOf(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	var review models.Review
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGame(tx, gameID); err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", gameID).First(&review, reviewID).Error; err != nil {
			return translate(err, "review", nil)
		}
		if !by.Owns(review.UserID) {
			return ErrForbidden
		}

		updates := map[string]interface{}{}
		ratingChanged := rating != nil && *rating != review.Rating
		if ratingChanged {
			updates["rating"] = *rating
		}
		if comment != nil {
			updates["comment"] = *comment
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&review).Updates(updates).Error; err != nil {
			return err
		}
		if comment != nil {
			review.Comment = *comment
		}
		if ratingChanged {
			review.Rating = *rating
			_, err := recomputeAverage(tx, gameID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Delete removes a review when requested by its author or an admin and
// recomputes the game's average over what remains. It returns the removed row.
func (s *ReviewService) Delete(ctx context.Context, reviewID uint, by Principal) (*models.Review, error) {
	gameID, err := s.gameOf(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	var review models.Review
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGame(tx, gameID); err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", gameID).First(&review, reviewID).Error; err != nil {
			return translate(err, "review", nil)
		}
		if !by.Owns(review.UserID) {
			return ErrForbidden
		}
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		_, err := recomputeAverage(tx, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Review deleted", map[string]interface{}{
		"review_id": reviewID, "game_id": gameID, "by_user": by.UserID,
	})
	return &review, nil
}

func (s *ReviewService) Get(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).Preload("User").First(&review, id).Error; err != nil {
		return nil, translate(err, "review", nil)
	}
	return &review, nil
}

// List returns all reviews, newest first.
func (s *ReviewService) List(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).Preload("User").Order("created_at DESC, id DESC").Find(&reviews).Error
	return reviews, err
}

// ListForGame returns a game's reviews, newest first.
func (s *ReviewService) ListForGame(ctx context.Context, gameID uint) ([]models.Review, error) {
	conn := s.db.WithContext(ctx)
	var count int64
	if err := conn.Model(&models.Game{}).Where("id = ?", gameID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, notFound("game")
	}

	reviews := []models.Review{}
	err := conn.Preload("User").
		Where("game_id = ?", gameID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	return reviews, err
}

// gameOf resolves the game a review belongs to so the game row can be
// locked before the review is re-read inside the transaction.
func (s *ReviewService) gameOf(ctx context.Context, reviewID uint) (uint, error) {
	var review models.Review
	err := s.db.WithContext(ctx).Select("id", "game_id").First(&review, reviewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, notFound("review")
	}
	if err != nil {
		return 0, err
	}
	return review.GameID, nil
}
