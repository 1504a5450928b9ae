package services

import (
	"fmt"

	"gamehub/models"
	"gamehub/monitoring"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// averageRating returns total/count rounded half-up to two decimals, or 0
// for an empty set. Rounding happens on integer hundredths so values such as
// 23/3 land on 7.67 without float drift.
func averageRating(total, count int64) float64 {
	if count <= 0 {
		return 0
	}
	hundredths := (200*total + count) / (2 * count)
	return float64(hundredths) / 100
}

// lockGame takes a row lock on the game for the rest of tx. Every write that
// changes a game's review set goes through it, so recomputations for one game
// are serialized. SQLite ignores the locking clause; its single writer gives
// the same guarantee.
func lockGame(tx *gorm.DB, gameID uint) error {
	var game models.Game
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&game, gameID).Error
	return translate(err, "game", nil)
}

// recomputeAverage rewrites games.average_rating from the review rows visible
// to tx. It must run after the write that changed the set, under lockGame.
func recomputeAverage(tx *gorm.DB, gameID uint) (float64, error) {
	var agg struct {
		Count int64
		Total int64
	}
	err := tx.Model(&models.Review{}).
		Select("COUNT(*) AS count, CAST(COALESCE(SUM(rating), 0) AS BIGINT) AS total").
		Where("game_id = ?", gameID).
		Scan(&agg).Error
	if err != nil {
		return 0, fmt.Errorf("aggregate ratings: %w", err)
	}

	avg := averageRating(agg.Total, agg.Count)
	err = tx.Model(&models.Game{}).
		Where("id = ?", gameID).
		UpdateColumn("average_rating", avg).Error
	if err != nil {
		return 0, fmt.Errorf("store average rating: %w", err)
	}

	monitoring.RatingRecomputations.Inc()
	return avg, nil
}
