package concurrent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"gamehub/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

/*
1. FetchGameWithDetails - game page data loaded in parallel
   The queries are independent reads, so they run side by side.

2. BulkAdjustPrices - percentage price change over many games
   Each game is updated in its own transaction by a bounded worker pool.

3. CalculateDashboardStats - admin dashboard counters
   Every aggregate is its own query and runs in its own goroutine.
*/

const (
	detailsTimeout   = 5 * time.Second
	statsTimeout     = 10 * time.Second
	latestReviews    = 10
	relatedGames     = 5
	defaultWorkers   = 4
	recentGameWindow = 30 * 24 * time.Hour
)

// ==================== 1. GAME DETAILS WITH CONCURRENCY ====================

type GameDetails struct {
	Game         models.Game          `json:"game"`
	Reviews      []models.Review      `json:"latest_reviews"`
	Achievements []models.Achievement `json:"achievements"`
	RelatedGames []models.Game        `json:"related_games"`
	Statistics   GameStatistics       `json:"statistics"`
}

type GameStatistics struct {
	TotalReviews       int64         `json:"total_reviews"`
	AverageRating      float64       `json:"average_rating"`
	TotalOwners        int64         `json:"total_owners"`
	AchievementPoints  int64         `json:"achievement_points"`
	RatingDistribution map[int]int64 `json:"rating_distribution"`
}

// FetchGameWithDetails loads a game together with its latest reviews,
// achievements, games sharing a genre and review statistics. It returns
// gorm.ErrRecordNotFound when the game does not exist.
func FetchGameWithDetails(ctx context.Context, conn *gorm.DB, gameID uint) (*GameDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, detailsTimeout)
	defer cancel()

	result := &GameDetails{Statistics: GameStatistics{RatingDistribution: map[int]int64{}}}
	g, ctx := errgroup.WithContext(ctx)
	q := func() *gorm.DB { return conn.WithContext(ctx) }

	g.Go(func() error {
		return q().
			Preload("Developer").Preload("Publisher").Preload("Genres").Preload("Platforms").
			First(&result.Game, gameID).Error
	})

	g.Go(func() error {
		result.Reviews = []models.Review{}
		return q().Where("game_id = ?", gameID).
			Preload("User").
			Order("created_at DESC, id DESC").
			Limit(latestReviews).
			Find(&result.Reviews).Error
	})

	g.Go(func() error {
		result.Achievements = []models.Achievement{}
		return q().Where("game_id = ?", gameID).Order("points DESC, id").Find(&result.Achievements).Error
	})

	g.Go(func() error {
		result.RelatedGames = []models.Game{}
		sameGenre := conn.Table("game_genre").Select("game_id").
			Where("genre_id IN (?)", conn.Table("game_genre").Select("genre_id").Where("game_id = ?", gameID))
		return q().Where("id IN (?) AND id <> ?", sameGenre, gameID).
			Order("average_rating DESC, id").
			Limit(relatedGames).
			Find(&result.RelatedGames).Error
	})

	g.Go(func() error {
		return q().Model(&models.Purchase{}).Where("game_id = ?", gameID).Count(&result.Statistics.TotalOwners).Error
	})

	g.Go(func() error {
		var points struct{ Total int64 }
		if err := q().Model(&models.Achievement{}).
			Select("CAST(COALESCE(SUM(points), 0) AS BIGINT) AS total").
			Where("game_id = ?", gameID).
			Scan(&points).Error; err != nil {
			return err
		}
		result.Statistics.AchievementPoints = points.Total
		return nil
	})

	g.Go(func() error {
		var rows []struct {
			Rating int
			Count  int64
		}
		if err := q().Model(&models.Review{}).
			Select("rating, COUNT(*) AS count").
			Where("game_id = ?", gameID).
			Group("rating").
			Scan(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			result.Statistics.RatingDistribution[row.Rating] = row.Count
			result.Statistics.TotalReviews += row.Count
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("timeout fetching game details: %w", err)
		}
		return nil, err
	}
	result.Statistics.AverageRating = result.Game.AverageRating
	return result, nil
}

// ==================== 2. BULK OPERATIONS WITH WORKER POOL ====================

type PriceAdjustment struct {
	GameID   uint    `json:"game_id"`
	OldPrice float64 `json:"old_price"`
	NewPrice float64 `json:"new_price"`
	Success  bool    `json:"success"`
	Error    string  `json:"error,omitempty"`
}

// AdjustedPrice applies a percentage change and rounds to cents.
func AdjustedPrice(price, percent float64) float64 {
	adjusted := math.Round(price*(100+percent)) / 100
	if adjusted < 0 {
		return 0
	}
	return adjusted
}

// BulkAdjustPrices changes the price of every listed game by percent using a
// pool of numWorkers. Failures are reported per game; results are ordered by
// game id.
func BulkAdjustPrices(ctx context.Context, conn *gorm.DB, gameIDs []uint, percent float64, numWorkers int) []PriceAdjustment {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}

	ids := uniqueIDs(gameIDs)
	jobs := make(chan uint, len(ids))
	results := make(chan PriceAdjustment, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				results <- adjustPrice(ctx, conn, id, percent)
			}
		}()
	}

	for _, id := range ids {
		jobs <- id
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	all := make([]PriceAdjustment, 0, len(ids))
	for result := range results {
		all = append(all, result)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].GameID < all[j].GameID })
	return all
}

func adjustPrice(ctx context.Context, conn *gorm.DB, gameID uint, percent float64) PriceAdjustment {
	result := PriceAdjustment{GameID: gameID}
	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "price").
			First(&game, gameID).Error; err != nil {
			return err
		}
		result.OldPrice = game.Price
		result.NewPrice = AdjustedPrice(game.Price, percent)
		return tx.Model(&game).UpdateColumn("price", result.NewPrice).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		result.Error = "game not found"
	case err != nil:
		result.Error = err.Error()
	default:
		result.Success = true
	}
	return result
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ==================== 3. DASHBOARD STATISTICS ====================

type DashboardStats struct {
	TotalUsers    int64   `json:"total_users"`
	ActiveUsers   int64   `json:"active_users"`
	TotalGames    int64   `json:"total_games"`
	RecentGames   int64   `json:"recent_games"`
	TotalReviews  int64   `json:"total_reviews"`
	TotalSales    int64   `json:"total_sales"`
	Revenue       float64 `json:"revenue"`
	AverageRating float64 `json:"average_rating"`
	TopGenre      string  `json:"top_genre"`
}

// CalculateDashboardStats runs every aggregate in parallel.
func CalculateDashboardStats(ctx context.Context, conn *gorm.DB) (*DashboardStats, error) {
	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	stats := &DashboardStats{}
	g, ctx := errgroup.WithContext(ctx)
	q := func() *gorm.DB { return conn.WithContext(ctx) }

	count := func(dest *int64, model interface{}, label string, where ...interface{}) {
		g.Go(func() error {
			tx := q().Model(model)
			if len(where) > 0 {
				tx = tx.Where(where[0], where[1:]...)
			}
			if err := tx.Count(dest).Error; err != nil {
				return fmt.Errorf("%s: %w", label, err)
			}
			return nil
		})
	}

	count(&stats.TotalUsers, &models.User{}, "users count")
	count(&stats.ActiveUsers, &models.User{}, "active users", "is_banned = ?", false)
	count(&stats.TotalGames, &models.Game{}, "games count")
	count(&stats.RecentGames, &models.Game{}, "recent games", "created_at > ?", time.Now().Add(-recentGameWindow))
	count(&stats.TotalReviews, &models.Review{}, "reviews count")
	count(&stats.TotalSales, &models.Purchase{}, "sales count")

	g.Go(func() error {
		var revenue struct{ Total float64 }
		if err := q().Model(&models.Purchase{}).
			Select("COALESCE(SUM(price), 0) AS total").
			Scan(&revenue).Error; err != nil {
			return fmt.Errorf("revenue: %w", err)
		}
		stats.Revenue = math.Round(revenue.Total*100) / 100
		return nil
	})

	g.Go(func() error {
		var avg struct{ Avg float64 }
		if err := q().Model(&models.Review{}).
			Select("COALESCE(AVG(rating), 0) AS avg").
			Scan(&avg).Error; err != nil {
			return fmt.Errorf("average rating: %w", err)
		}
		stats.AverageRating = math.Round(avg.Avg*100) / 100
		return nil
	})

	g.Go(func() error {
		var top []struct {
			Name  string
			Count int64
		}
		if err := q().Table("game_genre").
			Select("genres.name AS name, COUNT(*) AS count").
			Joins("JOIN genres ON genres.id = game_genre.genre_id").
			Group("genres.name").
			Order("count DESC, genres.name").
			Limit(1).
			Scan(&top).Error; err != nil {
			return fmt.Errorf("top genre: %w", err)
		}
		if len(top) > 0 {
			stats.TopGenre = top[0].Name
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("timeout calculating stats: %w", err)
		}
		return nil, err
	}
	return stats, nil
}
