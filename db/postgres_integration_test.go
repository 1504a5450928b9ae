//go:build integration

package db_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"gamehub/config"
	"gamehub/db"
	"gamehub/models"
	"gamehub/services"
	"gamehub/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// setupPostgres starts a PostgreSQL container, applies the SQL migrations
// and returns a pooled connection.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	utils.SilenceLogger()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("gamehub"),
		postgres.WithUsername("gamehub"),
		postgres.WithPassword("gamehub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(connStr, true, 0))

	conn, err := db.Open(config.Config{
		DBDriver:       "postgres",
		DatabaseURL:    connStr,
		DBMaxOpenConns: 20,
		DBMaxIdleConns: 20,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func TestPostgresMigrationsRoundTrip(t *testing.T) {
	conn := setupPostgres(t)
	require.NoError(t, db.Seed(conn))

	var games int64
	require.NoError(t, conn.Model(&models.Game{}).Count(&games).Error)
	assert.EqualValues(t, 1, games)
}

func TestPostgresSingleFirstAdmin(t *testing.T) {
	conn := setupPostgres(t)
	auth, err := services.NewAuthService(conn, services.AuthOptions{
		Secret:   "integration-secret-at-least-32-characters",
		HashCost: bcrypt.MinCost,
	})
	require.NoError(t, err)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = auth.Register(context.Background(), "Player", fmt.Sprintf("p%d@example.com", i), "secret123")
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	var admins int64
	require.NoError(t, conn.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error)
	assert.EqualValues(t, 1, admins)
}

func TestPostgresConcurrentReviewsKeepAverage(t *testing.T) {
	conn := setupPostgres(t)
	game := models.Game{Title: "Epic Quest", Slug: "epic-quest", Price: 39.99}
	require.NoError(t, conn.Create(&game).Error)

	const n = 12
	users := make([]models.User, n)
	for i := range users {
		users[i] = models.User{Name: "Player", Email: fmt.Sprintf("r%d@example.com", i), PasswordHash: "x", Role: models.RoleUser}
		require.NoError(t, conn.Create(&users[i]).Error)
	}

	reviews := services.NewReviewService(conn)
	var wg sync.WaitGroup
	var mu sync.Mutex
	conflicts := 0
	total := 0
	for i := 0; i < n; i++ {
		rating := i%10 + 1
		total += rating
		// every user races a duplicate of their own review
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(userID uint, rating int) {
				defer wg.Done()
				_, err := reviews.Submit(context.Background(), game.ID, userID, rating, "")
				if err != nil {
					mu.Lock()
					defer mu.Unlock()
					assert.ErrorIs(t, err, services.ErrConflict)
					conflicts++
				}
			}(users[i].ID, rating)
		}
	}
	wg.Wait()

	assert.Equal(t, n, conflicts)

	var stored models.Game
	require.NoError(t, conn.First(&stored, game.ID).Error)
	want := float64((200*total+n)/(2*n)) / 100
	assert.Equal(t, want, stored.AverageRating)
}

func TestPostgresGameEditsDoNotClobberAverage(t *testing.T) {
	conn := setupPostgres(t)
	ctx := context.Background()
	game := models.Game{Title: "Epic Quest", Slug: "epic-quest", Price: 39.99}
	require.NoError(t, conn.Create(&game).Error)

	const n = 10
	users := make([]models.User, n)
	for i := range users {
		users[i] = models.User{Name: "Player", Email: fmt.Sprintf("e%d@example.com", i), PasswordHash: "x", Role: models.RoleUser}
		require.NoError(t, conn.Create(&users[i]).Error)
	}

	reviews := services.NewReviewService(conn)
	games := services.NewGameService(conn)
	var wg sync.WaitGroup
	total := 0
	for i := 0; i < n; i++ {
		rating := i%10 + 1
		total += rating
		wg.Add(2)
		go func(userID uint, rating int) {
			defer wg.Done()
			_, err := reviews.Submit(ctx, game.ID, userID, rating, "")
			assert.NoError(t, err)
		}(users[i].ID, rating)
		go func(i int) {
			defer wg.Done()
			desc := fmt.Sprintf("edit %d", i)
			price := 30 + float64(i)
			_, err := games.Update(ctx, game.ID, models.GameInput{Description: &desc, Price: &price})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	var stored models.Game
	require.NoError(t, conn.First(&stored, game.ID).Error)
	want := float64((200*total+n)/(2*n)) / 100
	assert.Equal(t, want, stored.AverageRating)
}
