package services

import (
	"fmt"
	"strings"
	"testing"

	"gamehub/db"
	"gamehub/models"
	"gamehub/utils"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret-test-secret-test-secret-000"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.SilenceLogger()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func newTestAuth(t *testing.T, conn *gorm.DB) *AuthService {
	t.Helper()
	auth, err := NewAuthService(conn, AuthOptions{Secret: testSecret, HashCost: bcrypt.MinCost})
	require.NoError(t, err)
	return auth
}

func createUser(t *testing.T, conn *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	user := models.User{Name: strings.Split(email, "@")[0], Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, conn.Create(&user).Error)
	return &user
}

func createGame(t *testing.T, conn *gorm.DB, slug string, price float64) *models.Game {
	t.Helper()
	game := models.Game{Title: strings.ToUpper(slug), Slug: slug, Price: price}
	require.NoError(t, conn.Omit("Genres", "Platforms").Create(&game).Error)
	return &game
}

func storedAverage(t *testing.T, conn *gorm.DB, gameID uint) float64 {
	t.Helper()
	var game models.Game
	require.NoError(t, conn.Select("id", "average_rating").First(&game, gameID).Error)
	return game.AverageRating
}

func asUser(u *models.User) Principal {
	return Principal{UserID: u.ID, Role: u.Role}
}

func ptr[T any](v T) *T {
	return &v
}
