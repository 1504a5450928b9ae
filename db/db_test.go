package db

import (
	"testing"

	"gamehub/config"
	"gamehub/models"
	"gamehub/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	utils.SilenceLogger()
	conn, err := OpenSQLite("file:" + t.Name() + "?mode=memory&cache=shared&_foreign_keys=1")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func TestMigrateAndSeedAreIdempotent(t *testing.T) {
	conn := openMemory(t)

	for i := 0; i < 2; i++ {
		require.NoError(t, Migrate(conn))
		require.NoError(t, Seed(conn))
	}

	var states, games, genres int64
	require.NoError(t, conn.Model(&models.BootstrapState{}).Count(&states).Error)
	require.NoError(t, conn.Model(&models.Game{}).Count(&games).Error)
	require.NoError(t, conn.Model(&models.Genre{}).Count(&genres).Error)
	assert.EqualValues(t, 1, states)
	assert.EqualValues(t, 1, games)
	assert.EqualValues(t, 2, genres)

	var game models.Game
	require.NoError(t, conn.Preload("Genres").Preload("Platforms").Preload("Developer").First(&game, "slug = ?", "epic-quest").Error)
	assert.Len(t, game.Genres, 2)
	assert.Len(t, game.Platforms, 2)
	require.NotNil(t, game.Developer)
	assert.Equal(t, "SuperDev Studios", game.Developer.Name)
	require.NotNil(t, game.ReleaseDate)
	assert.Zero(t, game.AverageRating)

	require.NoError(t, Ping(conn))
}

func TestMigrateRejectsNilConnection(t *testing.T) {
	assert.Error(t, Migrate(nil))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.Config{DBDriver: "oracle"})
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}
