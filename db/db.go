package db

import (
	"errors"
	"fmt"
	"time"

	"gamehub/config"
	"gamehub/models"
	"gamehub/utils"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database driver.
func Open(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres", "":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	conn, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	if cfg.DBDriver == "sqlite" {
		// one writer; see OpenSQLite
		sqlDB.SetMaxOpenConns(1)
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return conn, nil
}

// OpenSQLite opens a SQLite database with a single connection, so
// transactions serialize the way row locks do on Postgres.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return conn, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(utils.Log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// Migrate runs GORM auto-migrations and makes sure the bootstrap row exists.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db connection is nil")
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.AccessToken{},
		&models.BootstrapState{},
		&models.Developer{},
		&models.Publisher{},
		&models.Genre{},
		&models.Platform{},
		&models.Game{},
		&models.Review{},
		&models.Purchase{},
		&models.Achievement{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	state := models.BootstrapState{ID: 1}
	if err := conn.FirstOrCreate(&state, models.BootstrapState{ID: 1}).Error; err != nil {
		return fmt.Errorf("failed to create bootstrap state: %w", err)
	}

	utils.Log.Info("Database migrated")
	return nil
}

// Ping checks the underlying connection.
func Ping(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
