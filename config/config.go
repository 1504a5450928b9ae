package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port               string
	GinMode            string
	DBDriver           string
	DatabaseURL        string
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	RedisURL           string
	RedisPassword      string
	JWTSecret          string
	TokenTTL           time.Duration
	CORSOrigins        []string
	RateLimitPerMinute int
	UseHTTPS           bool
	TLSCertFile        string
	TLSKeyFile         string
	LogLevel           string
}

func Default() Config {
	return Config{
		Port:               "8080",
		GinMode:            "debug",
		DBDriver:           "postgres",
		DatabaseURL:        "host=localhost port=5432 user=postgres dbname=gamehub sslmode=disable",
		DBMaxOpenConns:     10,
		DBMaxIdleConns:     10,
		RedisURL:           "localhost:6379",
		TokenTTL:           24 * time.Hour,
		CORSOrigins:        []string{"http://localhost:3000", "https://localhost:3000"},
		RateLimitPerMinute: 60,
		LogLevel:           "info",
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	if raw := os.Getenv("GIN_MODE"); raw != "" {
		cfg.GinMode = raw
	}
	if raw := os.Getenv("DB_DRIVER"); raw != "" {
		cfg.DBDriver = strings.ToLower(raw)
	}
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.DatabaseURL = raw
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw, ok := os.LookupEnv("REDIS_URL"); ok {
		cfg.RedisURL = raw
	}
	if raw := os.Getenv("REDIS_PASSWORD"); raw != "" {
		cfg.RedisPassword = raw
	}
	if raw := os.Getenv("JWT_SECRET"); raw != "" {
		cfg.JWTSecret = raw
	}
	if raw := os.Getenv("TOKEN_TTL_HOURS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.TokenTTL = time.Duration(value) * time.Hour
		}
	}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		var origins []string
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		if len(origins) > 0 {
			cfg.CORSOrigins = origins
		}
	}
	if raw := os.Getenv("RATE_LIMIT_PER_MINUTE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.RateLimitPerMinute = value
		}
	}
	cfg.UseHTTPS = os.Getenv("USE_HTTPS") == "true"
	cfg.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	cfg.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}
	return cfg
}

// TLSEnabled reports whether the server should terminate TLS itself.
func (c Config) TLSEnabled() bool {
	return c.UseHTTPS && c.TLSCertFile != "" && c.TLSKeyFile != ""
}
