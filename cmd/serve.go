package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamehub/cache"
	"gamehub/config"
	"gamehub/handlers"
	"gamehub/monitoring"
	"gamehub/services"
	"gamehub/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const (
	authRateLimitPerMinute = 10
	tokenPurgeInterval     = time.Hour
	shutdownTimeout        = 15 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(config.Load())
	},
}

func serve(cfg config.Config) error {
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	monitoring.InitMetrics()

	conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}

	store, err := cache.New(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		utils.LogWarn("Redis unavailable, caching disabled", map[string]interface{}{"error": err.Error()})
	} else if store.Enabled() {
		utils.LogInfo("Redis connected", map[string]interface{}{"addr": cfg.RedisURL})
	}
	defer store.Close()

	auth, err := services.NewAuthService(conn, services.AuthOptions{Secret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL})
	if err != nil {
		return err
	}

	authLimit := 0
	if cfg.RateLimitPerMinute > 0 {
		authLimit = authRateLimitPerMinute
	}
	router := handlers.NewRouter(handlers.New(conn, store, auth), handlers.RouterOptions{
		CORSOrigins:            cfg.CORSOrigins,
		RateLimitPerMinute:     cfg.RateLimitPerMinute,
		AuthRateLimitPerMinute: authLimit,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go purgeTokens(ctx, auth)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.TLSEnabled() {
			server.TLSConfig = &tls.Config{
				MinVersion:       tls.VersionTLS12,
				CurvePreferences: []tls.CurveID{tls.X25519, tls.CurveP256, tls.CurveP384},
			}
			utils.LogInfo("Starting server with HTTPS", map[string]interface{}{"port": cfg.Port, "cert": cfg.TLSCertFile})
			errCh <- server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		utils.LogInfo("Starting server with HTTP", map[string]interface{}{"port": cfg.Port})
		if cfg.GinMode == gin.ReleaseMode {
			utils.LogWarn("Running without HTTPS. Set USE_HTTPS=true for production", nil)
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	utils.LogInfo("Shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// purgeTokens deletes expired token rows until ctx is cancelled.
func purgeTokens(ctx context.Context, auth *services.AuthService) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := auth.PurgeExpiredTokens(ctx)
			if err != nil {
				utils.LogError("Failed to purge expired tokens", map[string]interface{}{"error": err.Error()})
				continue
			}
			if n > 0 {
				utils.LogInfo("Purged expired tokens", map[string]interface{}{"count": n})
			}
		}
	}
}
