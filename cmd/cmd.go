package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"matrimony-backend/internal/cache"
	"matrimony-backend/internal/config"
	"matrimony-backend/internal/handlers"
	"matrimony-backend/internal/repository"
	"matrimony-backend/internal/services"
	"matrimony-backend/internal/storage"
)

// Run starts the HTTP server and blocks until SIGINT or SIGTERM
func Run(cfg *config.Config) error {
	setupLogger(cfg.Log.Level)
	ctx := context.Background()

	if cfg.Server.AutoMigrate {
		if err := repository.Migrate(cfg.Database.URL(), 0); err != nil {
			return err
		}
		log.Info().Msg("Database migrations applied")
	}

	// Connect to database
	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	store := repository.NewStore(db)
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Msg("Database connection established")

	// Photo blobs go to S3 only when a bucket is configured
	var blobs services.BlobStore
	if cfg.AWS.S3Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Options{
			Region:    cfg.AWS.Region,
			Bucket:    cfg.AWS.S3Bucket,
			AccessKey: cfg.AWS.AccessKey,
			SecretKey: cfg.AWS.SecretKey,
			Endpoint:  cfg.AWS.Endpoint,
		})
		if err != nil {
			return fmt.Errorf("failed to create photo storage: %w", err)
		}
		blobs = s3Store
		log.Info().Str("bucket", cfg.AWS.S3Bucket).Msg("Storing photos in S3")
	} else {
		log.Info().Msg("Storing photos in the database")
	}

	var statusCache cache.StatusCache = cache.Nop{}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, time.Duration(cfg.Redis.TTL)*time.Second)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, status reads will fall back to the database")
		}
		statusCache = redisCache
	}

	var pusher services.Pusher
	if cfg.APNS.KeyPath != "" {
		apns, err := services.NewAPNsPusher(cfg.APNS.KeyPath, cfg.APNS.KeyID, cfg.APNS.TeamID, cfg.APNS.Topic, cfg.APNS.Production)
		if err != nil {
			return err
		}
		pusher = apns
	}

	// Initialize services
	wsHub := services.NewWSHub()
	userService := services.NewUserService(store, cfg.JWT.Secret)
	notifier := services.NewNotificationService(wsHub, pusher, store)
	limits := cfg.Profile.Limits()
	profileService := services.NewProfileService(store, blobs, statusCache, notifier, services.ProfileOptions{
		ModerationEnabled: cfg.Profile.ModerationEnabled,
		Payment:           cfg.Profile.Payment(),
		Limits:            limits,
	})
	moderationService := services.NewModerationService(store, profileService, notifier)

	// base64 grows photos by a third; allow the full gallery plus the JSON around it
	maxBody := int64(limits.MaxPhotos)*int64(limits.MaxPhotoBytes)*4/3 + 1<<20

	router := handlers.NewRouter(handlers.Routes{
		Auth:           userService,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Profiles:       handlers.NewProfileHandler(profileService, maxBody),
		Users:          handlers.NewUserHandler(userService, profileService),
		Moderation:     handlers.NewModerationHandler(moderationService, profileService),
		WebSocket:      handlers.NewWebSocketHandler(wsHub, userService, profileService, originChecker(cfg.Server.AllowedOrigins)),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Bool("moderation_enabled", cfg.Profile.ModerationEnabled).
			Str("payment_policy", string(cfg.Profile.Payment())).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	wsHub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}

// originChecker accepts WebSocket upgrades from the configured origins, or any origin when none are set
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
