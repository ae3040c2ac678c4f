package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/comment-moderation-api/internal/akismet"
	"github.com/comment-moderation-api/internal/api"
	"github.com/comment-moderation-api/internal/auth"
	"github.com/comment-moderation-api/internal/config"
	"github.com/comment-moderation-api/internal/database"
	"github.com/comment-moderation-api/internal/moderation"
	"github.com/comment-moderation-api/internal/notify"
	"github.com/comment-moderation-api/internal/repository"
	"github.com/comment-moderation-api/internal/service"
	"github.com/comment-moderation-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log := logger.New("info", "json")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting comment moderation API server...")

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Spam checker, only when the policy asks for it
	deps := service.Deps{
		Repos:  repos,
		Tokens: auth.NewJWTService(cfg.Admin.JWTSecret, cfg.Admin.TokenTTLHours),
	}
	var checker moderation.SpamChecker
	if cfg.Moderation.UseAkismet {
		client, err := akismet.NewClient(akismet.Config{
			APIKey:     cfg.Akismet.APIKey,
			BlogURL:    cfg.Akismet.BlogURL,
			Endpoint:   cfg.Akismet.Endpoint,
			Timeout:    cfg.Akismet.Timeout,
			MaxRetries: cfg.Akismet.MaxRetries,
			IsTest:     cfg.Akismet.IsTest,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Akismet client")
		}

		verifyCtx, cancel := context.WithTimeout(context.Background(), cfg.Akismet.Timeout)
		if err := client.VerifyKey(verifyCtx); err != nil {
			log.Warn().Err(err).Msg("Akismet key verification failed")
		}
		cancel()

		checker = client
		deps.Reporter = client
	}

	moderator, err := moderation.NewModerator(cfg.Policy(), checker, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure moderation")
	}
	deps.Moderator = moderator

	// Moderation notifications
	if cfg.Redis.Addr != "" {
		notifier, err := notify.NewRedisNotifier(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer notifier.Close()
		deps.Notifier = notifier
	}

	// Initialize services
	services := service.NewServices(deps, cfg, log)

	// Initialize router
	router := api.NewRouter(services, cfg, log, db)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
