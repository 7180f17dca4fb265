package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/recipedia/backend/config"
	"github.com/pageza/recipedia/backend/internal/api"
	"github.com/pageza/recipedia/backend/internal/database"
	"github.com/pageza/recipedia/backend/internal/logging"
	"github.com/pageza/recipedia/backend/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.New(cfg)
	if err != nil {
		logging.Error().Err(err).Msg("failed to connect to database")
		os.Exit(1)
	}
	if err := database.RunMigrations(db); err != nil {
		logging.Error().Err(err).Msg("failed to run migrations")
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(cfg)
		if err != nil {
			logging.Error().Err(err).Msg("failed to connect to redis")
			os.Exit(1)
		}
		defer redisClient.Close()
	} else {
		logging.Warn().Msg("redis is not configured; rate limiting and token revocation are disabled")
	}

	deps, err := server.NewDependencies(context.Background(), cfg, db, redisClient)
	if err != nil {
		logging.Error().Err(err).Msg("failed to initialize services")
		os.Exit(1)
	}

	srv := server.New(cfg, api.NewRouter(deps, cfg.AllowedOrigins()))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logging.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logging.Error().Err(err).Msg("server shutdown error")
		os.Exit(1)
	}
	logging.Info().Msg("server stopped")
}
