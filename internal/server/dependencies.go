package server

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recipedia/backend/config"
	"github.com/pageza/recipedia/backend/internal/api"
	"github.com/pageza/recipedia/backend/internal/logging"
	"github.com/pageza/recipedia/backend/internal/middleware"
	"github.com/pageza/recipedia/backend/internal/service"
)

// NewDependencies wires the services behind the API. redisClient may be
// nil, which disables token revocation and the recipe creation limit.
func NewDependencies(ctx context.Context, cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (api.Dependencies, error) {
	images, mediaDir, err := newImageStore(ctx, cfg)
	if err != nil {
		return api.Dependencies{}, err
	}

	var denylist service.TokenDenylist
	var createLimit gin.HandlerFunc
	if redisClient != nil {
		denylist = service.NewRedisDenylist(redisClient)
		createLimit = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit).Middleware()
	}

	relations := service.NewRelationService(db)
	return api.Dependencies{
		Auth:              service.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL, denylist),
		Users:             service.NewUserService(db, cfg.PageSize),
		Recipes:           service.NewRecipeService(db, images, cfg.PageSize),
		Relations:         relations,
		Shopping:          service.NewShoppingService(db),
		Tags:              service.NewTagService(db),
		Ingredients:       service.NewIngredientService(db),
		Projector:         service.NewProjector(relations, images),
		PageSize:          cfg.PageSize,
		RecipeCreateLimit: createLimit,
		HealthCheck:       healthCheck(db, redisClient),
		MediaDir:          mediaDir,
		MediaURL:          cfg.MediaURL,
	}, nil
}

// newImageStore picks S3 when a bucket is configured. mediaDir is empty
// unless images are served from the local filesystem.
func newImageStore(ctx context.Context, cfg *config.Config) (service.ImageStore, string, error) {
	if cfg.S3BucketName != "" {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		logging.Info().Str("bucket", s3cfg.BucketName).Msg("storing images in s3")
		return service.NewS3ImageStore(s3cfg.Client, s3cfg.BucketName, s3cfg.Region, cfg.MediaURL), "", nil
	}
	logging.Info().Str("dir", cfg.MediaDir).Msg("storing images on disk")
	return service.NewLocalImageStore(cfg.MediaDir, cfg.MediaURL), cfg.MediaDir, nil
}

func healthCheck(db *gorm.DB, redisClient *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return err
		}
		if redisClient != nil {
			return redisClient.Ping(ctx).Err()
		}
		return nil
	}
}
