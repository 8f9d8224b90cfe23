package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/shoppinglist"
	"github.com/pageza/foodgram/backend/internal/storage"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logging.Info().Str("env", string(config.GetEnvironment())).Msg("starting foodgram API")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = database.NewRedisClient(cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	} else {
		logging.Warn().Msg("redis not configured: logout will not revoke tokens and recipe creation is not rate limited")
	}

	images, mediaRoot, err := newImageStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	var denylist service.TokenDenylist
	var limiter *middleware.RateLimiter
	if redisClient != nil {
		denylist = service.NewRedisDenylist(redisClient)
		if cfg.RateLimit.RecipeCreation > 0 {
			limiter = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RateLimit.RecipeCreation, cfg.RateLimit.Window)
		}
	}

	renderer := shoppinglist.NewRenderer(cfg.ShoppingList.Title, cfg.ShoppingList.FontPath)

	engine := router.SetupRouter(router.Options{
		DB: db,
		Services: api.Services{
			Auth:          service.NewAuthService(db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, denylist),
			Users:         service.NewUserService(db),
			Follows:       service.NewFollowService(db, images),
			Recipes:       service.NewRecipeService(db, images),
			Favorites:     service.NewFavoriteService(db, images),
			ShoppingCart:  service.NewShoppingCartService(db, images, renderer),
			Reference:     service.NewReferenceService(db),
			RecipeLimiter: limiter,
			PageSize:      cfg.Server.PageSize,
		},
		CORSOrigins: cfg.CORS.AllowedOrigins,
		MediaURL:    cfg.Storage.MediaURL,
		MediaRoot:   mediaRoot,
	})

	return server.NewServer(cfg.Server, engine).Run(ctx)
}

// newImageStore returns the configured image store and, for local storage,
// the directory to serve under the media URL.
func newImageStore(ctx context.Context, cfg config.StorageConfig) (storage.ImageStore, string, error) {
	if cfg.Backend == "s3" {
		s3Cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, "", fmt.Errorf("failed to configure S3: %w", err)
		}
		logging.Info().Str("bucket", s3Cfg.BucketName).Msg("storing images in S3")
		return storage.NewS3Store(s3Cfg), "", nil
	}

	store, err := storage.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	if err != nil {
		return nil, "", err
	}
	logging.Info().Str("root", store.Root()).Msg("storing images on local disk")
	return store, store.Root(), nil
}
