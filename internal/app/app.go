package app

import (
	"context"
	"log/slog"

	httpapp "asha_gallery/internal/app/http"
	"asha_gallery/internal/config"
	"asha_gallery/internal/repository"
	gallerysvc "asha_gallery/internal/services/gallery_service"
	tokensvc "asha_gallery/internal/services/token_service"
	usersvc "asha_gallery/internal/services/user_service"
	"asha_gallery/internal/storage/filestorage"
	redisstorage "asha_gallery/internal/storage/redis"
	httprouters "asha_gallery/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	Repo       *repository.Repository

	// Redis is nil when the revocation ledger runs in process memory.
	Redis *redisstorage.Client
}

func New(log *slog.Logger, cfg *config.Config) *App {
	repo, err := repository.NewRepository(context.Background(), cfg.DSN)
	if err != nil {
		panic(err)
	}

	tokenRepo, redisClient := newTokenRepo(log, cfg)

	files, err := newFileStorage(cfg)
	if err != nil {
		panic(err)
	}

	userService := usersvc.NewUserService(log, repo.User)
	tokenService := tokensvc.NewTokenService(tokenRepo, cfg.TokenSecret, cfg.TokenTTL)
	galleryService := gallerysvc.NewGalleryService(log, repo.Gallery, files)

	routers := httprouters.NewRouter(log, userService, tokenService, galleryService)

	return &App{
		HTTPServer: httpapp.New(log, cfg, routers),
		Repo:       repo,
		Redis:      redisClient,
	}
}

// newTokenRepo selects the revocation ledger backend. Without a redis
// address the ledger lives in process memory, which is enough for a
// single instance. The returned client is nil for the in-memory
// ledger; otherwise the caller owns it and closes it on shutdown.
func newTokenRepo(log *slog.Logger, cfg *config.Config) (repository.TokenRepository, *redisstorage.Client) {
	if cfg.Redis.RedisAddr == "" {
		log.Info("token revocation ledger: in-memory")
		return repository.NewMemoryTokenRepo(), nil
	}

	client := redisstorage.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
	if err := client.HealthCheck(context.Background()); err != nil {
		panic(err)
	}

	log.Info("token revocation ledger: redis", slog.String("addr", cfg.Redis.RedisAddr))

	return repository.NewRedisTokenRepo(client), client
}

func newFileStorage(cfg *config.Config) (filestorage.FileStorage, error) {
	switch cfg.Storage.Variant {
	case config.StorageVariantCloudinary:
		return filestorage.NewCloudinaryStorage(cfg.Storage.CloudinaryURL, cfg.Storage.Folder)
	default:
		return filestorage.NewLocalFileStorage(cfg.Storage.BaseDir, cfg.Storage.BaseURL)
	}
}
