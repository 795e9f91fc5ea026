package handler

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/weddinggallery/internal/config"
	"github.com/weddinggallery/internal/db"
	"github.com/weddinggallery/internal/imagehost"
	"github.com/weddinggallery/internal/service"
)

// PhotoManager is the photo store used by the photos function.
type PhotoManager interface {
	List(ctx context.Context, mode service.PhotoListMode) ([]service.PhotoSummary, error)
	Get(ctx context.Context, id uint) (*db.Photo, error)
	Create(ctx context.Context, input service.PhotoInput) (*db.Photo, error)
	Delete(ctx context.Context, id uint) error
	// Reorder applies every entry or none of them.
	Reorder(ctx context.Context, orders []service.PhotoOrder) error
}

// VideoManager is the video slot store used by the videos function.
type VideoManager interface {
	List(ctx context.Context) ([]db.Video, error)
	UpdateURL(ctx context.Context, id uint, url string) error
}

// Authenticator checks the admin password.
type Authenticator interface {
	Check(password string) bool
}

// PhotoMigrator moves inline photos to the image host.
type PhotoMigrator interface {
	ListPending(ctx context.Context) ([]service.PendingPhoto, error)
	MigrateOne(ctx context.Context, apiKey string, photoID uint) (service.MigrationResult, error)
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	photos     PhotoManager
	videos     VideoManager
	auth       Authenticator
	migrations PhotoMigrator
	log        zerolog.Logger
}

// NewAPI constructs a handler set backed by gdb.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig, log zerolog.Logger) *API {
	uploader := imagehost.NewImgBBClient(cfg.ImageHostUploadURL, cfg.ImageHostTimeout)
	return &API{
		photos:     service.NewPhotoService(gdb),
		videos:     service.NewVideoService(gdb),
		auth:       service.NewAuthService(cfg.AdminPassword),
		migrations: service.NewMigrationService(gdb, uploader, cfg.MigrationBatchSize, log),
		log:        log,
	}
}

// NewAPIWithServices wires explicit implementations, mainly for tests and alternative stores.
func NewAPIWithServices(photos PhotoManager, videos VideoManager, auth Authenticator, migrations PhotoMigrator, log zerolog.Logger) *API {
	return &API{
		photos:     photos,
		videos:     videos,
		auth:       auth,
		migrations: migrations,
		log:        log,
	}
}
