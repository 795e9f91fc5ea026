package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/weddinggallery/internal/db"
	"github.com/weddinggallery/internal/imagehost"
)

var ErrMigrationInputRequired = errors.New("api_key and photo_id required")

// DefaultMigrationBatchSize caps how many pending photos ListPending returns.
const DefaultMigrationBatchSize = 50

// Upload outcomes reported per image field.
const (
	UploadStatusUploaded = "uploaded"
	UploadStatusSkipped  = "skipped"
	UploadStatusFailed   = "failed"
)

// PendingPhoto describes a photo that still lacks at least one CDN field.
type PendingPhoto struct {
	ID              uint    `json:"id"`
	URLSize         int     `json:"has_url"`
	ThumbnailSize   int     `json:"has_thumbnail"`
	Alt             string  `json:"alt"`
	CDNFullURL      *string `json:"cdn_full_url"`
	CDNThumbnailURL *string `json:"cdn_thumbnail_url"`
}

// FieldOutcome is the result of migrating one image field.
type FieldOutcome struct {
	Status string  `json:"status"`
	URL    *string `json:"url"`
	Error  string  `json:"error,omitempty"`
}

// MigrationResult reports what MigrateOne did for each field.
type MigrationResult struct {
	PhotoID   uint         `json:"photo_id"`
	Full      FieldOutcome `json:"full"`
	Thumbnail FieldOutcome `json:"thumbnail"`
}

// Succeeded reports whether no field failed.
func (r MigrationResult) Succeeded() bool {
	return r.Full.Status != UploadStatusFailed && r.Thumbnail.Status != UploadStatusFailed
}

// MigrationService moves inline-encoded photos to an external image host.
type MigrationService struct {
	db        *gorm.DB
	uploader  imagehost.Uploader
	batchSize int
	log       zerolog.Logger
}

// NewMigrationService creates a MigrationService. batchSize <= 0 falls back to DefaultMigrationBatchSize.
func NewMigrationService(gdb *gorm.DB, uploader imagehost.Uploader, batchSize int, log zerolog.Logger) *MigrationService {
	if batchSize <= 0 {
		batchSize = DefaultMigrationBatchSize
	}
	return &MigrationService{db: gdb, uploader: uploader, batchSize: batchSize, log: log}
}

type pendingPhotoRow struct {
	ID              uint
	URLSize         int
	ThumbnailSize   int
	Alt             string
	CDNFullURL      *string `gorm:"column:cdn_full_url"`
	CDNThumbnailURL *string `gorm:"column:cdn_thumbnail_url"`
}

// ListPending returns photos missing a CDN field, reporting payload sizes instead of the payloads.
func (s *MigrationService) ListPending(ctx context.Context) ([]PendingPhoto, error) {
	return s.pending(ctx, 0, "display_order asc")
}

func (s *MigrationService) pending(ctx context.Context, afterID uint, order string) ([]PendingPhoto, error) {
	var rows []pendingPhotoRow
	err := s.db.WithContext(ctx).Model(&db.Photo{}).
		Select("id, COALESCE(LENGTH(url), 0) AS url_size, COALESCE(LENGTH(thumbnail_url), 0) AS thumbnail_size, "+
			"alt, cdn_full_url, cdn_thumbnail_url").
		Where("cdn_full_url IS NULL OR cdn_thumbnail_url IS NULL").
		Where("id > ?", afterID).
		Order(order).
		Order("id asc").
		Limit(s.batchSize).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list pending photos: %w", err)
	}

	items := make([]PendingPhoto, 0, len(rows))
	for _, row := range rows {
		items = append(items, PendingPhoto(row))
	}
	return items, nil
}

// MigrateOne uploads the inline images of one photo and records the hosted URLs.
// Fields that already carry a CDN URL are skipped and report the stored URL.
// A failed field upload is logged and reported in the result; it never aborts the other field.
func (s *MigrationService) MigrateOne(ctx context.Context, apiKey string, photoID uint) (MigrationResult, error) {
	if apiKey == "" || photoID == 0 {
		return MigrationResult{}, ErrMigrationInputRequired
	}

	var photo db.Photo
	if err := s.db.WithContext(ctx).
		Select("id", "url", "thumbnail_url", "cdn_full_url", "cdn_thumbnail_url").
		First(&photo, photoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MigrationResult{}, ErrPhotoNotFound
		}
		return MigrationResult{}, fmt.Errorf("load photo %d: %w", photoID, err)
	}

	result := MigrationResult{PhotoID: photoID}
	if photo.CDNFullURL != nil {
		result.Full = FieldOutcome{Status: UploadStatusSkipped, URL: photo.CDNFullURL}
	} else {
		result.Full = s.migrateField(ctx, apiKey, fmt.Sprintf("wedding_full_%d", photoID), photo.URL)
	}

	switch {
	case photo.CDNThumbnailURL != nil:
		result.Thumbnail = FieldOutcome{Status: UploadStatusSkipped, URL: photo.CDNThumbnailURL}
	case photo.ThumbnailURL != nil:
		result.Thumbnail = s.migrateField(ctx, apiKey, fmt.Sprintf("wedding_thumb_%d", photoID), *photo.ThumbnailURL)
	default:
		result.Thumbnail = FieldOutcome{Status: UploadStatusSkipped}
	}

	updates := map[string]interface{}{}
	if result.Full.Status == UploadStatusUploaded {
		updates["cdn_full_url"] = *result.Full.URL
	}
	if result.Thumbnail.Status == UploadStatusUploaded {
		updates["cdn_thumbnail_url"] = *result.Thumbnail.URL
	}
	if len(updates) == 0 {
		return result, nil
	}

	if err := s.db.WithContext(ctx).Model(&db.Photo{}).
		Where("id = ?", photoID).
		Updates(updates).Error; err != nil {
		event := s.log.Error().Err(err).Uint("photo_id", photoID)
		if url, ok := updates["cdn_full_url"]; ok {
			event = event.Interface("cdn_full_url", url)
		}
		if url, ok := updates["cdn_thumbnail_url"]; ok {
			event = event.Interface("cdn_thumbnail_url", url)
		}
		event.Msg("images uploaded but cdn urls not recorded")
		return result, fmt.Errorf("record cdn urls for photo %d: %w", photoID, err)
	}
	return result, nil
}

func (s *MigrationService) migrateField(ctx context.Context, apiKey, name, ref string) FieldOutcome {
	if !imagehost.IsInline(ref) {
		return FieldOutcome{Status: UploadStatusSkipped}
	}

	img, err := imagehost.ParseInline(ref)
	if err != nil {
		s.log.Warn().Err(err).Str("image", name).Msg("inline image has no payload")
		return FieldOutcome{Status: UploadStatusFailed, Error: err.Error()}
	}

	url, err := s.uploader.Upload(ctx, apiKey, name, img.Payload)
	if err != nil {
		s.log.Error().Err(err).Str("image", name).Msg("failed to upload image")
		return FieldOutcome{Status: UploadStatusFailed, Error: err.Error()}
	}

	event := s.log.Info().Str("image", name).Str("url", url).Str("media_type", img.MediaType)
	if img.Format != "" {
		event = event.Int("width", img.Width).Int("height", img.Height)
	}
	event.Msg("image uploaded")
	return FieldOutcome{Status: UploadStatusUploaded, URL: &url}
}

// MigrateAll walks the pending photos in id order, batch by batch, until none are left or limit
// photos were processed. limit <= 0 means no limit. Each photo is visited at most once, so photos
// that stay pending (for example external URLs) do not stall the walk.
// report is called after each photo; a non-nil error from MigrateOne stops the walk.
func (s *MigrationService) MigrateAll(ctx context.Context, apiKey string, limit int, report func(MigrationResult)) (int, error) {
	if apiKey == "" {
		return 0, ErrMigrationInputRequired
	}

	var lastID uint
	processed := 0
	for {
		batch, err := s.pending(ctx, lastID, "id asc")
		if err != nil {
			return processed, err
		}
		if len(batch) == 0 {
			return processed, nil
		}

		for _, p := range batch {
			if limit > 0 && processed >= limit {
				return processed, nil
			}
			if err := ctx.Err(); err != nil {
				return processed, err
			}

			lastID = p.ID
			result, err := s.MigrateOne(ctx, apiKey, p.ID)
			if err != nil {
				return processed, err
			}
			processed++
			if report != nil {
				report(result)
			}
		}
	}
}
