package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/weddinggallery/internal/db"
)

var (
	ErrPhotoNotFound     = errors.New("photo not found")
	ErrPhotoIDRequired   = errors.New("photo id is required")
	ErrPhotoImageMissing = errors.New("photo image is required")
	ErrReorderInvalid    = errors.New("reorder entries need a photo id")
)

const (
	// DefaultPhotoAlt is used when a photo is created without a description.
	DefaultPhotoAlt = "Свадебное фото"
	// PhotoPreviewLength is how many characters of the image reference the privileged listing returns.
	PhotoPreviewLength = 100
)

// PhotoListMode selects which columns List returns.
type PhotoListMode int

const (
	PhotoListPublic PhotoListMode = iota
	PhotoListPrivileged
)

// PhotoSummary is a listing row. Privileged-only fields stay nil in public mode.
type PhotoSummary struct {
	ID              uint    `json:"id"`
	Alt             string  `json:"alt"`
	DisplayOrder    int     `json:"display_order"`
	URL             *string `json:"url,omitempty"`
	Size            *int    `json:"size,omitempty"`
	HasThumbnail    *bool   `json:"has_thumbnail,omitempty"`
	CDNFullURL      *string `json:"cdn_full_url,omitempty"`
	CDNThumbnailURL *string `json:"cdn_thumbnail_url,omitempty"`
}

// PhotoInput represents fields accepted when creating a photo.
type PhotoInput struct {
	URL          string
	ThumbnailURL string
	Alt          string
}

// PhotoOrder assigns a new display order to one photo.
type PhotoOrder struct {
	ID           uint
	DisplayOrder int
}

// PhotoService handles photo CRUD and ordering.
type PhotoService struct {
	db        *gorm.DB
	sanitizer *bluemonday.Policy
}

// NewPhotoService creates a PhotoService instance.
func NewPhotoService(gdb *gorm.DB) *PhotoService {
	return &PhotoService{db: gdb, sanitizer: bluemonday.StrictPolicy()}
}

type privilegedPhotoRow struct {
	ID              uint
	Alt             string
	DisplayOrder    int
	URLPreview      string
	Size            int
	ThumbnailSize   int
	CDNFullURL      *string `gorm:"column:cdn_full_url"`
	CDNThumbnailURL *string `gorm:"column:cdn_thumbnail_url"`
}

// List returns every photo ordered by display order.
func (s *PhotoService) List(ctx context.Context, mode PhotoListMode) ([]PhotoSummary, error) {
	query := s.db.WithContext(ctx).Model(&db.Photo{}).Order("display_order asc").Order("id asc")

	if mode != PhotoListPrivileged {
		var photos []db.Photo
		if err := query.Select("id", "alt", "display_order").Find(&photos).Error; err != nil {
			return nil, fmt.Errorf("list photos: %w", err)
		}
		items := make([]PhotoSummary, 0, len(photos))
		for _, p := range photos {
			items = append(items, PhotoSummary{ID: p.ID, Alt: p.Alt, DisplayOrder: p.DisplayOrder})
		}
		return items, nil
	}

	var rows []privilegedPhotoRow
	err := query.Select(
		"id, alt, display_order, SUBSTR(url, 1, ?) AS url_preview, LENGTH(url) AS size, "+
			"COALESCE(LENGTH(thumbnail_url), 0) AS thumbnail_size, cdn_full_url, cdn_thumbnail_url",
		PhotoPreviewLength,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}

	items := make([]PhotoSummary, 0, len(rows))
	for _, row := range rows {
		preview := row.URLPreview
		size := row.Size
		hasThumb := row.ThumbnailSize > 0
		items = append(items, PhotoSummary{
			ID:              row.ID,
			Alt:             row.Alt,
			DisplayOrder:    row.DisplayOrder,
			URL:             &preview,
			Size:            &size,
			HasThumbnail:    &hasThumb,
			CDNFullURL:      row.CDNFullURL,
			CDNThumbnailURL: row.CDNThumbnailURL,
		})
	}
	return items, nil
}

// Get fetches a photo by id.
func (s *PhotoService) Get(ctx context.Context, id uint) (*db.Photo, error) {
	if id == 0 {
		return nil, ErrPhotoNotFound
	}
	var photo db.Photo
	if err := s.db.WithContext(ctx).First(&photo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("get photo %d: %w", id, err)
	}
	return &photo, nil
}

// Create inserts a photo at the end of the display order.
// The max lookup and the insert share a transaction, which does not stop two
// concurrent creators from reading the same maximum.
func (s *PhotoService) Create(ctx context.Context, input PhotoInput) (*db.Photo, error) {
	url := strings.TrimSpace(input.URL)
	if url == "" {
		return nil, ErrPhotoImageMissing
	}

	thumbnail := strings.TrimSpace(input.ThumbnailURL)
	if thumbnail == "" {
		thumbnail = url
	}

	alt := strings.TrimSpace(s.sanitizer.Sanitize(input.Alt))
	if alt == "" {
		alt = DefaultPhotoAlt
	}

	photo := db.Photo{
		URL:          url,
		ThumbnailURL: &thumbnail,
		Alt:          alt,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := nextDisplayOrder(tx)
		if err != nil {
			return err
		}
		photo.DisplayOrder = order
		return tx.Create(&photo).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create photo: %w", err)
	}
	return &photo, nil
}

// Delete removes a photo. Unknown ids are not an error.
func (s *PhotoService) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrPhotoIDRequired
	}
	if err := s.db.WithContext(ctx).Delete(&db.Photo{}, id).Error; err != nil {
		return fmt.Errorf("delete photo %d: %w", id, err)
	}
	return nil
}

// Reorder applies every order change or none of them.
func (s *PhotoService) Reorder(ctx context.Context, orders []PhotoOrder) error {
	for _, o := range orders {
		if o.ID == 0 {
			return ErrReorderInvalid
		}
	}
	if len(orders) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			if err := tx.Model(&db.Photo{}).
				Where("id = ?", o.ID).
				Update("display_order", o.DisplayOrder).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reorder photos: %w", err)
	}
	return nil
}

func nextDisplayOrder(tx *gorm.DB) (int, error) {
	var maxOrder int
	if err := tx.Model(&db.Photo{}).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&maxOrder).Error; err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}
