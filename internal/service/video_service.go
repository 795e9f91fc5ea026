package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/weddinggallery/internal/db"
)

var ErrVideoIDRequired = errors.New("video id is required")

// VideoService manages the fixed video slots.
type VideoService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewVideoService creates a VideoService instance.
func NewVideoService(gdb *gorm.DB) *VideoService {
	return &VideoService{db: gdb, now: time.Now}
}

// List returns all video slots ordered by display order.
func (s *VideoService) List(ctx context.Context) ([]db.Video, error) {
	var videos []db.Video
	if err := s.db.WithContext(ctx).Order("display_order asc").Order("id asc").Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}

// UpdateURL sets the URL of a slot, clearing it when url is blank.
// Unknown ids are not an error.
func (s *VideoService) UpdateURL(ctx context.Context, id uint, url string) error {
	if id == 0 {
		return ErrVideoIDRequired
	}

	var value interface{}
	if trimmed := strings.TrimSpace(url); trimmed != "" {
		value = trimmed
	}

	err := s.db.WithContext(ctx).Model(&db.Video{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"url":        value,
			"updated_at": s.now(),
		}).Error
	if err != nil {
		return fmt.Errorf("update video %d: %w", id, err)
	}
	return nil
}
