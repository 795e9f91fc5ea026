package db

import (
	"time"

	"gorm.io/gorm"
)

// Photo 定义婚礼相册中的一张照片
type Photo struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	URL             string    `gorm:"type:text;not null" json:"url"`
	ThumbnailURL    *string   `gorm:"type:text" json:"thumbnail_url"`
	CDNFullURL      *string   `gorm:"column:cdn_full_url;type:text" json:"cdn_full_url"`
	CDNThumbnailURL *string   `gorm:"column:cdn_thumbnail_url;type:text" json:"cdn_thumbnail_url"`
	Alt             string    `gorm:"type:text" json:"alt"`
	DisplayOrder    int       `gorm:"index;default:0" json:"display_order"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName keeps the table name shared with the existing deployment.
func (Photo) TableName() string {
	return "wedding_photos"
}

// Video 是一个预先配置的视频位，URL 为空表示尚未填写
type Video struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `json:"title"`
	URL          *string   `gorm:"type:text" json:"url"`
	DisplayOrder int       `gorm:"index;default:0" json:"display_order"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName keeps the table name shared with the existing deployment.
func (Video) TableName() string {
	return "wedding_videos"
}

// DefaultVideoSlots lists the slots provisioned on a fresh database.
var DefaultVideoSlots = []string{"Церемония", "Банкет", "Фильм"}

// SeedVideoSlots inserts DefaultVideoSlots when the videos table is empty.
func SeedVideoSlots(gdb *gorm.DB) (int, error) {
	var count int64
	if err := gdb.Model(&Video{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	slots := make([]Video, 0, len(DefaultVideoSlots))
	for i, title := range DefaultVideoSlots {
		slots = append(slots, Video{Title: title, DisplayOrder: i + 1})
	}
	if err := gdb.Create(&slots).Error; err != nil {
		return 0, err
	}
	return len(slots), nil
}
