package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"log"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/weddinggallery/internal/config"
	"github.com/weddinggallery/internal/db"
	"github.com/weddinggallery/internal/service"
)

type samplePhoto struct {
	alt    string
	width  int
	height int
	tint   color.RGBA
}

var samplePhotos = []samplePhoto{
	{alt: "Сборы невесты", width: 1200, height: 800, tint: color.RGBA{R: 238, G: 214, B: 196, A: 255}},
	{alt: "Первый взгляд", width: 800, height: 1200, tint: color.RGBA{R: 210, G: 180, B: 160, A: 255}},
	{alt: "Кольца", width: 900, height: 900, tint: color.RGBA{R: 230, G: 200, B: 120, A: 255}},
	{alt: "Регистрация", width: 1600, height: 900, tint: color.RGBA{R: 190, G: 200, B: 220, A: 255}},
	{alt: "Первый танец", width: 720, height: 1080, tint: color.RGBA{R: 120, G: 90, B: 140, A: 255}},
	{alt: "Торт", width: 1000, height: 1000, tint: color.RGBA{R: 250, G: 240, B: 230, A: 255}},
	{alt: "Гости", width: 1500, height: 1000, tint: color.RGBA{R: 170, G: 200, B: 170, A: 255}},
	{alt: "", width: 1080, height: 1350, tint: color.RGBA{R: 200, G: 160, B: 170, A: 255}},
}

// 测试数据生成器
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.Open(cfg.DatabaseURL, db.Options{})
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}
	defer db.Close(gdb)

	if err := db.AutoMigrate(gdb); err != nil {
		log.Fatal("数据库迁移失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	slots, err := db.SeedVideoSlots(gdb)
	if err != nil {
		log.Fatal("视频位创建失败:", err)
	}
	fmt.Printf("✅ 视频位: 新建 %d 个\n", slots)

	photos, err := createTestPhotos(context.Background(), gdb)
	if err != nil {
		log.Fatal("照片创建失败:", err)
	}
	fmt.Printf("✅ 照片: 新建 %d 张\n", photos)
}

// createTestPhotos 写入内联编码的示例照片，已有照片时跳过。
func createTestPhotos(ctx context.Context, gdb *gorm.DB) (int, error) {
	var count int64
	if err := gdb.Model(&db.Photo{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		fmt.Println("照片已存在，跳过创建")
		return 0, nil
	}

	svc := service.NewPhotoService(gdb)
	for _, sample := range samplePhotos {
		full, err := encodeSample(sample.width, sample.height, sample.tint)
		if err != nil {
			return 0, err
		}
		thumb, err := encodeSample(sample.width/4, sample.height/4, sample.tint)
		if err != nil {
			return 0, err
		}
		if _, err := svc.Create(ctx, service.PhotoInput{URL: full, ThumbnailURL: thumb, Alt: sample.alt}); err != nil {
			return 0, err
		}
	}
	return len(samplePhotos), nil
}

// encodeSample 生成纯色 JPEG 并编码为 data URL。
func encodeSample(width, height int, tint color.RGBA) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, tint)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 60}); err != nil {
		return "", fmt.Errorf("encode sample: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
