package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr         string        `env:"LISTEN_ADDR"`
	Port               string        `env:"PORT" envDefault:"8080"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	AdminPassword      string        `env:"ADMIN_PASSWORD"`
	GinMode            string        `env:"GIN_MODE" envDefault:"release"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	Environment        string        `env:"ENVIRONMENT" envDefault:"production"`
	ServiceName        string        `env:"SERVICE_NAME" envDefault:"wedding-gallery"`
	Function           string        `env:"GALLERY_FUNCTION"`
	ImageHostUploadURL string        `env:"IMAGE_HOST_UPLOAD_URL" envDefault:"https://api.imgbb.com/1/upload"`
	ImageHostTimeout   time.Duration `env:"IMAGE_HOST_TIMEOUT" envDefault:"30s"`
	MigrationBatchSize int           `env:"MIGRATION_BATCH_SIZE" envDefault:"50"`
}

// Load reads the configuration from the environment and normalizes it.
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse env config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *AppConfig) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = "8080"
	}

	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}

	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	// AdminPassword is compared verbatim and left untouched.

	c.GinMode = strings.TrimSpace(c.GinMode)
	if c.GinMode == "" {
		c.GinMode = "release"
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.Function = strings.ToLower(strings.TrimSpace(c.Function))

	c.ImageHostUploadURL = strings.TrimSpace(c.ImageHostUploadURL)
	if c.ImageHostUploadURL == "" {
		c.ImageHostUploadURL = "https://api.imgbb.com/1/upload"
	}
	if c.ImageHostTimeout <= 0 {
		c.ImageHostTimeout = 30 * time.Second
	}
	if c.MigrationBatchSize <= 0 {
		c.MigrationBatchSize = 50
	}
}

// RequireDatabase returns an error when no datastore connection string is configured.
func (c AppConfig) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL not configured")
	}
	return nil
}

// IsDevelopment reports whether human-readable logs should be used.
func (c AppConfig) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev" || c.Environment == "local"
}
