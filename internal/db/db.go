package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrDSNMissing is returned when Open is called without a connection string.
var ErrDSNMissing = errors.New("database connection string is empty")

// Options tunes how a connection is opened.
type Options struct {
	// LogLevel defaults to logger.Warn.
	LogLevel logger.LogLevel
}

// Open connects to the datastore named by dsn.
// postgres:// and postgresql:// URLs use the Postgres driver; anything else is treated as a SQLite path or DSN.
func Open(dsn string, opts Options) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, ErrDSNMissing
	}

	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	if IsPostgresDSN(dsn) {
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	if err := ensureParentDir(dsn); err != nil {
		return nil, err
	}
	return gorm.Open(sqlite.Open(dsn), cfg)
}

// IsPostgresDSN reports whether dsn addresses a Postgres server.
func IsPostgresDSN(dsn string) bool {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// AutoMigrate creates or updates the gallery tables.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&Photo{}, &Video{})
}

// Close releases the connection behind gdb. A nil handle is ignored.
func Close(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ensureParentDir(dsn string) error {
	if strings.HasPrefix(dsn, "file:") || strings.Contains(dsn, ":memory:") {
		return nil
	}

	dir := filepath.Dir(dsn)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
