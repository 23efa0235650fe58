package database

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"memorial/internal/config"
	"memorial/pkg/logger"
)

// InitDB opens the configured database and migrates the schema. The
// application terminates if either step fails.
func InitDB(cfg config.DatabaseConfig, env string) *gorm.DB {
	db, err := Open(cfg, env)
	if err != nil {
		logger.LogFatal("Database connection failed: %v", err)
		return nil
	}
	if err := Migrate(db); err != nil {
		logger.LogFatal("Schema migration failed: %v", err)
		return nil
	}

	if stats, err := LoadStats(db); err == nil {
		logger.LogInfo("Database initialized (%s): %d drafts, %d submitted, %d accepted, %d images",
			cfg.Driver, stats.Drafts, stats.Submitted, stats.Accepted, stats.Images)
	} else {
		logger.LogWarn("Failed to load initial stats: %v", err)
	}
	return db
}

// Open connects to sqlite (WAL mode, single writer) or postgres.
func Open(cfg config.DatabaseConfig, env string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:                 newGormLogger(env),
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	}

	switch cfg.Driver {
	case "", "sqlite":
		if err := ensureDir(cfg.Path); err != nil {
			return nil, fmt.Errorf("ensure database directory: %w", err)
		}

		// WAL mode enables concurrent readers and a single writer without locking the entire file.
		// busy_timeout makes the driver wait for the lock instead of failing immediately.
		dsn := fmt.Sprintf(
			"%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_foreign_keys=on",
			cfg.Path,
		)
		db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
		if err != nil {
			return nil, err
		}
		if err := configurePool(db, 1); err != nil {
			return nil, err
		}
		return db, nil

	case "postgres":
		if cfg.DSN == "" {
			return nil, errors.New("postgres driver requires database.dsn")
		}
		db, err := gorm.Open(postgres.Open(cfg.DSN), gormConfig)
		if err != nil {
			return nil, err
		}
		if err := configurePool(db, 10); err != nil {
			return nil, err
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func newGormLogger(env string) gormLogger.Interface {
	if env != "development" {
		return gormLogger.Default.LogMode(gormLogger.Silent)
	}
	return gormLogger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), gormLogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormLogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  true,
	})
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0750)
	}
	return nil
}

func configurePool(db *gorm.DB, maxOpen int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("retrieve database handle: %w", err)
	}

	// SQLite gets a single connection so writers queue in Go instead of
	// failing with "database is locked".
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)
	return nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Submission{}, &Image{}, &Link{}); err != nil {
		return err
	}

	indices := []string{
		"CREATE INDEX IF NOT EXISTS idx_images_order ON images(submission_id, sort_order);",
		"CREATE INDEX IF NOT EXISTS idx_links_order ON links(submission_id, sort_order);",
	}
	for _, idx := range indices {
		if err := db.Exec(idx).Error; err != nil {
			logger.LogWarn("Failed to create index: %v", err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
