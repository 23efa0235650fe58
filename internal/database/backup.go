package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
)

var (
	ErrBackupInProgress = errors.New("another backup is currently in progress")
	ErrBackupExists     = errors.New("backup target already exists")
	ErrBackupDriver     = errors.New("backups are only supported for sqlite; use pg_dump for postgres")

	backupMutex sync.Mutex
)

// BackupFilename returns a timestamped default file name.
func BackupFilename(now time.Time) string {
	return fmt.Sprintf("memorial_backup_%s.db", now.Format("2006-01-02_15-04-05"))
}

// Backup writes a consistent point-in-time copy of a sqlite database to dest
// using VACUUM INTO, which does not block the live database.
func Backup(ctx context.Context, db *gorm.DB, driver, dest string) (int64, error) {
	if driver != "" && driver != "sqlite" {
		return 0, ErrBackupDriver
	}

	// Only one backup at a time to prevent resource exhaustion.
	if !backupMutex.TryLock() {
		return 0, ErrBackupInProgress
	}
	defer backupMutex.Unlock()

	if _, err := os.Stat(dest); err == nil {
		return 0, ErrBackupExists
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	query := fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(dest, "'", "''"))
	if err := db.WithContext(ctx).Exec(query).Error; err != nil {
		return 0, fmt.Errorf("database snapshot failed: %w", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return 0, fmt.Errorf("verify backup: %w", err)
	}
	return info.Size(), nil
}
