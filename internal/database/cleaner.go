package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"memorial/pkg/logger"
)

/*
WORKER DETAILS: Draft Janitor
=============================

Every visit to the submission page creates a draft bound to the visitor's
session. Most visitors who never type anything leave an empty row behind.

The janitor runs periodically and:

1. Deletes drafts that are still completely empty (no name, email, text,
   message, images or links with a URL) and were last touched before the
   retention cutoff (database.draft_max_age).

2. Purges placeholder links (empty URL) left behind by abandoned editor
   forms.

Drafts with any content are never touched; only their owning session or a
moderator may delete those.
*/

// StartJanitor runs the cleanup loop until ctx is cancelled. It runs once
// immediately on start.
func StartJanitor(ctx context.Context, db *gorm.DB, interval, maxAge time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	logger.LogInfo("Draft janitor started. Interval: %s, Max draft age: %s", interval, maxAge)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep(ctx, db, maxAge)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(ctx, db, maxAge)
		}
	}
}

func sweep(ctx context.Context, db *gorm.DB, maxAge time.Duration) {
	links, err := PurgeEmptyLinks(ctx, db, 0)
	if err != nil {
		logger.LogError("Janitor failed to purge empty links: %v", err)
	}

	drafts, err := PruneDrafts(ctx, db, time.Now().Add(-maxAge))
	if err != nil {
		logger.LogError("Janitor failed to prune drafts: %v", err)
		return
	}

	if drafts > 0 || links > 0 {
		logger.LogInfo("Janitor removed %d abandoned drafts and %d empty links", drafts, links)
	}
}

// PruneDrafts deletes empty drafts last updated before cutoff.
func PruneDrafts(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("submitted_at IS NULL AND updated_at < ?", cutoff).
		Where("name = '' AND email = '' AND text = '' AND message = ''").
		Where("NOT EXISTS (SELECT 1 FROM images WHERE images.submission_id = submissions.id)").
		Where("NOT EXISTS (SELECT 1 FROM links WHERE links.submission_id = submissions.id AND links.url <> '')").
		Delete(&Submission{})
	return res.RowsAffected, res.Error
}

// PurgeEmptyLinks removes links without a URL. A non-zero submissionID
// limits the purge to that submission.
func PurgeEmptyLinks(ctx context.Context, db *gorm.DB, submissionID uint) (int64, error) {
	q := db.WithContext(ctx).Where("url = '' OR url IS NULL")
	if submissionID != 0 {
		q = q.Where("submission_id = ?", submissionID)
	}
	res := q.Delete(&Link{})
	return res.RowsAffected, res.Error
}
