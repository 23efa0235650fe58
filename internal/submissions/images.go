package submissions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"memorial/internal/database"
	"memorial/pkg/imageproc"
	"memorial/pkg/logger"
	"memorial/pkg/utils"
)

// AddImage stores an upload for the session's open draft and appends it to
// the draft's images. The raw bytes are stored first; processing then
// replaces them. Processing failures are logged and the raw file is kept.
func (s *Service) AddImage(ctx context.Context, sid, id uint, data []byte) (*database.Image, error) {
	if _, err := s.EditableDraft(ctx, sid, id); err != nil {
		return nil, err
	}

	ext, ok := utils.DetectImageType(data)
	if !ok {
		return nil, ErrNotAnImage
	}

	key := "images/" + uuid.NewString() + ext
	if err := s.store.Save(ctx, key, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	img := database.Image{
		SubmissionID: id,
		File:         key,
		Format:       strings.TrimPrefix(ext, "."),
		Size:         int64(len(data)),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.Image{}).Where("submission_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		img.SortOrder = int(count)
		return tx.Create(&img).Error
	})
	if err != nil {
		s.removeFiles(ctx, []database.Image{img})
		return nil, fmt.Errorf("record image: %w", err)
	}

	s.process(ctx, &img, data)
	return &img, nil
}

// process compresses the stored upload in place. When the format changes
// the file moves to a key with the matching extension.
func (s *Service) process(ctx context.Context, img *database.Image, data []byte) {
	res, err := imageproc.Compress(data, s.images)
	if err != nil {
		logger.LogError("Failed to compress image %s: %v", img.File, err)
		return
	}

	key := img.File
	if ext := res.Ext(); !strings.HasSuffix(key, ext) {
		key = strings.TrimSuffix(key, extOf(key)) + ext
	}
	if err := s.store.Save(ctx, key, bytes.NewReader(res.Data)); err != nil {
		logger.LogError("Failed to store compressed image %s: %v", key, err)
		return
	}

	err = s.db.WithContext(ctx).Model(&database.Image{}).Where("id = ?", img.ID).Updates(map[string]interface{}{
		"file":   key,
		"width":  res.Width,
		"height": res.Height,
		"format": res.Format,
		"size":   int64(len(res.Data)),
	}).Error
	if err != nil {
		logger.LogError("Failed to update image %d after compression: %v", img.ID, err)
		if key != img.File {
			s.removeFiles(ctx, []database.Image{{File: key}})
		}
		return
	}

	if key != img.File {
		s.removeFiles(ctx, []database.Image{*img})
	}
	img.File, img.Width, img.Height, img.Format, img.Size = key, res.Width, res.Height, res.Format, int64(len(res.Data))
}

func extOf(key string) string {
	if i := strings.LastIndex(key, "."); i > strings.LastIndex(key, "/") {
		return key[i:]
	}
	return ""
}

// DeleteImage removes an image of the session's open draft, row and file.
// Unknown images are a silent no-op.
func (s *Service) DeleteImage(ctx context.Context, sid, imageID uint) error {
	db := s.db.WithContext(ctx)

	var img database.Image
	err := db.First(&img, imageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load image %d: %w", imageID, err)
	}
	if sid == 0 || img.SubmissionID != sid {
		return ErrNotOwner
	}

	var sub database.Submission
	if err := db.Select("id", "submitted_at").First(&sub, img.SubmissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !sub.IsDraft() {
		return ErrNotDraft
	}

	if err := db.Delete(&database.Image{}, img.ID).Error; err != nil {
		return fmt.Errorf("delete image %d: %w", img.ID, err)
	}
	s.removeFiles(ctx, []database.Image{img})
	return nil
}

// ReorderImages assigns sort positions in the order of ids. Ids that do not
// belong to the draft are ignored.
func (s *Service) ReorderImages(ctx context.Context, sid, id uint, ids []uint) error {
	if _, err := s.EditableDraft(ctx, sid, id); err != nil {
		return err
	}
	return s.reorder(ctx, &database.Image{}, id, ids)
}
