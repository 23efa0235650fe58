package submissions

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"memorial/internal/database"
	"memorial/pkg/logger"
	"memorial/pkg/oembed"
)

type linkPlan struct {
	update []database.Link
	create []database.Link
	remove []uint
}

// planLinks matches submitted link rows against the draft's links and
// resolves embeds for new or changed URLs. It runs before the save
// transaction so slow providers never hold a database lock.
func (s *Service) planLinks(ctx context.Context, sub *database.Submission, inputs []LinkInput) linkPlan {
	existing := make(map[uint]database.Link, len(sub.Links))
	next := 0
	for _, l := range sub.Links {
		existing[l.ID] = l
		if l.SortOrder >= next {
			next = l.SortOrder + 1
		}
	}

	var plan linkPlan
	for _, in := range inputs {
		cur, known := existing[in.ID]
		switch {
		case known && in.URL == "":
			plan.remove = append(plan.remove, cur.ID)
		case known:
			if cur.URL != in.URL || cur.Embed == "" {
				cur.Embed = s.resolveEmbed(ctx, in.URL)
			}
			cur.URL, cur.Caption = in.URL, in.Caption
			plan.update = append(plan.update, cur)
		case in.URL != "":
			// Unknown ids (another draft's link, stale form) become new rows.
			plan.create = append(plan.create, database.Link{
				SubmissionID: sub.ID,
				URL:          in.URL,
				Caption:      in.Caption,
				Embed:        s.resolveEmbed(ctx, in.URL),
				SortOrder:    next,
			})
			next++
		}
	}
	return plan
}

func (p linkPlan) apply(tx *gorm.DB, submissionID uint) error {
	for _, l := range p.update {
		err := tx.Model(&database.Link{}).
			Where("id = ? AND submission_id = ?", l.ID, submissionID).
			Updates(map[string]interface{}{"url": l.URL, "caption": l.Caption, "embed": l.Embed}).Error
		if err != nil {
			return err
		}
	}
	if len(p.remove) > 0 {
		if err := tx.Where("submission_id = ? AND id IN ?", submissionID, p.remove).Delete(&database.Link{}).Error; err != nil {
			return err
		}
	}
	if len(p.create) > 0 {
		if err := tx.Create(&p.create).Error; err != nil {
			return err
		}
	}
	return tx.Where("submission_id = ? AND (url = '' OR url IS NULL)", submissionID).Delete(&database.Link{}).Error
}

// resolveEmbed never fails: any provider problem yields an empty fragment.
func (s *Service) resolveEmbed(ctx context.Context, rawURL string) string {
	if s.embedder == nil || rawURL == "" {
		return ""
	}
	html, err := s.embedder.Embed(ctx, rawURL)
	if err != nil {
		if !errors.Is(err, oembed.ErrNoProvider) {
			logger.LogWarn("Embed lookup failed for %s: %v", rawURL, err)
		}
		return ""
	}
	return html
}

// ReorderLinks assigns sort positions in the order of ids. Ids that do not
// belong to the draft are ignored.
func (s *Service) ReorderLinks(ctx context.Context, sid, id uint, ids []uint) error {
	if _, err := s.EditableDraft(ctx, sid, id); err != nil {
		return err
	}
	return s.reorder(ctx, &database.Link{}, id, ids)
}

func (s *Service) reorder(ctx context.Context, model interface{}, id uint, ids []uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for order, itemID := range ids {
			err := tx.Model(model).
				Where("id = ? AND submission_id = ?", itemID, id).
				Update("sort_order", order).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
