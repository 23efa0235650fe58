package submissions

import (
	"context"
	"fmt"

	"memorial/internal/database"
)

// Page is one page of the public listing.
type Page struct {
	Items   []database.Submission
	Number  int
	PerPage int
	Total   int64
	Pages   int
}

func (p *Page) HasPrev() bool { return p.Number > 1 }
func (p *Page) HasNext() bool { return p.Number < p.Pages }
func (p *Page) Prev() int     { return p.Number - 1 }
func (p *Page) Next() int     { return p.Number + 1 }

// ListPublic returns visible submissions newest first. Page 1 always
// exists; later pages past the end return ErrPageOutOfRange.
func (s *Service) ListPublic(ctx context.Context, requireApproval bool, page, perPage int) (*Page, error) {
	if perPage <= 0 {
		perPage = 10
	}
	if page < 1 {
		page = 1
	}

	db := s.db.WithContext(ctx).Model(&database.Submission{}).Scopes(database.Visible(requireApproval))

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	if page > pages {
		return nil, ErrPageOutOfRange
	}

	p := &Page{Number: page, PerPage: perPage, Total: total, Pages: pages}
	col := database.VisibilityColumn(requireApproval)
	err := s.db.WithContext(ctx).
		Scopes(database.Visible(requireApproval), database.Ordered).
		Order(col + " DESC").Order("id DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&p.Items).Error
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return p, nil
}

// ListPending returns submitted but not yet accepted records, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]database.Submission, error) {
	return s.List(ctx, "pending")
}

// List returns submissions by lifecycle status: draft, submitted, pending,
// accepted or all.
func (s *Service) List(ctx context.Context, status string) ([]database.Submission, error) {
	q := s.db.WithContext(ctx).Scopes(database.Ordered)
	switch status {
	case "draft":
		q = q.Where("submitted_at IS NULL").Order("id ASC")
	case "submitted":
		q = q.Where("submitted_at IS NOT NULL").Order("submitted_at ASC")
	case "pending":
		q = q.Where("submitted_at IS NOT NULL AND accepted_at IS NULL").Order("submitted_at ASC")
	case "accepted":
		q = q.Where("accepted_at IS NOT NULL").Order("accepted_at DESC")
	case "", "all":
		q = q.Order("id ASC")
	default:
		return nil, fmt.Errorf("unknown status %q", status)
	}

	var out []database.Submission
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return out, nil
}
