// Package submissions implements the memorial's draft workflow: a visitor's
// session owns at most one open draft, edits it, attaches images and links,
// and finally submits it for publication.
//
// Ownership is the only authorization model. Every mutating call takes the
// session's bound draft id (sid) and refuses to touch any other record.
package submissions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"memorial/internal/database"
	"memorial/pkg/imageproc"
	"memorial/pkg/logger"
	"memorial/pkg/mailer"
	"memorial/pkg/storage"
)

var (
	ErrNotFound       = errors.New("submission not found")
	ErrNotOwner       = errors.New("submission belongs to another session")
	ErrNotDraft       = errors.New("submission is no longer a draft")
	ErrNotSubmitted   = errors.New("submission has not been submitted")
	ErrPageOutOfRange = errors.New("page out of range")
	ErrNotAnImage     = errors.New("not an image")
)

// Embedder resolves a link into an HTML fragment.
type Embedder interface {
	Embed(ctx context.Context, rawURL string) (string, error)
}

// Notifier is told about every successful submit.
type Notifier interface {
	Notify(ctx context.Context, n mailer.Notification) error
}

type Options struct {
	DB       *gorm.DB
	Storage  storage.Storage
	Embedder Embedder // nil disables link embedding
	Notifier Notifier // nil disables notifications
	Images   imageproc.Options

	// BaseURL is used in notifications.
	BaseURL string

	// OnChange runs after anything that may change the public listing.
	OnChange func()
}

type Service struct {
	db       *gorm.DB
	store    storage.Storage
	embedder Embedder
	notifier Notifier
	images   imageproc.Options
	baseURL  string
	onChange func()
}

func NewService(opts Options) *Service {
	return &Service{
		db:       opts.DB,
		store:    opts.Storage,
		embedder: opts.Embedder,
		notifier: opts.Notifier,
		images:   opts.Images,
		baseURL:  opts.BaseURL,
		onChange: opts.OnChange,
	}
}

// Storage exposes the media backend, used to build image URLs.
func (s *Service) Storage() storage.Storage {
	return s.store
}

func (s *Service) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Get loads a submission with its images and links in display order.
func (s *Service) Get(ctx context.Context, id uint) (*database.Submission, error) {
	var sub database.Submission
	err := s.db.WithContext(ctx).Scopes(database.Ordered).First(&sub, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load submission %d: %w", id, err)
	}
	return &sub, nil
}

// removeFiles deletes stored image files. Missing files are ignored, other
// failures are logged.
func (s *Service) removeFiles(ctx context.Context, images []database.Image) {
	for _, img := range images {
		if err := s.store.Delete(ctx, img.File); err != nil {
			logger.LogError("Failed to delete image file %s: %v", img.File, err)
		}
	}
}
