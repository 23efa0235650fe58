package database

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Submission is one visitor contribution. It starts as an empty draft bound
// to a browser session, becomes submitted on "send" and public once its
// visibility timestamp is set.
type Submission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SubmittedAt *time.Time `gorm:"index" json:"submitted_at,omitempty"`
	AcceptedAt  *time.Time `gorm:"index" json:"accepted_at,omitempty"`
	AcceptedBy  string     `gorm:"size:150" json:"accepted_by,omitempty"`

	// Message is private, shown to moderators only.
	Message string `gorm:"type:text" json:"message"`
	Text    string `gorm:"type:text" json:"text"`
	Name    string `gorm:"size:200" json:"name"`
	Email   string `gorm:"size:200" json:"email"`

	Images []Image `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images"`
	Links  []Link  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"links"`
}

func (s *Submission) IsDraft() bool {
	return s.SubmittedAt == nil
}

func (s *Submission) IsAccepted() bool {
	return s.AcceptedAt != nil
}

// IsPublic reports whether the submission is listed under the given
// moderation mode.
func (s *Submission) IsPublic(requireApproval bool) bool {
	if requireApproval {
		return s.AcceptedAt != nil
	}
	return s.SubmittedAt != nil
}

// PublishedAt is the visibility timestamp for the given mode.
func (s *Submission) PublishedAt(requireApproval bool) *time.Time {
	if requireApproval {
		return s.AcceptedAt
	}
	return s.SubmittedAt
}

func (s *Submission) DisplayName() string {
	if n := strings.TrimSpace(s.Name); n != "" {
		return n
	}
	return "Anonymous"
}

func (s *Submission) Status() string {
	switch {
	case s.AcceptedAt != nil:
		return "accepted"
	case s.SubmittedAt != nil:
		return "submitted"
	default:
		return "draft"
	}
}

type Image struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	SubmissionID uint   `gorm:"index;not null" json:"submission_id"`
	File         string `gorm:"size:255;not null" json:"file"` // storage key
	SortOrder    int    `gorm:"not null;default:0" json:"sort_order"`

	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `gorm:"size:16" json:"format"` // "jpeg", "png" or the upload's own format
	Size   int64  `json:"size"`

	CreatedAt time.Time `json:"created_at"`
}

type Link struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	SubmissionID uint   `gorm:"index;not null" json:"submission_id"`
	URL          string `gorm:"size:255" json:"url"`
	Caption      string `gorm:"size:255" json:"caption"`
	// Embed is the cached oEmbed fragment; empty when resolution failed.
	Embed     string `gorm:"type:text" json:"embed"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VisibilityColumn names the timestamp that decides listing membership.
func VisibilityColumn(requireApproval bool) string {
	if requireApproval {
		return "accepted_at"
	}
	return "submitted_at"
}

// Visible limits a query to publicly listed submissions.
func Visible(requireApproval bool) func(*gorm.DB) *gorm.DB {
	col := VisibilityColumn(requireApproval)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(col + " IS NOT NULL")
	}
}

// Ordered preloads images and links in display order.
func Ordered(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC, id ASC") }).
		Preload("Links", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC, id ASC") })
}
