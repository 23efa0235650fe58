package submissions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"memorial/internal/database"
	"memorial/pkg/logger"
	"memorial/pkg/mailer"
)

const (
	MaxNameLength    = 200
	MaxEmailLength   = 200
	MaxURLLength     = 255
	MaxCaptionLength = 255

	msgNameRequired   = "Name is required!"
	msgContentMissing = "Please upload images or add text to submit."
)

type LinkInput struct {
	ID      uint
	URL     string
	Caption string
}

// DraftForm carries the editable fields of a draft.
type DraftForm struct {
	Text    string
	Message string
	Name    string
	Email   string
	Links   []LinkInput
}

// ValidationErrors maps form fields to their messages.
type ValidationErrors map[string][]string

func (v ValidationErrors) Add(field, msg string) {
	v[field] = append(v[field], msg)
}

func (v ValidationErrors) Has(field string) bool {
	return len(v[field]) > 0
}

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for field, msgs := range v {
		parts = append(parts, field+": "+strings.Join(msgs, " "))
	}
	return strings.Join(parts, "; ")
}

func (f *DraftForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	for i := range f.Links {
		f.Links[i].URL = strings.TrimSpace(f.Links[i].URL)
		f.Links[i].Caption = strings.TrimSpace(f.Links[i].Caption)
	}
}

// Check validates field lengths. It applies to every save.
func (f *DraftForm) Check() ValidationErrors {
	errs := ValidationErrors{}
	tooLong := func(field, val string, max int) {
		if utf8.RuneCountInString(val) > max {
			errs.Add(field, fmt.Sprintf("Ensure this value has at most %d characters.", max))
		}
	}
	tooLong("name", f.Name, MaxNameLength)
	tooLong("email", f.Email, MaxEmailLength)
	for i, l := range f.Links {
		tooLong(fmt.Sprintf("links.%d.url", i), l.URL, MaxURLLength)
		tooLong(fmt.Sprintf("links.%d.caption", i), l.Caption, MaxCaptionLength)
	}
	return errs
}

// Validate reports what keeps sub from being submitted.
func Validate(sub *database.Submission) ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(sub.Name) == "" {
		errs.Add("name", msgNameRequired)
	}
	if strings.TrimSpace(sub.Text) == "" && len(sub.Images) == 0 {
		errs.Add("text", msgContentMissing)
	}
	return errs
}

// ResumeDraft returns the session's open draft or creates a new one.
func (s *Service) ResumeDraft(ctx context.Context, sid uint) (*database.Submission, error) {
	db := s.db.WithContext(ctx)

	if sid != 0 {
		var sub database.Submission
		err := db.Where("submitted_at IS NULL").First(&sub, sid).Error
		if err == nil {
			return &sub, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resume draft: %w", err)
		}
	}

	sub := database.Submission{}
	if err := db.Create(&sub).Error; err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	return &sub, nil
}

// EditableDraft loads draft id for the session bound to sid. Placeholder
// links are purged on every load.
func (s *Service) EditableDraft(ctx context.Context, sid, id uint) (*database.Submission, error) {
	if sid == 0 || sid != id {
		return nil, ErrNotOwner
	}
	if _, err := database.PurgeEmptyLinks(ctx, s.db, id); err != nil {
		logger.LogWarn("Failed to purge empty links of draft %d: %v", id, err)
	}

	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sub.IsDraft() {
		return nil, ErrNotDraft
	}
	return sub, nil
}

// SaveDraft stores form into the session's draft. Links are matched by id;
// new links are appended and links left without a URL are removed.
func (s *Service) SaveDraft(ctx context.Context, sid, id uint, form DraftForm) (*database.Submission, ValidationErrors, error) {
	form.normalize()

	sub, err := s.EditableDraft(ctx, sid, id)
	if err != nil {
		return nil, nil, err
	}
	if errs := form.Check(); len(errs) > 0 {
		applyForm(sub, form)
		return sub, errs, nil
	}

	plan := s.planLinks(ctx, sub, form.Links)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&database.Submission{}).
			Where("id = ? AND submitted_at IS NULL", id).
			Updates(map[string]interface{}{
				"text":       form.Text,
				"message":    form.Message,
				"name":       form.Name,
				"email":      form.Email,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotDraft
		}
		return plan.apply(tx, id)
	})
	if err != nil {
		if errors.Is(err, ErrNotDraft) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("save draft %d: %w", id, err)
	}

	sub, err = s.Get(ctx, id)
	return sub, nil, err
}

func applyForm(sub *database.Submission, form DraftForm) {
	sub.Text, sub.Message, sub.Name, sub.Email = form.Text, form.Message, form.Name, form.Email
}

// Submit saves form and, when the draft validates, marks it submitted
// exactly once. Validation failures leave the draft open.
func (s *Service) Submit(ctx context.Context, sid, id uint, form DraftForm) (*database.Submission, ValidationErrors, error) {
	sub, errs, err := s.SaveDraft(ctx, sid, id, form)
	if err != nil || len(errs) > 0 {
		return sub, errs, err
	}

	if errs := Validate(sub); len(errs) > 0 {
		return sub, errs, nil
	}

	now := time.Now()
	res := s.db.WithContext(ctx).Model(&database.Submission{}).
		Where("id = ? AND submitted_at IS NULL", id).
		Update("submitted_at", now)
	if res.Error != nil {
		return nil, nil, fmt.Errorf("submit %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil, ErrNotDraft
	}
	sub.SubmittedAt = &now

	logger.LogSuccess("Submission #%d received from %s", sub.ID, sub.DisplayName())
	s.notify(ctx, sub)
	s.changed()
	return sub, nil, nil
}

func (s *Service) notify(ctx context.Context, sub *database.Submission) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(context.WithoutCancel(ctx), mailer.Notification{
		SubmissionID: sub.ID,
		Name:         sub.Name,
		Email:        sub.Email,
		Excerpt:      sub.Text,
		SiteURL:      s.baseURL,
	})
	if err != nil {
		logger.LogError("Failed to send submission notification for #%d: %v", sub.ID, err)
	}
}

// Delete removes the session's own submission together with its images,
// stored files and links. It is a no-op (false) for foreign, unknown or
// accepted submissions.
func (s *Service) Delete(ctx context.Context, sid, id uint) (bool, error) {
	if sid == 0 || sid != id {
		return false, nil
	}

	sub, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if sub.IsAccepted() {
		return false, nil
	}

	if err := s.purge(ctx, sub); err != nil {
		return false, err
	}
	logger.LogInfo("Submission #%d deleted by its owner", id)
	if !sub.IsDraft() {
		s.changed()
	}
	return true, nil
}

// AdminDelete removes any submission.
func (s *Service) AdminDelete(ctx context.Context, id uint) error {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.purge(ctx, sub); err != nil {
		return err
	}
	s.changed()
	return nil
}

func (s *Service) purge(ctx context.Context, sub *database.Submission) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", sub.ID).Delete(&database.Image{}).Error; err != nil {
			return err
		}
		if err := tx.Where("submission_id = ?", sub.ID).Delete(&database.Link{}).Error; err != nil {
			return err
		}
		return tx.Delete(&database.Submission{}, sub.ID).Error
	})
	if err != nil {
		return fmt.Errorf("delete submission %d: %w", sub.ID, err)
	}
	s.removeFiles(ctx, sub.Images)
	return nil
}

// Accept publishes a submitted record under moderation mode. Accepting an
// accepted record is a no-op.
func (s *Service) Accept(ctx context.Context, id uint, moderator string) (*database.Submission, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.IsDraft() {
		return nil, ErrNotSubmitted
	}
	if sub.IsAccepted() {
		return sub, nil
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Model(sub).Updates(map[string]interface{}{
		"accepted_at": now,
		"accepted_by": moderator,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("accept %d: %w", id, err)
	}
	sub.AcceptedAt, sub.AcceptedBy = &now, moderator

	s.changed()
	return sub, nil
}

// Unaccept withdraws a published record from the moderated listing.
func (s *Service) Unaccept(ctx context.Context, id uint) (*database.Submission, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sub.IsAccepted() {
		return sub, nil
	}

	err = s.db.WithContext(ctx).Model(sub).Updates(map[string]interface{}{
		"accepted_at": nil,
		"accepted_by": "",
	}).Error
	if err != nil {
		return nil, fmt.Errorf("unaccept %d: %w", id, err)
	}
	sub.AcceptedAt, sub.AcceptedBy = nil, ""

	s.changed()
	return sub, nil
}
