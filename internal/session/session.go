// Package session keeps the visitor's gate flag and current draft id in a
// signed, encrypted cookie.
package session

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	keyUnlocked     = "unlocked"
	keySubmissionID = "submission_id"

	DefaultName   = "memorial_session"
	DefaultMaxAge = 30 * 24 * 60 * 60 // 30 days
)

type Options struct {
	Secret string
	Name   string
	Secure bool
	MaxAge int
}

type Manager struct {
	store sessions.Store
	name  string
}

func NewManager(opts Options) *Manager {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.MaxAge == 0 {
		opts.MaxAge = DefaultMaxAge
	}

	hashKey := sha256.Sum256([]byte("memorial-auth:" + opts.Secret))
	blockKey := sha256.Sum256([]byte("memorial-enc:" + opts.Secret))

	store := sessions.NewCookieStore(hashKey[:], blockKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: true,                 // JavaScript access forbidden (XSS protection)
		Secure:   opts.Secure,          // HTTPS only in production
		SameSite: http.SameSiteLaxMode, // CSRF
	}
	store.MaxAge(opts.MaxAge)

	return &Manager{store: store, name: opts.Name}
}

// get returns the request's session. A cookie that fails to decode (rotated
// secret, tampering) yields a fresh session.
func (m *Manager) get(r *http.Request) *sessions.Session {
	s, _ := m.store.Get(r, m.name)
	if s == nil {
		s = sessions.NewSession(m.store, m.name)
	}
	return s
}

// IsUnlocked reports whether the visitor passed the password gate.
func (m *Manager) IsUnlocked(r *http.Request) bool {
	v, _ := m.get(r).Values[keyUnlocked].(bool)
	return v
}

func (m *Manager) Unlock(w http.ResponseWriter, r *http.Request) error {
	s := m.get(r)
	s.Values[keyUnlocked] = true
	return s.Save(r, w)
}

// DraftID returns the bound draft id, or 0 when none is bound.
func (m *Manager) DraftID(r *http.Request) uint {
	v, _ := m.get(r).Values[keySubmissionID].(uint)
	return v
}

func (m *Manager) BindDraft(w http.ResponseWriter, r *http.Request, id uint) error {
	s := m.get(r)
	s.Values[keySubmissionID] = id
	return s.Save(r, w)
}

func (m *Manager) ClearDraft(w http.ResponseWriter, r *http.Request) error {
	s := m.get(r)
	delete(s.Values, keySubmissionID)
	return s.Save(r, w)
}
