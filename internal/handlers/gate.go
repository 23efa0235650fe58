package handlers

import (
	"net/http"
	"net/url"
	"time"

	"memorial/pkg/logger"
	"memorial/pkg/utils"
)

const gatePath = "/submit/password/"

// gateDelay slows down a wrong password answer.
var gateDelay = 500 * time.Millisecond

// RequireUnlocked sends visitors who have not entered the submission
// password to the gate, remembering where they wanted to go.
func (s *Server) RequireUnlocked(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.sessions.IsUnlocked(r) {
			http.Redirect(w, r, gatePath+"?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
			return
		}
		next(w, r)
	}
}

// PasswordHandler renders the gate form and checks the shared password.
func (s *Server) PasswordHandler(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	data := view{Title: "Password", Next: next}

	if r.Method != http.MethodPost {
		s.html(w, http.StatusOK, "password", data)
		return
	}

	if !utils.SecretsMatch(r.PostFormValue("password"), s.conf.Security.SubmissionPassword) {
		logger.LogWarn("Incorrect submission password from %s", s.proxies.ClientIP(r))
		// Artificial delay to slow down brute-force scripts
		time.Sleep(gateDelay)
		data.Error = "Incorrect password"
		s.html(w, http.StatusOK, "password", data)
		return
	}

	if err := s.sessions.Unlock(w, r); err != nil {
		logger.LogError("Failed to save session: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, utils.SafeRedirectPath(next, "/submit/"), http.StatusSeeOther)
}
