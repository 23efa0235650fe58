package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"memorial/internal/submissions"
	"memorial/pkg/logger"
)

// ListHandler renders the public listing. Rendered pages are cached per page
// number and moderation mode.
func (s *Server) ListHandler(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.NotFound(w, r)
			return
		}
		page = n
	}

	requireApproval := s.requireApproval()
	key := pageKey(page, requireApproval)

	// Waiters share the leader's result, so the leader's cancellation must
	// not fail them.
	ctx := context.WithoutCancel(r.Context())

	data, err, _ := s.requestGroup.Do(key, func() (interface{}, error) {
		// Double-check cache inside the group
		if s.pages != nil {
			if cached, ok := s.pages.Get(key); ok {
				return cached, nil
			}
		}

		p, err := s.subs.ListPublic(ctx, requireApproval, page, s.conf.Site.PageSize)
		if err != nil {
			return nil, err
		}
		body, err := s.tmpl.bytes("list", view{Page: p, RequireApproval: requireApproval})
		if err != nil {
			return nil, err
		}

		if s.pages != nil {
			s.pages.Set(key, body)
		}
		return body, nil
	})

	if errors.Is(err, submissions.ErrPageOutOfRange) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		logger.LogError("Failed to render listing page %d: %v", page, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	serveWithETag(w, r, data.([]byte))
}

func pageKey(page int, requireApproval bool) string {
	mode := "submitted"
	if requireApproval {
		mode = "accepted"
	}
	return fmt.Sprintf("list:%s:%d", mode, page)
}

// serveWithETag writes an HTML page that browsers must revalidate.
func serveWithETag(w http.ResponseWriter, r *http.Request, body []byte) {
	hash := sha256.Sum256(body)
	etag := hex.EncodeToString(hash[:])

	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", `"`+etag+`"`)

	if match := r.Header.Get("If-None-Match"); match != "" {
		if strings.Contains(match, etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	writeHTML(w, http.StatusOK, body)
}
