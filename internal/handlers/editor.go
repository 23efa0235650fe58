package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"memorial/internal/database"
	"memorial/internal/submissions"
	"memorial/pkg/logger"
	"memorial/pkg/utils"
)

func editPath(id uint) string {
	return fmt.Sprintf("/edit/%d/", id)
}

// SubmitHandler resumes the session's open draft, creating one when there
// is none, and redirects to its editor.
func (s *Server) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	sid := s.sessions.DraftID(r)
	sub, err := s.subs.ResumeDraft(r.Context(), sid)
	if err != nil {
		logger.LogError("Failed to resume draft: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if sub.ID != sid {
		if err := s.sessions.BindDraft(w, r, sub.ID); err != nil {
			logger.LogError("Failed to save session: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
	http.Redirect(w, r, editPath(sub.ID), http.StatusFound)
}

// EditorHandler shows the draft editor (GET) and saves or submits it (POST).
// Only the draft bound to the session can be edited; any other id goes back
// through /submit/.
func (s *Server) EditorHandler(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	sid := s.sessions.DraftID(r)
	if sid == 0 || sid != id {
		http.Redirect(w, r, "/submit/", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodPost {
		s.saveDraft(w, r, sid, id)
		return
	}

	sub, err := s.subs.EditableDraft(r.Context(), sid, id)
	if err != nil {
		s.editorFailed(w, r, err)
		return
	}
	s.html(w, http.StatusOK, "edit", view{
		Title:     "Share a memory",
		Draft:     sub,
		Links:     linkRows(sub.Links),
		Saved:     r.URL.Query().Get("saved") == "1",
		MaxUpload: utils.FormatBytes(s.maxUpload),
	})
}

func (s *Server) saveDraft(w http.ResponseWriter, r *http.Request, sid, id uint) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := parseDraftForm(r.PostForm)
	_, send := r.PostForm["send"]

	var (
		sub  *database.Submission
		errs submissions.ValidationErrors
		err  error
	)
	if send {
		sub, errs, err = s.subs.Submit(r.Context(), sid, id, form)
	} else {
		sub, errs, err = s.subs.SaveDraft(r.Context(), sid, id, form)
	}
	if err != nil {
		s.editorFailed(w, r, err)
		return
	}

	if len(errs) > 0 {
		// Nothing was stored when the field checks failed, so show what was typed.
		rows := sub.Links
		if len(form.Check()) > 0 {
			rows = nil
			for _, l := range form.Links {
				rows = append(rows, database.Link{ID: l.ID, URL: l.URL, Caption: l.Caption})
			}
		}
		s.html(w, http.StatusOK, "edit", view{
			Title:     "Share a memory",
			Draft:     sub,
			Links:     linkRows(rows),
			Errors:    errs,
			MaxUpload: utils.FormatBytes(s.maxUpload),
		})
		return
	}

	if send {
		if err := s.sessions.ClearDraft(w, r); err != nil {
			logger.LogError("Failed to save session: %v", err)
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, editPath(id)+"?saved=1", http.StatusSeeOther)
}

// editorFailed maps service errors of the editor to a response.
func (s *Server) editorFailed(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, submissions.ErrNotOwner),
		errors.Is(err, submissions.ErrNotDraft),
		errors.Is(err, submissions.ErrNotFound):
		http.Redirect(w, r, "/submit/", http.StatusSeeOther)
	default:
		logger.LogError("Editor failed: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// DeleteSubmissionHandler lets a session discard its own draft. Requests for
// anything else are ignored; the visitor always lands on the listing.
func (s *Server) DeleteSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(r.PathValue("id"))
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	deleted, err := s.subs.Delete(r.Context(), s.sessions.DraftID(r), id)
	if err != nil {
		logger.LogError("Failed to delete submission #%d: %v", id, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if deleted {
		if err := s.sessions.ClearDraft(w, r); err != nil {
			logger.LogError("Failed to save session: %v", err)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// parseDraftForm reads the editor fields. Links arrive as parallel
// link_id, link_url and link_caption values.
func parseDraftForm(v url.Values) submissions.DraftForm {
	form := submissions.DraftForm{
		Text:    v.Get("text"),
		Message: v.Get("message"),
		Name:    v.Get("name"),
		Email:   v.Get("email"),
	}

	ids, urls, captions := v["link_id"], v["link_url"], v["link_caption"]
	for i, u := range urls {
		var l submissions.LinkInput
		l.URL = u
		if i < len(captions) {
			l.Caption = captions[i]
		}
		if i < len(ids) {
			if id, err := utils.ParseID(ids[i]); err == nil {
				l.ID = id
			}
		}
		form.Links = append(form.Links, l)
	}
	return form
}

// linkRows returns the editor's link rows plus one blank row for a new link.
func linkRows(links []database.Link) []submissions.LinkInput {
	rows := make([]submissions.LinkInput, 0, len(links)+1)
	for _, l := range links {
		if l.URL == "" {
			continue
		}
		rows = append(rows, submissions.LinkInput{ID: l.ID, URL: l.URL, Caption: l.Caption})
	}
	return append(rows, submissions.LinkInput{})
}
