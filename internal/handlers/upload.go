package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"memorial/internal/submissions"
	"memorial/pkg/logger"
	"memorial/pkg/utils"
)

const (
	DefaultMaxUploadSize = 20 << 20 // 20 MB

	// maxReorderBody caps the JSON id list of the reorder endpoints.
	maxReorderBody = 1024
)

// UploadHandler attaches one image to the session's draft. The file comes
// in as multipart field "file" or "files[]".
func (s *Server) UploadHandler(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, utils.ErrRequestNotFound, "Submission not found.")
		return
	}
	sid := s.sessions.DraftID(r)
	if sid == 0 || sid != id {
		utils.WriteError(w, http.StatusForbidden, utils.ErrDraftNotOwner, "This submission belongs to another session.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			utils.WriteError(w, http.StatusRequestEntityTooLarge, utils.ErrRequestBodyTooLarge,
				fmt.Sprintf("File exceeds the %s limit.", utils.FormatBytes(s.maxUpload)))
			return
		}
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Invalid multipart form.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, err := formFile(r, "file", "files[]")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "No file uploaded.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Failed to read upload.")
		return
	}

	img, err := s.subs.AddImage(r.Context(), sid, id, data)
	if err != nil {
		switch {
		case errors.Is(err, submissions.ErrNotAnImage):
			utils.WriteError(w, http.StatusUnsupportedMediaType, utils.ErrRequestUnSupportedMedia, "Not an Image")
		default:
			writeDraftError(w, err, utils.ErrImageStoreFailed, "Failed to store image.")
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"imageId":    img.ID,
		"removeLink": fmt.Sprintf("%sdelete_image/?image=%d", editPath(id), img.ID),
		"url":        s.subs.Storage().URL(img.File),
	})
}

func formFile(r *http.Request, fields ...string) (multipart.File, error) {
	for _, field := range fields {
		f, _, err := r.FormFile(field)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return nil, err
		}
	}
	return nil, http.ErrMissingFile
}

// DeleteImageHandler removes an image of the session's draft. The image id
// is taken from ?image=, falling back to the path id. Unknown images succeed
// silently.
func (s *Server) DeleteImageHandler(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("image")
	if raw == "" {
		raw = r.PathValue("id")
	}
	imageID, err := utils.ParseID(raw)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Invalid image id.")
		return
	}

	if err := s.subs.DeleteImage(r.Context(), s.sessions.DraftID(r), imageID); err != nil {
		writeDraftError(w, err, utils.ErrServerInternal, "Failed to delete image.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReorderImagesHandler(w http.ResponseWriter, r *http.Request) {
	s.reorder(w, r, s.subs.ReorderImages)
}

func (s *Server) ReorderLinksHandler(w http.ResponseWriter, r *http.Request) {
	s.reorder(w, r, s.subs.ReorderLinks)
}

// reorder decodes a JSON array of ids and hands it to fn.
func (s *Server) reorder(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, sid, id uint, ids []uint) error) {
	id, err := utils.ParseID(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, utils.ErrRequestNotFound, "Submission not found.")
		return
	}

	var ids []uint
	r.Body = http.MaxBytesReader(w, r.Body, maxReorderBody)
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestBadJSON, "Body must be a JSON array of ids.")
		return
	}

	if err := fn(r.Context(), s.sessions.DraftID(r), id, ids); err != nil {
		writeDraftError(w, err, utils.ErrServerInternal, "Failed to reorder.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeDraftError maps draft ownership errors to 403/404 and everything
// else to a 500 with the given code.
func writeDraftError(w http.ResponseWriter, err error, code, message string) {
	switch {
	case errors.Is(err, submissions.ErrNotOwner):
		utils.WriteError(w, http.StatusForbidden, utils.ErrDraftNotOwner, "This submission belongs to another session.")
	case errors.Is(err, submissions.ErrNotDraft):
		utils.WriteError(w, http.StatusForbidden, utils.ErrDraftClosed, "This submission can no longer be edited.")
	case errors.Is(err, submissions.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, utils.ErrRequestNotFound, "Submission not found.")
	default:
		logger.LogError("%s: %v", message, err)
		utils.WriteError(w, http.StatusInternalServerError, code, message)
	}
}
