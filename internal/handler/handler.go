package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dan9191/blog-service/internal/auth"
	"github.com/Dan9191/blog-service/internal/storage"
	"github.com/sirupsen/logrus"
)

// ImageOwners decides whether the caller may clear a stored image
type ImageOwners interface {
	OwnsImage(ctx context.Context, imagePath string) (bool, error)
}

// Handler serves the image upload endpoint
type Handler struct {
	images   *storage.Images
	owners   ImageOwners
	log      *logrus.Logger
	maxBytes int64
}

func NewHandler(images *storage.Images, owners ImageOwners, log *logrus.Logger, maxBytes int64) *Handler {
	return &Handler{images: images, owners: owners, log: log, maxBytes: maxBytes}
}

// PostImage stores an uploaded png/jpeg and returns its path. An optional
// oldPath form value names a previous image to clear; it is only cleared
// when one of the caller's posts references it.
func (h *Handler) PostImage(w http.ResponseWriter, r *http.Request) {
	if !auth.FromContext(r.Context()).IsAuth {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not Authenticated"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"message": "File too large"})
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid upload"})
			return
		}
	}

	file, header, err := r.FormFile("image")
	if err != nil || !storage.AllowedType(header.Header.Get("Content-Type")) {
		if file != nil {
			file.Close()
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "no File provided"})
		return
	}
	defer file.Close()

	if oldPath := r.FormValue("oldPath"); oldPath != "" {
		h.clearOwned(r.Context(), oldPath)
	}

	path, err := h.images.Save(header.Header.Get("Content-Type"), file)
	if err != nil {
		h.log.WithError(err).Error("Image upload failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to store file"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "File stored", "filePath": path})
}

func (h *Handler) clearOwned(ctx context.Context, oldPath string) {
	owned, err := h.owners.OwnsImage(ctx, oldPath)
	if err != nil {
		h.log.WithError(err).Warnf("Failed to check owner of image %s", oldPath)
		return
	}
	if !owned {
		h.log.Warnf("Refusing to clear image %s not referenced by the caller", oldPath)
		return
	}
	if err := h.images.Clear(oldPath); err != nil {
		h.log.WithError(err).Warnf("Failed to clear old image %s", oldPath)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
