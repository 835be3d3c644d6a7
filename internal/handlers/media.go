package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogapi/internal/apperror"
)

// maxUploadSize caps a single media upload (5 MB).
const maxUploadSize = 5 << 20

// allowedMediaTypes maps accepted image types to their file extension.
var allowedMediaTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectStore keeps uploaded files and serves them by URL.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
}

// Media serves POST /media, which stores an image and returns its URL for
// use as a cover_image or avatar, and DELETE /media/*, which removes one.
type Media struct {
	store ObjectStore
	now   func() time.Time
}

// NewMedia creates the Media handler group.
func NewMedia(store ObjectStore) *Media {
	return &Media{store: store, now: time.Now}
}

type uploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Upload accepts a multipart form with a "file" part.
func (h *Media) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, apperror.NewBadRequestError("file too large, maximum size is 5 MB", err))
			return
		}
		writeError(w, r, apperror.NewBadRequestError("expected a multipart form", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, apperror.NewBadRequestError("no file provided", err))
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeError(w, r, apperror.NewBadRequestError("file too large, maximum size is 5 MB", nil))
		return
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		writeError(w, r, apperror.NewBadRequestError("could not read file", err))
		return
	}
	contentType := http.DetectContentType(sniff[:n])
	ext, ok := allowedMediaTypes[contentType]
	if !ok {
		writeError(w, r, apperror.NewBadRequestError("unsupported file type "+contentType, nil))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, r, apperror.NewInternalError("could not rewind upload", err))
		return
	}

	key := "media/" + h.now().UTC().Format("2006/01") + "/" + uuid.NewString() + ext
	if err := h.store.Upload(r.Context(), key, contentType, file, header.Size); err != nil {
		writeError(w, r, apperror.NewExternalServiceError("could not store file", err))
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{URL: h.store.FileURL(key), Key: key})
}

// Delete removes an uploaded object. The key must have the shape Upload
// produces; deleting one that is already gone still succeeds.
func (h *Media) Delete(w http.ResponseWriter, r *http.Request) {
	key := "media/" + chi.URLParam(r, "*")
	if !isMediaKey(key) {
		writeError(w, r, apperror.NewBadRequestError("invalid media key", nil))
		return
	}
	if err := h.store.Delete(r.Context(), key); err != nil {
		writeError(w, r, apperror.NewExternalServiceError("could not delete file", err))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "media " + key + " deleted"})
}

// isMediaKey matches media/YYYY/MM/<uuid><ext> with an accepted extension.
func isMediaKey(key string) bool {
	parts := strings.Split(key, "/")
	if len(parts) != 4 || parts[0] != "media" {
		return false
	}
	if _, err := time.Parse("2006/01", parts[1]+"/"+parts[2]); err != nil {
		return false
	}

	ext := path.Ext(parts[3])
	known := false
	for _, e := range allowedMediaTypes {
		known = known || e == ext
	}
	id := strings.TrimSuffix(parts[3], ext)
	if !known || len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
