package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/domain"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/signer"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/storage"
)

// FilesHandler serves the transfer routes signed URLs point at when the
// object store runs on the local backend. Every request must carry a
// valid signature; there is no other authorization on these routes.
type FilesHandler struct {
	store  storage.Store
	signer *signer.Signer
	logger zerolog.Logger
}

// NewFilesHandler creates a new FilesHandler.
func NewFilesHandler(store storage.Store, sig *signer.Signer, logger zerolog.Logger) *FilesHandler {
	return &FilesHandler{
		store:  store,
		signer: sig,
		logger: logger.With().Str("handler", "files").Logger(),
	}
}

// RegisterRoutes registers transfer routes.
func (h *FilesHandler) RegisterRoutes(r chi.Router) {
	r.Get("/files/*", h.handleDownload)
	r.Put("/files/*", h.handleUpload)
}

func (h *FilesHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	key, ok := h.verifiedKey(w, r, http.MethodPut)
	if !ok {
		return
	}

	// The signature binds the content type the upload was granted for;
	// the stored object records that type, not whatever header the
	// client sends.
	contentType := r.URL.Query().Get(signer.ParamContentType)
	if contentType == "" {
		contentType = r.Header.Get("Content-Type")
	}

	if err := h.store.Put(r.Context(), key, r.Body, r.ContentLength, contentType); err != nil {
		h.logger.Error().Err(err).Str("key", key).Msg("failed to store uploaded object")
		writeError(w, http.StatusInternalServerError, "Could not store file", err)
		return
	}

	h.logger.Info().Str("key", key).Str("content_type", contentType).Msg("object uploaded")
	w.WriteHeader(http.StatusOK)
}

func (h *FilesHandler) handleDownload(w http.ResponseWriter, r *http.Request) {
	key, ok := h.verifiedKey(w, r, http.MethodGet)
	if !ok {
		return
	}

	obj, err := h.store.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			writeError(w, http.StatusNotFound, "File not found", nil)
			return
		}
		h.logger.Error().Err(err).Str("key", key).Msg("failed to read object")
		writeError(w, http.StatusInternalServerError, "Could not read file", err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	if filename := r.URL.Query().Get(signer.ParamFilename); filename != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.Debug().Err(err).Str("key", key).Msg("download stream interrupted")
	}
}

// verifiedKey extracts the object key from the path and checks the
// request's signature. On failure it writes the error response and
// returns ok=false.
func (h *FilesHandler) verifiedKey(w http.ResponseWriter, r *http.Request, method string) (string, bool) {
	key, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || key == "" {
		writeError(w, http.StatusBadRequest, "Invalid file key", err)
		return "", false
	}

	if err := h.signer.Verify(method, key, r.URL.Query(), time.Now()); err != nil {
		h.logger.Warn().Err(err).Str("key", key).Str("method", method).Msg("rejected transfer request")
		switch {
		case errors.Is(err, signer.ErrExpired):
			writeError(w, http.StatusForbidden, "URL has expired", nil)
		case errors.Is(err, signer.ErrBadSignature):
			writeError(w, http.StatusForbidden, "Invalid signature", nil)
		default:
			writeError(w, http.StatusBadRequest, "Malformed signed URL", nil)
		}
		return "", false
	}
	return key, true
}
