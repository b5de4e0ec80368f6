package api

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// multipartOverhead is headroom on top of the image limit for the multipart
// envelope.
const multipartOverhead = 1 << 20

type uploadHandler struct {
	responder Responder
	logger    zerolog.Logger
	store     storage.ImageStore
	maxBytes  int64
	now       func() time.Time
}

func newUploadHandler(store storage.ImageStore, maxBytes int64) uploadHandler {
	logger := log.With().Str("handlerName", "uploadHandler").Logger()

	return uploadHandler{
		responder: NewResponder(logger),
		logger:    logger,
		store:     store,
		maxBytes:  maxBytes,
		now:       time.Now,
	}
}

// uploadImage stores the multipart "image" field and returns its URL.
func (h uploadHandler) uploadImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

		if err := r.ParseMultipartForm(h.maxBytes); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(h.maxBytes))
				return
			}
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("image"))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("image")
		if err != nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("image"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to read upload", err))
			return
		}
		if int64(len(data)) > h.maxBytes {
			h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(h.maxBytes))
			return
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}
		ext, ok := storage.Extension(contentType)
		if !ok {
			h.responder.WriteError(w, errs.NewUnsupportedMediaTypeError(contentType, storage.AllowedTypes()))
			return
		}
		mediaType, _, _ := mime.ParseMediaType(contentType)

		name := storage.ObjectName(h.now(), ext)
		url, err := h.store.Save(r.Context(), name, mediaType, bytes.NewReader(data))
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to store upload", err))
			return
		}

		h.logger.Info().Str("name", name).Int("bytes", len(data)).Msg("Stored upload")
		h.responder.WriteJSONStatus(w, http.StatusCreated, uploadResponse{URL: url})
	}
}
