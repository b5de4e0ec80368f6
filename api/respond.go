package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rs/zerolog"
)

// maxJSONBody bounds every JSON request body the API reads.
const maxJSONBody = 1 << 20

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteJSONStatus(w, http.StatusOK, data)
}

// WriteJSONStatus marshals data before touching the response so a marshal
// failure can still become a clean 500.
func (r Responder) WriteJSONStatus(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal Server Error","status":"error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// unexpected errors are logged and answered generically
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unhandled error")
		r.WriteJSONStatus(w, http.StatusInternalServerError, ErrorResponse{
			Error:  "Internal Server Error",
			Status: "error",
		})
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Str("error", apiErr.GetFullError()).Int("status", apiErr.StatusCode).Msg("request failed")
		r.WriteJSONStatus(w, apiErr.StatusCode, ErrorResponse{
			Error:  "Internal Server Error",
			Status: "error",
		})
		return
	}

	if apiErr.Cause != nil {
		r.logger.Debug().Str("error", apiErr.GetFullError()).Msg("request rejected")
	}

	r.WriteJSONStatus(w, apiErr.StatusCode, ErrorResponse{
		Error:   apiErr.Message(),
		Status:  "error",
		Field:   apiErr.Field,
		Details: apiErr.Details,
	})
}

// wrapDatabaseError wraps a database error with context information
func wrapDatabaseError(operation, entity string, cause error) error {
	return errs.NewDatabaseError(operation, entity, cause)
}

// decodeLenient decodes a JSON body into a fresh T. Bodies that are empty,
// malformed or of the wrong shape yield the zero T instead of an error.
func decodeLenient[T any](r *http.Request) T {
	var v T
	if r.Body == nil {
		return v
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&v); err != nil {
		var zero T
		return zero
	}
	return v
}
