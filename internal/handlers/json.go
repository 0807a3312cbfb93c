// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tripcatalog/internal/catalog"
)

// maxBodyBytes caps admin request bodies. Blog posts are the largest.
const maxBodyBytes = 1 << 20

// ack is the acknowledgement returned by every mutation. Counts are
// pointers so that a real zero is still sent.
type ack struct {
	Success   bool   `json:"success"`
	ID        string `json:"id,omitempty"`
	Message   string `json:"message,omitempty"`
	Requested *int   `json:"requested,omitempty"`
	Matched   *int   `json:"matched,omitempty"`
	Modified  *int   `json:"modified,omitempty"`
}

func count(n int) *int { return &n }

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("write json response failed", "error", err)
	}
}

// bodyError marks a request body that could not be decoded.
type bodyError struct {
	msg string
}

func (e *bodyError) Error() string { return e.msg }

// decodeJSON reads the request body into dst. Unknown fields are ignored
// so older admin clients keep working.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return &bodyError{msg: "request body is required"}
	case errors.As(err, &tooLarge):
		return &bodyError{msg: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)}
	case errors.As(err, &syntaxErr):
		return &bodyError{msg: fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)}
	case errors.As(err, &typeErr):
		return &bodyError{msg: fmt.Sprintf("field %q has the wrong type", typeErr.Field)}
	}
	return &bodyError{msg: "malformed JSON: " + err.Error()}
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &catalog.ValidationError{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}

// writeError maps err onto an HTTP status and a failure acknowledgement.
// Unexpected errors are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		bodyErr    *bodyError
		validation *catalog.ValidationError
		notFound   *catalog.NotFoundError
		conflict   *catalog.ConflictError
		partial    *catalog.PartialBatchFailure
	)
	switch {
	case errors.As(err, &bodyErr):
		writeJSON(w, http.StatusBadRequest, ack{Message: bodyErr.msg})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, ack{Message: validation.Error()})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, ack{Message: notFound.Error()})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, ack{Message: conflict.Error()})
	case errors.As(err, &partial):
		writeJSON(w, http.StatusConflict, ack{
			Message:   partial.Error(),
			Requested: count(partial.Requested),
			Matched:   count(partial.Matched),
			Modified:  count(partial.Modified),
		})
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, ack{Message: "internal server error"})
	}
}
